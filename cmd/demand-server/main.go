package main

import (
	"flag"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"k8s.io/klog/v2"

	"github.com/vsinha/clinicaldemand/pkg/application/services"
	"github.com/vsinha/clinicaldemand/pkg/infrastructure/cache"
	"github.com/vsinha/clinicaldemand/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/clinicaldemand/pkg/infrastructure/repositories/yaml"
	"github.com/vsinha/clinicaldemand/pkg/interfaces/api"
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	cacheEntries := cache.DefaultMaxEntries
	if raw := os.Getenv("CACHE_ENTRIES"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			klog.ErrorS(err, "Invalid CACHE_ENTRIES", "value", raw)
			os.Exit(1)
		}
		cacheEntries = n
	}

	resultCache := cache.NewResultCache(cacheEntries)
	calculator := services.NewCalculator(resultCache)

	var scenarios *services.ScenarioService
	if dir := os.Getenv("SCENARIO_DIR"); dir != "" {
		loaded, err := yaml.NewLoader(nil).LoadScenarioDir(dir)
		if err != nil {
			klog.ErrorS(err, "Failed to load scenarios", "dir", dir)
			os.Exit(1)
		}
		repo := memory.NewScenarioRepository(len(loaded))
		if err := repo.LoadScenarios(loaded); err != nil {
			klog.ErrorS(err, "Failed to index scenarios", "dir", dir)
			os.Exit(1)
		}
		scenarios = services.NewScenarioService(calculator, repo)
		klog.InfoS("Loaded scenario catalog", "dir", dir, "count", len(loaded))
	}

	server := api.NewServer(api.NewHandler(calculator, scenarios, resultCache))

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		klog.InfoS("Shutting down")
		if err := server.Shutdown(); err != nil {
			klog.ErrorS(err, "Shutdown failed")
		}
	}()

	klog.InfoS("Demand server starting", "port", port, "cacheEntries", cacheEntries)
	if err := server.ListenAndServe(":" + port); err != nil {
		klog.ErrorS(err, "Server failed")
		os.Exit(1)
	}
}
