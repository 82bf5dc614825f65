package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/vsinha/clinicaldemand/pkg/domain/entities"
	"github.com/vsinha/clinicaldemand/pkg/interfaces/cli/commands"
)

// keyValueFlag collects repeated key=value flags
type keyValueFlag map[string]string

func (f keyValueFlag) String() string {
	pairs := make([]string, 0, len(f))
	for key, value := range f {
		pairs = append(pairs, key+"="+value)
	}
	return strings.Join(pairs, ",")
}

func (f keyValueFlag) Set(value string) error {
	key, raw, ok := strings.Cut(value, "=")
	if !ok || strings.TrimSpace(key) == "" {
		return fmt.Errorf("expected key=value, got %q", value)
	}
	f[strings.TrimSpace(key)] = raw
	return nil
}

func main() {
	// Command line flags
	var (
		scenario = flag.String(
			"scenario",
			"",
			"Scenario YAML file, or directory of scenario files",
		)
		scenarioName     = flag.String("name", "", "Scenario to run from a scenario directory")
		list             = flag.Bool("list", false, "List the scenarios in a directory")
		distributionFile = flag.String("distribution", "", "Monthly distribution CSV file (month,factor)")
		assumptionsFile  = flag.String("assumptions", "", "Assumptions CSV file (assumption,value)")
		coercion         = flag.String("coercion", "strict", "Input policy: strict or lenient")
		outputPath       = flag.String("output", "", "Write the report to this file instead of stdout")
		format           = flag.String("format", "text", "Output format: text, json, csv, html, svg")
		verbose          = flag.Bool("verbose", false, "Enable verbose output")
		initPath         = flag.String("init", "", "Write a default scenario template to this file and exit")
		initCSV          = flag.Bool("init-csv", false, "With -init, also write distribution.csv and assumptions.csv")
		help             = flag.Bool("help", false, "Show help message")
	)

	overrides := keyValueFlag{}
	factorOverrides := keyValueFlag{}
	flag.Var(overrides, "set", "Override an assumption, key=value (repeatable)")
	flag.Var(factorOverrides, "factor", "Override a month factor, Mon=value (repeatable)")

	assumptionFlags := make(map[entities.AssumptionKey]*string, len(entities.AssumptionKeys))
	for _, key := range entities.AssumptionKeys {
		assumptionFlags[key] = flag.String(string(key), "", key.Label())
	}

	flag.Parse()
	ctx := context.Background()

	if *initPath != "" {
		cmd := commands.NewInitCommand(commands.InitConfig{
			Path:    *initPath,
			WithCSV: *initCSV,
			Verbose: *verbose,
		})
		if err := cmd.Execute(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Dedicated assumption flags win over -set
	for key, value := range assumptionFlags {
		if *value != "" {
			overrides[string(key)] = *value
		}
	}

	// Create command configuration
	config := commands.Config{
		Scenario:         *scenario,
		ScenarioName:     *scenarioName,
		DistributionFile: *distributionFile,
		AssumptionsFile:  *assumptionsFile,
		Overrides:        overrides,
		FactorOverrides:  factorOverrides,
		Coercion:         *coercion,
		OutputPath:       *outputPath,
		Format:           *format,
		Verbose:          *verbose,
		List:             *list,
		Help:             *help,
	}

	// Create and execute command
	cmd := commands.NewModelCommand(config)
	if err := cmd.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
