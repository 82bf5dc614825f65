package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/vsinha/clinicaldemand/pkg/application/services"
	"github.com/vsinha/clinicaldemand/pkg/domain/entities"
	"github.com/vsinha/clinicaldemand/pkg/infrastructure/cache"
	"github.com/vsinha/clinicaldemand/pkg/infrastructure/events"
	"github.com/vsinha/clinicaldemand/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/clinicaldemand/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/clinicaldemand/pkg/infrastructure/repositories/yaml"
	"github.com/vsinha/clinicaldemand/pkg/interfaces/cli/output"
	"github.com/vsinha/clinicaldemand/pkg/interfaces/input"
)

// Config holds configuration for the model command
type Config struct {
	// Scenario is a scenario YAML file, or a directory of them used with ScenarioName
	Scenario         string
	ScenarioName     string
	DistributionFile string
	AssumptionsFile  string
	// Overrides maps assumption names to raw values applied after all files
	Overrides map[string]string
	// FactorOverrides maps month labels to raw factors applied after all files
	FactorOverrides map[string]string
	Coercion        string
	OutputPath      string
	Format          string
	Verbose         bool
	List            bool
	Help            bool
}

// ModelCommand computes a staffing recommendation from files and flag overrides
type ModelCommand struct {
	config Config
}

// NewModelCommand creates a new model command with the given configuration
func NewModelCommand(config Config) *ModelCommand {
	return &ModelCommand{
		config: config,
	}
}

// Execute runs the model command
func (c *ModelCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.showHelp()
		return nil
	}

	policy, err := input.ParseCoercionPolicy(c.config.Coercion)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	parse := func(raw string) (float64, error) {
		return input.ParseNumber(raw, policy)
	}

	calculator := services.NewCalculator(cache.NewResultCache(cache.DefaultMaxEntries))

	if c.config.List {
		return c.listScenarios(ctx, calculator, parse)
	}

	if c.config.Verbose {
		c.printHeader(policy)
	}

	scenario, err := c.loadScenario(parse)
	if err != nil {
		return err
	}

	store := events.NewInMemoryEventStore()
	if c.config.Verbose {
		store.Subscribe(events.AllEventTypes, events.HandlerFunc(printEvent))
	}

	session := services.NewPlanningSession(scenario.Name, calculator, store, parse, entities.DefaultModelInput())
	startTime := time.Now()
	if _, err := session.Replace(ctx, scenario.Input); err != nil && !isModelFailure(err) {
		return err
	}

	if err := c.applyOverrides(ctx, session); err != nil {
		return fmt.Errorf("invalid override: %w", err)
	}

	// strict mode rejects out-of-range input here, before the engine sees it
	report, err := calculator.Report(ctx, session.Snapshot(), policy == input.Reject)
	computeTime := time.Since(startTime)
	if err != nil {
		return err
	}
	report.Scenario = scenario.Name

	if c.config.Verbose {
		fmt.Printf("✅ Model computed in %v\n\n", computeTime)
	}

	outputConfig := output.Config{
		Format:      c.config.Format,
		OutputPath:  c.config.OutputPath,
		Verbose:     c.config.Verbose,
		ComputeTime: computeTime,
		InputFiles:  c.inputFiles(),
	}
	if err := output.Generate(report, outputConfig); err != nil {
		return fmt.Errorf("error generating output: %w", err)
	}

	if c.config.Verbose {
		fmt.Println("🏁 Demand analysis complete!")
	}
	return nil
}

// loadScenario builds the starting input: defaults, then the scenario, then the CSV files
func (c *ModelCommand) loadScenario(parse func(string) (float64, error)) (*entities.Scenario, error) {
	scenario := &entities.Scenario{
		Name:        "default",
		Description: "Built-in reference scenario",
		Input:       entities.DefaultModelInput(),
	}

	if c.config.Scenario != "" {
		if c.config.Verbose {
			fmt.Printf("📂 Loading scenario from %s...\n", c.config.Scenario)
		}
		loaded, err := c.resolveScenario(parse)
		if err != nil {
			return nil, err
		}
		scenario = loaded
	}

	csvLoader := csv.NewLoader(parse)
	if c.config.DistributionFile != "" {
		if c.config.Verbose {
			fmt.Printf("📂 Loading distribution from %s...\n", c.config.DistributionFile)
		}
		distribution, err := csvLoader.LoadDistribution(c.config.DistributionFile)
		if err != nil {
			return nil, fmt.Errorf("error loading distribution: %w", err)
		}
		scenario.Input.Distribution = distribution
	}
	if c.config.AssumptionsFile != "" {
		if c.config.Verbose {
			fmt.Printf("📂 Loading assumptions from %s...\n", c.config.AssumptionsFile)
		}
		assumptions, err := csvLoader.LoadAssumptions(c.config.AssumptionsFile, scenario.Input.Assumptions)
		if err != nil {
			return nil, fmt.Errorf("error loading assumptions: %w", err)
		}
		scenario.Input.Assumptions = assumptions
	}

	return scenario, nil
}

// resolveScenario loads a single file, or picks ScenarioName out of a directory
func (c *ModelCommand) resolveScenario(parse func(string) (float64, error)) (*entities.Scenario, error) {
	loader := yaml.NewLoader(parse)

	info, err := os.Stat(c.config.Scenario)
	if err != nil {
		return nil, fmt.Errorf("scenario not found: %w", err)
	}
	if !info.IsDir() {
		scenario, err := loader.LoadScenario(c.config.Scenario)
		if err != nil {
			return nil, fmt.Errorf("error loading scenario: %w", err)
		}
		return scenario, nil
	}

	repo, err := c.loadCatalog(loader)
	if err != nil {
		return nil, err
	}
	name := c.config.ScenarioName
	if name == "" {
		name = "default"
	}
	return repo.GetScenario(name)
}

func (c *ModelCommand) loadCatalog(loader *yaml.Loader) (*memory.ScenarioRepository, error) {
	scenarios, err := loader.LoadScenarioDir(c.config.Scenario)
	if err != nil {
		return nil, fmt.Errorf("error loading scenario directory: %w", err)
	}
	repo := memory.NewScenarioRepository(len(scenarios))
	if err := repo.LoadScenarios(scenarios); err != nil {
		return nil, fmt.Errorf("failed to load scenarios into repository: %w", err)
	}
	return repo, nil
}

// listScenarios prints the catalog and each scenario's recommendation
func (c *ModelCommand) listScenarios(
	ctx context.Context,
	calculator *services.Calculator,
	parse func(string) (float64, error)) error {
	if c.config.Scenario == "" {
		return fmt.Errorf("-list requires -scenario <directory>")
	}
	repo, err := c.loadCatalog(yaml.NewLoader(parse))
	if err != nil {
		return err
	}

	scenarioService := services.NewScenarioService(calculator, repo)
	summaries, err := scenarioService.List()
	if err != nil {
		return err
	}

	fmt.Printf("📋 Scenarios in %s:\n", c.config.Scenario)
	for _, summary := range summaries {
		report, err := scenarioService.Evaluate(ctx, summary.Name, false)
		if err != nil {
			fmt.Printf("  %-20s ⚠️  %v\n", summary.Name, err)
			continue
		}
		fmt.Printf("  %-20s %3d resources  %s\n",
			summary.Name, report.Summary.FinalRecommendation, summary.Description)
	}
	return nil
}

// applyOverrides feeds flag overrides through the session in a stable order
func (c *ModelCommand) applyOverrides(ctx context.Context, session *services.PlanningSession) error {
	for _, name := range sortedKeys(c.config.Overrides) {
		if _, err := session.SetAssumption(ctx, name, c.config.Overrides[name]); err != nil && !isModelFailure(err) {
			return err
		}
	}

	distribution := session.Snapshot().Distribution
	for _, label := range sortedKeys(c.config.FactorOverrides) {
		index := distribution.IndexOf(label)
		if index < 0 {
			return fmt.Errorf("%w: unknown month %q", entities.ErrInvalidDistribution, label)
		}
		if _, err := session.SetMonthFactor(ctx, index, c.config.FactorOverrides[label]); err != nil && !isModelFailure(err) {
			return err
		}
	}
	return nil
}

func (c *ModelCommand) inputFiles() map[string]string {
	files := make(map[string]string)
	if c.config.Scenario != "" {
		files["Scenario"] = c.config.Scenario
	}
	if c.config.DistributionFile != "" {
		files["Distribution"] = c.config.DistributionFile
	}
	if c.config.AssumptionsFile != "" {
		files["Assumptions"] = c.config.AssumptionsFile
	}
	return files
}

// printHeader prints the command header information
func (c *ModelCommand) printHeader(policy input.CoercionPolicy) {
	fmt.Printf("🚀 Clinical Resource Demand CLI\n")
	for name, path := range c.inputFiles() {
		fmt.Printf("  %s: %s\n", name, path)
	}
	fmt.Printf("Input policy: %s\n", policy)
	fmt.Printf("Output format: %s\n", c.config.Format)
	if c.config.OutputPath != "" {
		fmt.Printf("Output file: %s\n", c.config.OutputPath)
	}
	fmt.Println()
}

// printEvent prints one session event as a progress line
func printEvent(event events.Event) error {
	switch data := event.Data.(type) {
	case events.AssumptionChanged:
		fmt.Printf("✏️  %s: %g → %g\n", data.Key.Label(), data.OldValue, data.NewValue)
	case events.DistributionChanged:
		fmt.Printf("✏️  %s factor: %g → %g\n", data.Month, data.OldFactor, data.NewFactor)
	case events.InputReplaced:
		fmt.Printf("📥 Loaded input for %s\n", event.StreamID)
	case events.InputRejected:
		fmt.Printf("🚫 Rejected %s=%q: %s\n", data.Field, data.Raw, data.Reason)
	case events.ResultComputed:
		fmt.Printf("🔄 Recomputed: %d resources (base %d)\n", data.FinalRecommendation, data.BaseRequirement)
	case events.ComputationFailed:
		fmt.Printf("⚠️  Computation failed: %s\n", data.Reason)
	}
	return nil
}

// isModelFailure reports an accepted input the model could not compute. Report surfaces it later,
// after strict validation has had its say.
func isModelFailure(err error) bool {
	return errors.Is(err, entities.ErrNonPositiveDivisor) ||
		errors.Is(err, entities.ErrNonFiniteValue) ||
		errors.Is(err, entities.ErrResultOutOfRange)
}

func sortedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// showHelp displays the help message
func (c *ModelCommand) showHelp() {
	var assumptionFlags strings.Builder
	for _, key := range entities.AssumptionKeys {
		assumptionFlags.WriteString(fmt.Sprintf("    -%-26s %s\n", string(key)+" <n>", key.Label()))
	}

	fmt.Printf(`Clinical Resource Demand CLI - staffing estimates for clinical project work

USAGE:
    demand                                     # Default reference scenario
    demand -scenario <file.yaml>               # Scenario file
    demand -scenario <dir> -name <scenario>    # Scenario from a directory of YAML files
    demand -init <file.yaml>                   # Write a scenario template

OPTIONS:
    -scenario <path>      Scenario YAML file, or directory of scenario files
    -name <name>          Scenario to run from a directory (default: default)
    -list                 List the scenarios in a directory with their recommendations
    -distribution <file>  Monthly distribution CSV (month,factor)
    -assumptions <file>   Assumptions CSV (assumption,value)
    -set <key=value>      Override an assumption (repeatable)
    -factor <Mon=value>   Override a month factor (repeatable)
    -coercion <policy>    strict rejects malformed numbers and invalid ranges,
                          lenient reads them as 0 and reports ranges as warnings (default: strict)
    -format <fmt>         Output format: %s (default: text)
    -output <file>        Write the report to a file instead of stdout
    -verbose              Enable verbose output
    -init <file>          Write a default scenario template and exit
    -help                 Show this help message

ASSUMPTION OVERRIDES:
%s
CSV FILE FORMATS:

distribution.csv:
    month,factor
    Jan,0.8
    Aug,1.6

assumptions.csv:
    assumption,value
    quarterlyProjectCount,20
    availabilityFactor,60

EXAMPLES:
    # Reference scenario
    demand

    # What if project volume doubles?
    demand -quarterlyProjectCount 32 -verbose

    # Scenario file with a flat summer
    demand -scenario scenarios/site_a.yaml -factor Aug=1.0 -factor Sep=1.0

    # Compare every scenario in a directory
    demand -scenario scenarios/ -list

    # HTML report
    demand -scenario scenarios/site_a.yaml -format html -output reports/site_a.html
`, strings.Join(output.Formats, ", "), assumptionFlags.String())
}
