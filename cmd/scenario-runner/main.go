// Package main runs the scripted end-to-end scenarios and exits non-zero
// if any of them fails.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/gookit/color"

	"github.com/MRamiBalles/hullbreach/internal/platform/logger"
	"github.com/MRamiBalles/hullbreach/internal/scenario"
)

var (
	colorTitle  = color.Style{color.FgCyan, color.OpBold}
	colorPass   = color.Style{color.FgGreen, color.OpBold}
	colorFail   = color.Style{color.FgRed, color.OpBold}
	colorSubtle = color.Style{color.FgGray}
)

func main() {
	only := flag.String("only", "", "Comma-separated scenario names to run (default: all)")
	logLevel := flag.String("log-level", "warn", "Engine log level")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	scenarios, err := selectScenarios(*only)
	if err != nil {
		fmt.Fprintln(os.Stderr, colorFail.Sprint(err.Error()))
		os.Exit(2)
	}

	rule := strings.Repeat("=", 60)
	fmt.Println(colorTitle.Sprint("HULLBREACH SCENARIO SUITE"))
	fmt.Println(rule)

	log := logger.New(logger.Options{Level: *logLevel, Output: os.Stderr})
	results := scenario.NewRunner(log, scenarios...).Run(ctx)

	passed, failed := 0, 0
	for _, r := range results {
		if r.Passed {
			passed++
			fmt.Printf("%s %s\n", colorPass.Sprint("PASS"), r.Name)
		} else {
			failed++
			fmt.Printf("%s %s\n", colorFail.Sprint("FAIL"), r.Name)
			fmt.Printf("     %s\n", r.Reason)
		}
		fmt.Println(colorSubtle.Sprintf("     %s (%d ticks, %.2fs simulated, %d events, %v)",
			r.Description, r.Ticks, r.SimTime, r.Events, r.Elapsed))
	}

	fmt.Println(rule)
	fmt.Printf("Passed: %s  Failed: %s\n",
		colorPass.Sprintf("%d", passed), colorFail.Sprintf("%d", failed))

	if failed > 0 || len(results) < len(scenarios) {
		os.Exit(1)
	}
}

func selectScenarios(only string) ([]scenario.Scenario, error) {
	all := scenario.Catalog()
	if only == "" {
		return all, nil
	}
	byName := make(map[string]scenario.Scenario, len(all))
	for _, sc := range all {
		byName[sc.Name] = sc
	}
	var picked []scenario.Scenario
	for _, name := range strings.Split(only, ",") {
		sc, ok := byName[strings.TrimSpace(name)]
		if !ok {
			return nil, fmt.Errorf("unknown scenario %q", name)
		}
		picked = append(picked, sc)
	}
	return picked, nil
}
