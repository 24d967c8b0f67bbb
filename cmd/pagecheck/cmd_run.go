package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pagecheck/pagecheck/internal/bridge"
	"github.com/pagecheck/pagecheck/internal/check"
	"github.com/pagecheck/pagecheck/internal/config"
	"github.com/pagecheck/pagecheck/internal/lint"
)

// runSuiteCommand executes one suite in a fresh browser and reports
// pass/fail through the exit code.
func runSuiteCommand(cfg *config.RuntimeConfig, args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: pagecheck run <suite.yaml>")
		return 1
	}
	suitePath := args[0]

	suite, err := check.LoadSuite(suitePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s Test failed: %v\n", check.FailMark, err)
		return 1
	}
	if err := suite.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%s Test failed: %v\n", check.FailMark, err)
		return 1
	}

	// One-shot runs stay quiet unless something goes wrong.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	_, allocCancel, browserCtx, browserCancel, err := bootChrome(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s Test failed: chrome did not start: %v\n", check.FailMark, err)
		return 1
	}
	defer allocCancel()
	defer func() {
		bridge.MarkCleanExit(cfg.ProfileDir)
		browserCancel()
	}()

	runner := check.NewRunner(check.TabSession{}, cfg.ActionTimeout)
	// Relative page and screenshot paths resolve against the suite file.
	runner.BaseDir = filepath.Dir(suitePath)

	res := runner.Run(browserCtx, suite)
	res.Render(os.Stdout)
	return res.ExitCode()
}

// lintCommand statically verifies a suite against its local page
// without launching a browser.
func lintCommand(args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: pagecheck lint <suite.yaml>")
		return 1
	}
	suitePath := args[0]

	suite, err := check.LoadSuite(suitePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s Lint failed: %v\n", check.FailMark, err)
		return 1
	}
	if err := suite.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%s Lint failed: %v\n", check.FailMark, err)
		return 1
	}

	findings, err := lint.Suite(suite, filepath.Dir(suitePath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s Lint failed: %v\n", check.FailMark, err)
		return 1
	}
	if len(findings) == 0 {
		fmt.Printf("%s Lint passed: %d checks match %s\n", check.PassMark, len(suite.Checks), suite.Page)
		return 0
	}
	for _, f := range findings {
		if f.CheckIndex < 0 {
			fmt.Printf("note: %s\n", f.Message)
			continue
		}
		fmt.Printf("%s check %d (%s): %s\n", check.FailMark, f.CheckIndex+1, f.Desc, f.Message)
	}
	for _, f := range findings {
		if f.CheckIndex >= 0 {
			return 1
		}
	}
	return 0
}
