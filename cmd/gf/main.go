// Package main implements gf, a small CLI for exercising and inspecting a
// generic-function dispatch engine: `demo` walks a built-in example
// through the method-combination algebra, `registry` dumps its action
// tree, and `repl` lets a TTY poke at it interactively.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cerevo/PEAK-Rules/internal/config"
	"github.com/cerevo/PEAK-Rules/pkg/gf"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

var (
	verbose    bool
	axiomsPath string
	logger     *zap.Logger
)

// loadAxioms reads an axiom-set YAML file from path (its always_overrides
// and merge_by_default declarations; it holds no class hierarchies),
// resolves each kind name through the shared action-kind registry (which
// starts with the four built-in kinds and grows via RegisterKind), and
// installs the axioms into Implies. It never replaces the programmatic gf.AlwaysOverrides/
// gf.MergeByDefault calls a Go caller can still make directly; it is
// sugar over the same calls, data-driven instead of hardcoded.
func loadAxioms(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("gf: open axiom set %s: %w", path, err)
	}
	defer f.Close()

	set, err := config.Load(f)
	if err != nil {
		return fmt.Errorf("gf: load axiom set %s: %w", path, err)
	}
	if err := set.Apply(gf.ResolveKind, gf.AlwaysOverrides, gf.MergeByDefault); err != nil {
		return fmt.Errorf("gf: apply axiom set %s: %w", path, err)
	}
	return nil
}

var rootCmd = &cobra.Command{
	Use:   "gf",
	Short: "Inspect a generic-function dispatch engine",
	Long: `gf demonstrates the predicate-dispatch engine: rules attached to
argument classes, composed by method combination (Primary/Around/
Before/After), resolved by dominance, and memoized in a type-indexed
cache.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapConfig := zap.NewProductionConfig()
		if verbose {
			zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapConfig.Build()
		if err != nil {
			return fmt.Errorf("gf: initialize logger: %w", err)
		}
		if err := loadAxioms(axiomsPath); err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Dispatch a fixed set of sample calls through the demo generic function",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := buildDemo().WithLogger(logger)
		bold := color.New(color.Bold)
		for _, v := range demoInputs {
			result, err := f.Call(v)
			if err != nil {
				bold.Printf("describe(%v) -> error: %v\n", v, err)
				continue
			}
			bold.Printf("describe(%v) -> %v\n", v, result)
		}
		return nil
	},
}

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Dump the demo generic function's registry and action tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := buildDemo()
		f.Dump(os.Stdout)
		return nil
	},
}

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactively dispatch values through the demo generic function",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := buildDemo().WithLogger(logger)
		interactive := term.IsTerminal(int(os.Stdin.Fd()))

		prompt := func() {
			if interactive {
				color.New(color.FgCyan).Print("gf> ")
			}
		}

		scanner := bufio.NewScanner(os.Stdin)
		prompt()
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				prompt()
				continue
			}
			result, err := f.Call(parseReplValue(line))
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
			} else {
				fmt.Println(result)
			}
			prompt()
		}
		if interactive {
			fmt.Println()
		}
		return scanner.Err()
	},
}

// parseReplValue gives the repl's input a concrete Go type to dispatch
// on: an int if it parses as one, a string otherwise. It is not a
// predicate-language parser — the core is explicit that surface syntax
// for predicates is out of scope; this only decides the *argument's*
// runtime type for the fixed demo function.
func parseReplValue(line string) any {
	if n, err := strconv.Atoi(line); err == nil {
		return n
	}
	return line
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level dispatch tracing")
	rootCmd.PersistentFlags().StringVar(&axiomsPath, "axioms", "", "path to an axiom-set YAML file declaring always-overrides/merge-by-default rules")
	rootCmd.AddCommand(demoCmd, registryCmd, replCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
