package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/wippyai/script-loader/loader"
	"github.com/wippyai/script-loader/manifest"
	"github.com/wippyai/script-loader/registry"
)

// vars collects repeated -var name=value flags.
type vars map[string]string

func (v vars) String() string {
	pairs := make([]string, 0, len(v))
	for k, val := range v {
		pairs = append(pairs, k+"="+val)
	}
	return strings.Join(pairs, ",")
}

func (v vars) Set(s string) error {
	k, val, ok := strings.Cut(s, "=")
	if !ok || k == "" {
		return fmt.Errorf("expected name=value, got %q", s)
	}
	v[k] = val
	return nil
}

func main() {
	manifestVars := vars{}
	var (
		manifestFile = flag.String("manifest", "", "Path to HCL library manifest")
		root         = flag.String("root", "", "Library to load (default: all)")
		plan         = flag.Bool("plan", false, "Print the import order and exit")
		check        = flag.Bool("check", false, "Validate the manifest and exit")
		interactive  = flag.Bool("i", false, "Interactive mode with TUI")
		verbose      = flag.Bool("v", false, "Debug logging")
	)
	flag.Var(manifestVars, "var", "Manifest variable name=value (repeatable)")
	flag.Parse()

	if *manifestFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: modload -manifest <file.hcl> [-root name] [-var k=v ...]")
		fmt.Fprintln(os.Stderr, "       modload -manifest <file.hcl> -check")
		fmt.Fprintln(os.Stderr, "       modload -manifest <file.hcl> -plan -root name")
		fmt.Fprintln(os.Stderr, "       modload -manifest <file.hcl> -i  (interactive mode)")
		os.Exit(1)
	}

	log, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	registry.SetLogger(log.Named("registry"))
	loader.SetLogger(log.Named("loader"))

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(*manifestFile, manifestVars); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*manifestFile, manifestVars, *root, *plan, *check); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	return cfg.Build()
}

func run(manifestFile string, manifestVars vars, root string, planOnly, checkOnly bool) error {
	ctx := context.Background()

	f, err := manifest.Load(manifestFile, manifestVars)
	if err != nil {
		return err
	}

	h, err := newHost(ctx, f)
	if h == nil {
		return err
	}
	defer h.Close(ctx)
	if err != nil {
		// conflicts were logged; the first declaration of each name is in effect
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	reg := h.loader.Registry()
	fmt.Printf("Manifest: %s\n", manifestFile)
	fmt.Printf("Libraries: %d\n", reg.Len())

	if checkOnly {
		if err := reg.Validate(); err != nil {
			return err
		}
		fmt.Println("OK")
		return nil
	}

	if planOnly {
		if root == "" {
			return fmt.Errorf("-plan needs -root")
		}
		order, err := h.loader.Plan(root)
		if err != nil {
			return err
		}
		fmt.Printf("\nImport order for %s:\n", root)
		for i, sym := range order {
			lib, _ := reg.Lookup(string(sym))
			fmt.Printf("  %d. %s (%s)\n", i+1, sym, lib.Namespace)
		}
		return nil
	}

	if root != "" {
		err = h.loader.EnsureLoaded(ctx, root)
	} else {
		err = h.loader.LoadAll(ctx)
	}

	fmt.Println()
	printStates(reg.Libraries(), term.IsTerminal(int(os.Stdout.Fd())))
	return err
}

func printStates(libs []registry.Library, styled bool) {
	for _, lib := range libs {
		state := fmt.Sprintf("%-10s", lib.State)
		if styled {
			state = stateStyle(lib.State).Render(state)
		}
		fmt.Printf("  %s %-24s %s\n", state, lib.Name, lib.Namespace)
		if lib.LastError != nil && lib.State == registry.StateFailed {
			fmt.Printf("             %v\n", lib.LastError)
		}
	}
}

func stateStyle(s registry.State) lipgloss.Style {
	switch s {
	case registry.StateLoaded:
		return loadedStyle
	case registry.StateLoading:
		return loadingStyle
	case registry.StateFailed:
		return errorStyle
	default:
		return helpStyle
	}
}
