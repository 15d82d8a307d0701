package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	isatty "github.com/mattn/go-isatty"
	"go.uber.org/fx"
)

type runCmd struct{}

type versionCmd struct{}

type updateCmd struct{}

var program *tea.Program

var cli struct {
	Version    versionCmd `cmd:"version" help:"Print version information"`
	Update     updateCmd  `cmd:"update" help:"Update to the latest release"`
	Debug      bool       `help:"Enable debug logging"`
	CPUProfile string     `help:"Write CPU profile to file"`
	MemProfile string     `help:"Write memory profile to file"`
	Trace      string     `help:"Write execution trace to file"`
	Run        runCmd     `cmd:"" default:"1" help:"Run the interactive application"`
}

// Update the version as part of the version release process
var version = "0.1.0"

func (v versionCmd) Run() error {
	fmt.Printf("moa v%s\n", moaVersion())
	return nil
}

func (u updateCmd) Run() error {
	return SelfUpdate(version)
}

func (r *runCmd) Run() error {
	startTime := time.Now()

	// Check if we are running in a terminal
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsTerminal(os.Stdin.Fd()) {
		fmt.Println("This program requires a terminal to run.")
		fmt.Println("Please run it in a terminal emulator.")
		return nil
	}

	var prog *tea.Program
	app := fx.New(
		fx.NopLogger,
		fx.Provide(
			ProvideLogger,
			ProvideConfig,
			ProvideStorage,
			ProvideKVStore,
			ProvideHistoryStore,
			ProvideAPIClient,
			ProvideAuthSession,
			ProvideTabManager,
			ProvideTUIModel,
			StartTUI,
		),
		fx.Invoke(func(p *tea.Program) {
			prog = p
		}),
	)

	startCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}

	// Check for a newer release while the UI runs
	go func() {
		if AutoCheckForUpdates(version) && program != nil {
			program.Send(updateAvailableMsg{})
		}
	}()

	if cli.Debug {
		slog.Debug("startup complete", "duration", time.Since(startTime))
	}

	_, runErr := prog.Run()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}

	if runErr != nil {
		return fmt.Errorf("alas, there's been an error: %w", runErr)
	}
	return nil
}

// updateAvailableMsg is sent when a newer release exists on GitHub
type updateAvailableMsg struct{}

func main() {
	ctx := kong.Parse(&cli)

	// Start profiling if requested
	if cli.CPUProfile != "" {
		f, err := os.Create(cli.CPUProfile)
		if err != nil {
			slog.Error("Could not create CPU profile", "error", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			slog.Error("Could not start CPU profile", "error", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	if cli.Trace != "" {
		f, err := os.Create(cli.Trace)
		if err != nil {
			slog.Error("Could not create trace file", "error", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := trace.Start(f); err != nil {
			slog.Error("Could not start trace", "error", err)
			os.Exit(1)
		}
		defer trace.Stop()
	}

	err := ctx.Run()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	// Write memory profile if requested
	if cli.MemProfile != "" {
		f, err := os.Create(cli.MemProfile)
		if err != nil {
			slog.Error("Could not create memory profile", "error", err)
			os.Exit(1)
		}
		defer f.Close()
		runtime.GC() // get up-to-date statistics
		if err := pprof.WriteHeapProfile(f); err != nil {
			slog.Error("Could not write memory profile", "error", err)
			os.Exit(1)
		}
		slog.Info("Memory profile written", "file", cli.MemProfile)
	}
}
