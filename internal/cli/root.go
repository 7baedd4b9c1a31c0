// Package cli wires the breathe command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/breathe/internal/catalog"
	"github.com/sadopc/breathe/internal/config"
	"github.com/sadopc/breathe/internal/exercise"
	"github.com/sadopc/breathe/internal/store"
	"github.com/sadopc/breathe/internal/tui"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// env is the state shared by every command of one invocation.
type env struct {
	fs    afero.Fs
	clock exercise.Clock // nil means real time

	cfgPath string
	dbPath  string

	cfg     config.Config
	logger  *slog.Logger
	logFile io.Closer
}

func newEnv(fs afero.Fs) *env {
	return &env{
		fs:     fs,
		cfg:    config.Default(),
		logger: slog.New(slog.DiscardHandler),
	}
}

func (e *env) close() {
	if e.logFile != nil {
		e.logFile.Close()
		e.logFile = nil
	}
}

// setup loads the config and builds the logger. The TUI owns the terminal,
// so interactive runs log to the configured file only.
func (e *env) setup(cmd *cobra.Command, interactive bool) error {
	e.close()
	if e.cfgPath == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		e.cfgPath = p
	}

	cfg, err := config.Load(e.fs, e.cfgPath)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v (using defaults)\n", err)
	}
	e.cfg = cfg

	var writers []io.Writer
	f, err := e.cfg.OpenLog(e.fs)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	} else if f != nil {
		writers = append(writers, f)
		e.logFile = f
	}
	if !interactive {
		writers = append(writers, cmd.ErrOrStderr())
	}
	e.logger = config.NewLogger(e.cfg.Level(), writers...)
	e.logger.Debug("config loaded", "path", e.cfgPath, "tick_ms", e.cfg.TickMS)
	return nil
}

func (e *env) openStore() (*store.Store, error) {
	path := e.dbPath
	if path == "" {
		path = e.cfg.DBPath
	}
	if path == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve database path: %w", err)
		}
		path = p
	}
	st, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	e.logger.Debug("store opened", "path", path)
	return st, nil
}

func (e *env) quantum() time.Duration {
	return time.Duration(e.cfg.TickMS) * time.Millisecond
}

func newRoot(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:          "breathe",
		Short:        "Guided breathing exercises in your terminal",
		Long:         "breathe paces you through breathing patterns such as box breathing and 4-7-8,\nand keeps a record of your practice.",
		SilenceUsage: true,
	}
	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return e.setup(cmd, cmd == root)
	}
	root.RunE = func(cmd *cobra.Command, _ []string) error {
		return e.runTUI(cmd)
	}

	root.PersistentFlags().StringVar(&e.cfgPath, "config", "", "config file (default $XDG_CONFIG_HOME/breathe/config.yaml)")
	root.PersistentFlags().StringVar(&e.dbPath, "db", "", "database file (overrides db_path)")

	root.AddCommand(
		newRunCmd(e),
		newPatternsCmd(e),
		newImportCmd(e),
		newStatsCmd(e),
		newExportCmd(e),
		newConfigCmd(e),
	)
	return root
}

func (e *env) runTUI(cmd *cobra.Command) error {
	st, err := e.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	app := tui.NewApp(tui.Options{
		Store:   st,
		Catalog: catalog.New(st, e.logger),
		Fs:      e.fs,
		Logger:  e.logger,
		Clock:   e.clock,
		Quantum: e.quantum(),
	})
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	final, err := p.Run()
	if a, ok := final.(tui.App); ok {
		a.Close()
	}
	if err != nil && cmd.Context().Err() == nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// Execute runs the command tree until it finishes or the process is
// interrupted, and returns the exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := newEnv(afero.NewOsFs())
	defer e.close()

	if err := newRoot(e).ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}
