package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/renderers/tui"
)

// app holds the state shared by every subcommand of one invocation.
type app struct {
	v      *viper.Viper
	logger *zap.Logger

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configFile string
	// newDriver builds the prompt driver used by fill.
	newDriver func() tui.PromptDriver
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		v:      viper.New(),
		logger: zap.NewNop(),
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		newDriver: func() tui.PromptDriver {
			return tui.NewStdioDriver()
		},
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "formbuilder",
		Short:         "Build, fill and validate dynamic forms",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(a.v, a.configFile); err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return a.initLogger()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default: ./formbuilder.yaml or ~/.config/formbuilder/formbuilder.yaml)")
	flags.String("log-level", defaultLogLevel, "log level: debug, info, warn, error")
	bindFlag(a.v, keyLogLevel, flags.Lookup("log-level"))

	root.AddCommand(
		newFillCmd(a),
		newRenderCmd(a),
		newValidateCmd(a),
		newImportCmd(a),
		newExportCmd(a),
		newAddFieldCmd(a),
		newKindsCmd(a),
	)
	return root
}

// initLogger builds the process logger from the configured level and makes
// it the zap global.
func (a *app) initLogger() error {
	level, err := zap.ParseAtomicLevel(a.v.GetString(keyLogLevel))
	if err != nil {
		return invalid(fmt.Errorf("log level: %w", err))
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.Level = level
	cfg.DisableStacktrace = true
	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	a.logger = logger
	zap.ReplaceGlobals(logger)
	return nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}

// output returns the writer for path, or stdout when path is empty. The
// returned close func must be called once writing is done.
func (a *app) output(path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return a.stdout, func() error { return nil }, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return file, file.Close, nil
}

func (a *app) write(path string, data []byte) error {
	w, closeFn, err := a.output(path)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		_ = closeFn()
		return err
	}
	return closeFn()
}
