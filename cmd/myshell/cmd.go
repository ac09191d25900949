//go:build unix

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"shell/internal/config"
	"shell/internal/logger"
	"shell/internal/shell"
	"shell/internal/signals"
)

type options struct {
	configPath  string
	logLevel    string
	logFile     string
	interactive string
	command     string
}

func main() {
	code, err := execute(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "myshell: %v\n", err)
		os.Exit(1)
	}
	os.Exit(code)
}

func execute(args []string) (int, error) {
	var code int
	cmd := newRootCmd(&code)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		return 1, err
	}
	return code, nil
}

func newRootCmd(code *int) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "myshell",
		Short:         "An interactive command shell with job control",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := run(cmd, opts)
			*code = c
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "path to the config file (default $HOME/.myshell.yml)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&opts.logFile, "log-file", "", "also write logs to this file")
	flags.StringVar(&opts.interactive, "interactive", "", "interactive mode: auto, always or never")
	flags.StringVarP(&opts.command, "command", "c", "", "run a single command line and exit")
	return cmd
}

func run(cmd *cobra.Command, opts *options) (int, error) {
	// Dispositions go first so no job can start under the default posture.
	sigs, err := signals.Init()
	if err != nil {
		return 1, fmt.Errorf("error initializing signals: %w", err)
	}
	var log logger.Logger = logger.Discard()
	closeLog := func() error { return nil }
	defer func() {
		if err := sigs.Restore(); err != nil {
			log.Error("restore signal dispositions", logger.WithField("error", err))
		}
		if err := closeLog(); err != nil {
			fmt.Fprintf(os.Stderr, "myshell: close log file: %v\n", err)
		}
	}()

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return 1, fmt.Errorf("error loading config: %w", err)
	}

	fileLog, closeFile, err := logger.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return 1, err
	}
	log, closeLog = fileLog, closeFile

	sh, err := shell.New(cfg, shell.WithSignals(sigs), shell.WithLogger(log))
	if err != nil {
		return 1, fmt.Errorf("error initializing shell: %w", err)
	}
	log.Debug("shell started", logger.WithField("interactive", sh.Interactive()))

	if opts.command != "" {
		return sh.RunCommand(opts.command), nil
	}
	return sh.Run(), nil
}

func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	path := opts.configPath
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, ".myshell.yml")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("log-file") {
		cfg.LogFile = opts.logFile
	}
	switch {
	case flags.Changed("interactive"):
		cfg.Interactive = opts.interactive
	case opts.command != "":
		cfg.Interactive = config.InteractiveNever
	}
	return cfg, cfg.Validate()
}
