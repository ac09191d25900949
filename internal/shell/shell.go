//go:build unix

package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"

	"shell/internal/config"
	"shell/internal/jobs"
	"shell/internal/logger"
	"shell/internal/params"
	"shell/internal/signals"
	"shell/internal/tty"
	"shell/internal/wait"
)

type lineReader interface {
	Readline() (string, error)
	Close() error
}

// terminal is the controlling terminal as seen by the shell.
type terminal interface {
	Fd() int
	SetForeground(pgid int) error
	Reclaim() error
}

type Shell struct {
	config  *config.Config
	log     logger.Logger
	signals *signals.Manager
	jobs    *jobs.Table
	params  *params.Params
	engine  *wait.Engine
	term    terminal
	reader  lineReader

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	exited   bool
	exitCode int
}

type Option func(*Shell)

// WithSignals lets the shell use the process's signal dispositions.
func WithSignals(m *signals.Manager) Option {
	return func(s *Shell) { s.signals = m }
}

func WithLogger(l logger.Logger) Option {
	return func(s *Shell) { s.log = l }
}

// WithIO replaces the standard streams.
func WithIO(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(s *Shell) {
		s.stdin = stdin
		s.stdout = stdout
		s.stderr = stderr
	}
}

func New(cfg *config.Config, opts ...Option) (*Shell, error) {
	s := &Shell{
		config: cfg,
		log:    logger.Discard(),
		jobs:   jobs.New(),
		params: params.New(),
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(s)
	}

	term, err := s.openTerminal()
	if err != nil {
		return nil, err
	}
	if term != nil {
		s.term = term
	}

	if err := s.setupSignalHandling(); err != nil {
		return nil, fmt.Errorf("error configuring signals: %w", err)
	}

	engineOpts := []wait.Option{wait.WithNotices(s.stderr), wait.WithLogger(s.log)}
	if s.term != nil {
		engineOpts = append(engineOpts, wait.WithTerminal(s.term))
	}
	s.engine = wait.New(s.jobs, s.params, engineOpts...)

	if s.term != nil {
		rl, err := readline.NewEx(&readline.Config{
			Prompt: cfg.Prompt,
			Stdin:  io.NopCloser(s.stdin),
			Stdout: s.stdout,
			Stderr: s.stderr,
		})
		if err != nil {
			return nil, fmt.Errorf("error initializing readline: %w", err)
		}
		s.reader = rl
	} else {
		s.reader = newScanReader(s.stdin, s.interrupts())
	}
	return s, nil
}

// openTerminal resolves the configured interactive mode against stdin.
func (s *Shell) openTerminal() (*tty.Terminal, error) {
	if s.config.Interactive == config.InteractiveNever {
		return nil, nil
	}
	f, ok := s.stdin.(*os.File)
	if !ok {
		if s.config.Interactive == config.InteractiveAlways {
			return nil, fmt.Errorf("interactive mode: %w", tty.ErrNotTerminal)
		}
		return nil, nil
	}
	term, err := tty.Open(f)
	if err != nil {
		if s.config.Interactive == config.InteractiveAlways {
			return nil, fmt.Errorf("interactive mode: %w", err)
		}
		return nil, nil
	}
	return term, nil
}

func (s *Shell) Interactive() bool {
	return s.term != nil
}

// Run reads and executes lines until exit or end of input and returns the
// shell's exit status.
func (s *Shell) Run() int {
	defer s.reader.Close()

	for !s.exited {
		s.reapBackground()

		line, err := s.reader.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			s.params.SetStatus(130)
			continue
		case errors.Is(err, signals.ErrInterrupted):
			fmt.Fprintln(s.stderr)
			return 130
		case errors.Is(err, io.EOF):
			return s.params.Status()
		case err != nil:
			s.log.Error("read input", logger.WithField("error", err))
			return 1
		}

		s.runLine(line)
	}
	return s.exitCode
}

// RunCommand executes a single command line and returns its status.
func (s *Shell) RunCommand(line string) int {
	defer s.reader.Close()
	s.runLine(line)
	if s.exited {
		return s.exitCode
	}
	return s.params.Status()
}

func (s *Shell) runLine(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	if err := s.Execute(line); err != nil {
		fmt.Fprintf(s.stderr, "myshell: %v\n", err)
		if s.params.Status() == 0 {
			s.params.SetStatus(1)
		}
	}
}

func (s *Shell) reapBackground() {
	if err := s.engine.WaitOnBgJobs(); err != nil {
		s.log.Warn("background sweep failed", logger.WithField("error", err))
	}
}

// Execute runs one command line.
func (s *Shell) Execute(input string) error {
	input = expandStatus(input, s.params.Status())

	args, err := shellquote.Split(input)
	if err != nil {
		s.params.SetStatus(2)
		return fmt.Errorf("error parsing command: %w", err)
	}
	if len(args) == 0 {
		return nil
	}

	if ok, err := s.executeBuiltin(args); ok {
		if err != nil {
			s.params.SetStatus(1)
			return err
		}
		return nil
	}
	return s.runExternal(args)
}

// Jobs returns a snapshot of the job table.
func (s *Shell) Jobs() []jobs.Entry {
	return s.jobs.List()
}

func (s *Shell) Status() int {
	return s.params.Status()
}

// expandStatus replaces $? with status everywhere except inside single
// quotes or after a backslash.
func expandStatus(input string, status int) string {
	value := strconv.Itoa(status)
	var b strings.Builder
	single, double := false, false
	for i := 0; i < len(input); i++ {
		c := input[i]
		switch {
		case c == '\\' && !single && i+1 < len(input):
			b.WriteByte(c)
			b.WriteByte(input[i+1])
			i++
			continue
		case c == '\'' && !double:
			single = !single
		case c == '"' && !single:
			double = !double
		case c == '$' && !single && i+1 < len(input) && input[i+1] == '?':
			b.WriteString(value)
			i++
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
