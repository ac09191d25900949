//go:build unix

// Package wait reaps the shell's process groups and keeps the job table in
// step with what the kernel reports.
//
// Every status observed for a group is recorded in the job table before it
// is acted on. When a later wait finds the group already reaped (ECHILD),
// the recorded status is what gets reported, so a child reaped elsewhere is
// never lost.
package wait

import (
	"errors"
	"io"
	"os"

	"golang.org/x/sys/unix"

	"shell/internal/jobs"
	"shell/internal/logger"
)

var ErrInvalidPGID = errors.New("invalid process group id")

// JobTable is the subset of the job table the engine needs.
type JobTable interface {
	JID(pgid int) (int, error)
	PGID(jid int) (int, error)
	Status(jid int) (unix.WaitStatus, error)
	SetStatus(jid int, ws unix.WaitStatus) error
	RemoveJID(jid int)
	RemovePGID(pgid int)
	List() []jobs.Entry
}

// StatusSetter receives the exit status of a reaped foreground job.
type StatusSetter interface {
	SetStatus(status int)
}

// Terminal hands the controlling terminal to a process group and back.
type Terminal interface {
	SetForeground(pgid int) error
	Reclaim() error
}

// Sys is the kernel surface used by the engine.
type Sys interface {
	Kill(pid int, sig unix.Signal) error
	Wait4(pid int, ws *unix.WaitStatus, options int) (int, error)
}

type unixSys struct{}

func (unixSys) Kill(pid int, sig unix.Signal) error {
	return unix.Kill(pid, sig)
}

func (unixSys) Wait4(pid int, ws *unix.WaitStatus, options int) (int, error) {
	return unix.Wait4(pid, ws, options, nil)
}

type Engine struct {
	jobs    JobTable
	status  StatusSetter
	term    Terminal
	sys     Sys
	notices io.Writer
	log     logger.Logger
}

type Option func(*Engine)

// WithTerminal makes the engine interactive. A nil terminal leaves it
// non-interactive.
func WithTerminal(t Terminal) Option {
	return func(e *Engine) { e.term = t }
}

func WithSys(s Sys) Option {
	return func(e *Engine) { e.sys = s }
}

// WithNotices sets where job state notices are written.
func WithNotices(w io.Writer) Option {
	return func(e *Engine) { e.notices = w }
}

func WithLogger(l logger.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func New(table JobTable, status StatusSetter, opts ...Option) *Engine {
	e := &Engine{
		jobs:    table,
		status:  status,
		sys:     unixSys{},
		notices: os.Stderr,
		log:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Interactive() bool {
	return e.term != nil
}

// wait4 retries calls interrupted by a signal.
func (e *Engine) wait4(pgid int, ws *unix.WaitStatus, options int) (int, error) {
	for {
		pid, err := e.sys.Wait4(-pgid, ws, options)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		return pid, err
	}
}
