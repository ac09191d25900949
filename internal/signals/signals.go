//go:build unix

// Package signals owns the shell's signal dispositions.
//
// The shell must survive the keyboard signals meant for its foreground job
// and must be able to call tcsetpgrp from a background process group. Init
// puts the process into that posture and remembers what it replaced; Restore
// puts it back. SIGTTOU is ignored outright. SIGINT and SIGTSTP are caught
// and dropped instead: the Go runtime resets caught signals to their default
// action in forked children, whereas an ignored signal would stay ignored in
// every job the shell starts.
package signals

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

var (
	ErrAlreadyInitialized = errors.New("signals: dispositions already initialized")
	ErrRestored           = errors.New("signals: dispositions already restored")
	ErrInterrupted        = errors.New("interrupted")
	ErrUncatchable        = errors.New("signals: disposition cannot be changed")
)

// Managed lists the signals whose dispositions Init saves.
var Managed = []os.Signal{syscall.SIGTSTP, syscall.SIGINT, syscall.SIGTTOU}

var live atomic.Bool

// Manager holds the dispositions captured at startup.
type Manager struct {
	saved      map[os.Signal]bool // signal -> was ignored
	enabled    map[os.Signal]bool
	dropped    chan os.Signal
	interrupts chan os.Signal
	restored   bool
}

// Init saves the current dispositions of SIGTSTP, SIGINT and SIGTTOU and
// makes the shell immune to them. Only one Manager may be live at a time.
func Init() (*Manager, error) {
	if !live.CompareAndSwap(false, true) {
		return nil, ErrAlreadyInitialized
	}

	m := &Manager{
		saved:      make(map[os.Signal]bool, len(Managed)),
		enabled:    make(map[os.Signal]bool),
		dropped:    make(chan os.Signal, 1),
		interrupts: make(chan os.Signal, 1),
	}
	for _, sig := range Managed {
		m.saved[sig] = signal.Ignored(sig)
	}

	// Nothing ever receives from dropped; the runtime discards deliveries
	// once the buffer is full.
	signal.Notify(m.dropped, syscall.SIGTSTP, syscall.SIGINT)
	signal.Ignore(syscall.SIGTTOU)
	return m, nil
}

// EnableInterrupt makes sig interrupt blocking reads that select on
// Interrupts. The previous disposition is not recorded.
func (m *Manager) EnableInterrupt(sig os.Signal) error {
	if m.restored {
		return ErrRestored
	}
	if err := checkCatchable(sig); err != nil {
		return err
	}
	signal.Notify(m.interrupts, sig)
	m.enabled[sig] = true
	return nil
}

// Interrupts delivers signals enabled with EnableInterrupt. At most one
// delivery is buffered.
func (m *Manager) Interrupts() <-chan os.Signal {
	return m.interrupts
}

// Ignore sets sig to be ignored. The previous disposition is not recorded.
func (m *Manager) Ignore(sig os.Signal) error {
	if m.restored {
		return ErrRestored
	}
	if err := checkCatchable(sig); err != nil {
		return err
	}
	signal.Ignore(sig)
	return nil
}

// Reinstate undoes Ignore: each signal goes back to the disposition the
// Manager gave it, or to its default if the Manager never touched it.
func (m *Manager) Reinstate(sigs ...os.Signal) error {
	if m.restored {
		return ErrRestored
	}
	for _, sig := range sigs {
		switch {
		case sig == syscall.SIGTTOU:
			signal.Ignore(sig)
			continue
		case sig == syscall.SIGINT, sig == syscall.SIGTSTP:
			signal.Notify(m.dropped, sig)
		default:
			resetDefault(sig)
		}
		if m.enabled[sig] {
			signal.Notify(m.interrupts, sig)
		}
	}
	return nil
}

// Restore reinstalls the dispositions saved by Init and releases the
// Manager. It runs once; later calls return ErrRestored.
func (m *Manager) Restore() error {
	if m.restored {
		return ErrRestored
	}
	m.restored = true

	signal.Stop(m.interrupts)
	signal.Stop(m.dropped)
	for _, sig := range Managed {
		if m.saved[sig] {
			signal.Ignore(sig)
			continue
		}
		resetDefault(sig)
	}

	live.Store(false)
	return nil
}

// checkCatchable rejects SIGKILL and SIGSTOP, whose dispositions the kernel
// fixes.
func checkCatchable(sig os.Signal) error {
	if sig == syscall.SIGKILL || sig == syscall.SIGSTOP {
		return fmt.Errorf("%w: %v", ErrUncatchable, sig)
	}
	return nil
}

// resetDefault gives sig its default action even if it is ignored. Notify
// clears the ignore and reinstalls the runtime handler; Reset then drops
// every channel.
func resetDefault(sig os.Signal) {
	scratch := make(chan os.Signal, 1)
	signal.Notify(scratch, sig)
	signal.Reset(sig)
}
