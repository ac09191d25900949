//go:build unix

// Package tty manages foreground ownership of the controlling terminal.
package tty

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

var ErrNotTerminal = errors.New("not a terminal")

type Terminal struct {
	fd int
}

// Open returns the terminal behind f, or ErrNotTerminal.
func Open(f *os.File) (*Terminal, error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("%s: %w", f.Name(), ErrNotTerminal)
	}
	return &Terminal{fd: fd}, nil
}

func (t *Terminal) Fd() int {
	return t.fd
}

// SetForeground makes pgid the terminal's foreground process group.
func (t *Terminal) SetForeground(pgid int) error {
	if err := unix.IoctlSetPointerInt(t.fd, unix.TIOCSPGRP, pgid); err != nil {
		return fmt.Errorf("tcsetpgrp %d: %w", pgid, err)
	}
	return nil
}

// Foreground reports the terminal's foreground process group.
func (t *Terminal) Foreground() (int, error) {
	pgid, err := unix.IoctlGetInt(t.fd, unix.TIOCGPGRP)
	if err != nil {
		return 0, fmt.Errorf("tcgetpgrp: %w", err)
	}
	return pgid, nil
}

// Reclaim hands the terminal back to the shell's own process group.
func (t *Terminal) Reclaim() error {
	return t.SetForeground(unix.Getpgrp())
}
