//go:build unix

package shell

import (
	"os"
	"os/exec"
	"syscall"

	"shell/internal/logger"
)

// setupSignalHandling lets a signal abort a non-interactive read. Without a
// signal manager the process's dispositions are left alone.
func (s *Shell) setupSignalHandling() error {
	if s.signals == nil {
		return nil
	}
	return s.signals.EnableInterrupt(syscall.SIGINT)
}

// startDetached starts an asynchronous command of a shell without job
// control: the child inherits SIGINT and SIGQUIT ignored, so keyboard
// interrupts aimed at the shell's group leave it running.
func (s *Shell) startDetached(cmd *exec.Cmd) error {
	if s.signals == nil {
		return cmd.Start()
	}
	for _, sig := range []os.Signal{syscall.SIGINT, syscall.SIGQUIT} {
		if err := s.signals.Ignore(sig); err != nil {
			return err
		}
	}
	defer func() {
		if err := s.signals.Reinstate(syscall.SIGINT, syscall.SIGQUIT); err != nil {
			s.log.Error("reinstate signal dispositions", logger.WithField("error", err))
		}
	}()
	return cmd.Start()
}

func (s *Shell) interrupts() <-chan os.Signal {
	if s.signals == nil {
		return nil
	}
	return s.signals.Interrupts()
}
