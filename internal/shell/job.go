//go:build unix

package shell

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"

	"shell/internal/logger"
)

// continuedStatus is the wait status the kernel reports for WCONTINUED.
const continuedStatus unix.WaitStatus = 0xffff

// runExternal starts args as a new process group and either waits on it in
// the foreground or leaves it to the background sweep.
func (s *Shell) runExternal(args []string) error {
	background := false
	if args[len(args)-1] == "&" {
		background = true
		args = args[:len(args)-1]
	}
	if len(args) == 0 {
		s.params.SetStatus(2)
		return errors.New("syntax error near unexpected token `&'")
	}

	cmd := exec.Command(args[0], args[1:]...)
	// Only real files are handed down; anything else would need a copy
	// goroutine that lives until cmd.Wait, which the shell never calls.
	if f, ok := s.stdout.(*os.File); ok {
		cmd.Stdout = f
	}
	if f, ok := s.stderr.(*os.File); ok {
		cmd.Stderr = f
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if !background {
		if f, ok := s.stdin.(*os.File); ok {
			cmd.Stdin = f
		}
		if s.term != nil {
			// The child takes the terminal before exec so it cannot race
			// the shell's own handoff and stop on its first read.
			cmd.SysProcAttr.Foreground = true
			cmd.SysProcAttr.Ctty = s.term.Fd()
		}
	}

	start := cmd.Start
	if background && s.term == nil {
		start = func() error { return s.startDetached(cmd) }
	}
	if err := start(); err != nil {
		if cmd.SysProcAttr.Foreground {
			// The child may have taken the terminal before exec failed.
			s.reclaimTerminal()
		}
		if errors.Is(err, exec.ErrNotFound) {
			s.params.SetStatus(127)
			return fmt.Errorf("%s: command not found", args[0])
		}
		s.params.SetStatus(126)
		return err
	}
	pgid := cmd.Process.Pid
	// Reaping is done by the wait engine, not os/exec.
	cmd.Process.Release()

	command := strings.Join(args, " ")
	jid, err := s.jobs.Add(pgid, command)
	if err != nil {
		return err
	}
	s.log.Debug("launched", logger.WithField("jid", jid), logger.WithField("pgid", pgid),
		logger.WithField("background", background))

	if background {
		fmt.Fprintf(s.stderr, "[%d] %d\n", jid, pgid)
		s.params.SetStatus(0)
		return nil
	}
	return s.engine.WaitOnFg(pgid)
}

func (s *Shell) reclaimTerminal() {
	if err := s.term.Reclaim(); err != nil {
		s.log.Error("reclaim terminal", logger.WithField("error", err))
	}
}
