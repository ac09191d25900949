//go:build unix

package wait

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"

	"shell/internal/logger"
)

// WaitOnFgJob waits on job jid as the foreground job.
func (e *Engine) WaitOnFgJob(jid int) error {
	pgid, err := e.jobs.PGID(jid)
	if err != nil {
		return err
	}
	return e.WaitOnFg(pgid)
}

// WaitOnFg continues process group pgid, gives it the terminal when
// interactive, and blocks until the group stops or is fully reaped. A
// stopped job stays in the table; a reaped one is removed and its status
// becomes $?.
func (e *Engine) WaitOnFg(pgid int) (err error) {
	if pgid < 0 {
		return fmt.Errorf("pgid %d: %w", pgid, ErrInvalidPGID)
	}
	jid, err := e.jobs.JID(pgid)
	if err != nil {
		return err
	}
	log := e.log.With(logger.WithField("jid", jid), logger.WithField("pgid", pgid))

	// Always continue the group; some members may be stopped even if the
	// job as a whole was not. ESRCH means everything is already gone and
	// the wait below reports it.
	if err := e.sys.Kill(-pgid, unix.SIGCONT); err != nil && !errors.Is(err, unix.ESRCH) {
		return fmt.Errorf("continue pgid %d: %w", pgid, err)
	}

	if e.term != nil {
		if err := e.term.SetForeground(pgid); err != nil {
			return err
		}
		log.Debug("terminal handed to job")
		defer func() {
			rerr := e.term.Reclaim()
			switch {
			case rerr == nil:
				log.Debug("terminal reclaimed")
			case err == nil:
				err = rerr
			default:
				log.Error("reclaim terminal", logger.WithField("error", rerr))
			}
		}()
	}

	return e.waitForeground(jid, pgid, log)
}

func (e *Engine) waitForeground(jid, pgid int, log logger.Logger) error {
	for {
		var ws unix.WaitStatus
		pid, err := e.wait4(pgid, &ws, unix.WUNTRACED)
		if errors.Is(err, unix.ECHILD) {
			return e.finishForeground(jid, log)
		}
		if err != nil {
			return fmt.Errorf("wait pgid %d: %w", pgid, err)
		}

		if err := e.jobs.SetStatus(jid, ws); err != nil {
			return err
		}
		log.Debug("observed", logger.WithField("pid", pid), logger.WithField("status", describe(ws)))

		if ws.Stopped() {
			fmt.Fprintf(e.notices, "[%d] Stopped\n", jid)
			return nil
		}
	}
}

// finishForeground reports a group with no children left using the last
// status recorded for it.
func (e *Engine) finishForeground(jid int, log logger.Logger) error {
	ws, err := e.jobs.Status(jid)
	if err != nil {
		return err
	}
	switch {
	case ws.Exited():
		e.status.SetStatus(ws.ExitStatus())
	case ws.Signaled():
		e.status.SetStatus(128 + int(ws.Signal()))
	}
	e.jobs.RemoveJID(jid)
	log.Debug("reaped", logger.WithField("status", describe(ws)))
	return nil
}

func describe(ws unix.WaitStatus) string {
	switch {
	case ws.Exited():
		return fmt.Sprintf("exited %d", ws.ExitStatus())
	case ws.Signaled():
		return fmt.Sprintf("killed by %v", ws.Signal())
	case ws.Stopped():
		return fmt.Sprintf("stopped by %v", ws.StopSignal())
	case ws.Continued():
		return "continued"
	default:
		return fmt.Sprintf("status %#x", uint32(ws))
	}
}
