//go:build unix

package wait

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"

	"shell/internal/jobs"
	"shell/internal/logger"
)

// WaitOnBgJobs polls every tracked job without blocking, recording new
// states, announcing stops and reaping groups that have fully exited. It
// returns the first hard wait error.
func (e *Engine) WaitOnBgJobs() error {
	list := e.jobs.List()
	for i := 0; i < len(list); i++ {
		job := list[i]
		removed, err := e.pollBackground(job)
		if err != nil {
			return err
		}
		if !removed {
			continue
		}
		// The table shrank; pick up after this job in a fresh snapshot.
		list = e.jobs.List()
		i = nextAfter(list, job.JID) - 1
	}
	return nil
}

// pollBackground drains the states available for one job. It stops at the
// first stop it sees; the rest of a mixed group waits for the next sweep.
func (e *Engine) pollBackground(job jobs.Entry) (bool, error) {
	log := e.log.With(logger.WithField("jid", job.JID), logger.WithField("pgid", job.PGID))
	for {
		var ws unix.WaitStatus
		pid, err := e.wait4(job.PGID, &ws, unix.WNOHANG|unix.WUNTRACED)
		if errors.Is(err, unix.ECHILD) {
			return true, e.reapBackground(job, log)
		}
		if err != nil {
			return false, fmt.Errorf("wait pgid %d: %w", job.PGID, err)
		}
		if pid == 0 {
			return false, nil
		}

		if err := e.jobs.SetStatus(job.JID, ws); err != nil {
			return false, err
		}
		log.Debug("observed", logger.WithField("pid", pid), logger.WithField("status", describe(ws)))

		if ws.Stopped() {
			fmt.Fprintf(e.notices, "[%d] Stopped\n", job.JID)
			return false, nil
		}
	}
}

func (e *Engine) reapBackground(job jobs.Entry, log logger.Logger) error {
	ws, err := e.jobs.Status(job.JID)
	if err != nil {
		return err
	}
	switch {
	case ws.Exited():
		fmt.Fprintf(e.notices, "[%d] Done\n", job.JID)
	case ws.Signaled():
		fmt.Fprintf(e.notices, "[%d] Terminated\n", job.JID)
	}
	e.jobs.RemovePGID(job.PGID)
	log.Debug("reaped", logger.WithField("status", describe(ws)))
	return nil
}

// nextAfter returns the index of the first entry with a job id above jid.
func nextAfter(list []jobs.Entry, jid int) int {
	for i, e := range list {
		if e.JID > jid {
			return i
		}
	}
	return len(list)
}
