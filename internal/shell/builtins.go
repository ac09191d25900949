//go:build unix

package shell

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"shell/internal/jobs"
)

var errNoCurrentJob = errors.New("no current job")

func (s *Shell) executeBuiltin(args []string) (bool, error) {
	var err error
	switch args[0] {
	case "cd":
		err = s.changeDirectory(args[1:])
	case "exit":
		err = s.exit(args[1:])
	case "jobs":
		s.listJobs()
	case "fg":
		return true, s.foregroundJob(args[1:])
	case "bg":
		err = s.backgroundJob(args[1:])
	default:
		return false, nil
	}
	if err == nil {
		s.params.SetStatus(0)
	}
	return true, err
}

func (s *Shell) changeDirectory(args []string) error {
	var dir string
	if len(args) == 0 {
		dir = s.config.HomeDir
	} else {
		dir = args[0]
	}

	if err := os.Chdir(dir); err != nil {
		return fmt.Errorf("cd: %w", err)
	}
	return nil
}

func (s *Shell) exit(args []string) error {
	code := s.params.Status()
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("exit: %s: numeric argument required", args[0])
		}
		code = n & 0xff
	}
	s.exited = true
	s.exitCode = code
	return nil
}

func (s *Shell) listJobs() {
	for _, job := range s.jobs.List() {
		fmt.Fprintf(s.stdout, "[%d] %s\t%s\n", job.JID, job.State(), job.Command)
	}
}

// resolveJob parses a job spec ("2" or "%2"); with no argument it picks the
// most recently started job.
func (s *Shell) resolveJob(name string, args []string) (jobs.Entry, error) {
	list := s.jobs.List()
	if len(args) == 0 {
		if len(list) == 0 {
			return jobs.Entry{}, fmt.Errorf("%s: %w", name, errNoCurrentJob)
		}
		return list[len(list)-1], nil
	}

	jid, err := strconv.Atoi(strings.TrimPrefix(args[0], "%"))
	if err != nil {
		return jobs.Entry{}, fmt.Errorf("%s: %s: invalid job id", name, args[0])
	}
	for _, job := range list {
		if job.JID == jid {
			return job, nil
		}
	}
	return jobs.Entry{}, fmt.Errorf("%s: %s: %w", name, args[0], jobs.ErrNotFound)
}

func (s *Shell) foregroundJob(args []string) error {
	job, err := s.resolveJob("fg", args)
	if err != nil {
		s.params.SetStatus(1)
		return err
	}
	fmt.Fprintln(s.stdout, job.Command)
	if err := s.engine.WaitOnFgJob(job.JID); err != nil {
		return fmt.Errorf("fg: %w", err)
	}
	return nil
}

func (s *Shell) backgroundJob(args []string) error {
	job, err := s.resolveJob("bg", args)
	if err != nil {
		return err
	}
	if err := unix.Kill(-job.PGID, unix.SIGCONT); err != nil {
		return fmt.Errorf("bg: continue job %d: %w", job.JID, err)
	}
	// Marks the job running again until the next sweep sees otherwise.
	if err := s.jobs.SetStatus(job.JID, continuedStatus); err != nil {
		return fmt.Errorf("bg: %w", err)
	}
	fmt.Fprintf(s.stdout, "[%d] %s &\n", job.JID, job.Command)
	return nil
}
