//go:build unix

// Package jobs tracks the process groups started by the shell.
package jobs

import (
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sys/unix"
)

var (
	ErrNotFound      = errors.New("no such job")
	ErrDuplicatePGID = errors.New("process group already tracked")
)

type State int

const (
	Running State = iota
	Stopped
	Exited
	Signaled
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Exited:
		return "Done"
	case Signaled:
		return "Terminated"
	default:
		return "Running"
	}
}

// Entry is one row of a List snapshot.
type Entry struct {
	JID     int
	PGID    int
	Command string
	Status  unix.WaitStatus
	seen    bool
}

// State derives the run state from the last recorded status. A job with no
// recorded status, or one last seen continued, is Running.
func (e Entry) State() State {
	if !e.seen {
		return Running
	}
	switch {
	case e.Status.Stopped():
		return Stopped
	case e.Status.Exited():
		return Exited
	case e.Status.Signaled():
		return Signaled
	default:
		return Running
	}
}

// Table maps shell job ids to process groups. It is not safe for
// concurrent use.
type Table struct {
	jobs map[int]*Entry
}

func New() *Table {
	return &Table{jobs: make(map[int]*Entry)}
}

// Add tracks pgid under the lowest free job id.
func (t *Table) Add(pgid int, command string) (int, error) {
	if _, err := t.JID(pgid); err == nil {
		return 0, fmt.Errorf("pgid %d: %w", pgid, ErrDuplicatePGID)
	}
	jid := 1
	for {
		if _, ok := t.jobs[jid]; !ok {
			break
		}
		jid++
	}
	t.jobs[jid] = &Entry{JID: jid, PGID: pgid, Command: command}
	return jid, nil
}

func (t *Table) JID(pgid int) (int, error) {
	for jid, e := range t.jobs {
		if e.PGID == pgid {
			return jid, nil
		}
	}
	return 0, fmt.Errorf("pgid %d: %w", pgid, ErrNotFound)
}

func (t *Table) PGID(jid int) (int, error) {
	e, ok := t.jobs[jid]
	if !ok {
		return 0, fmt.Errorf("jid %d: %w", jid, ErrNotFound)
	}
	return e.PGID, nil
}

func (t *Table) Status(jid int) (unix.WaitStatus, error) {
	e, ok := t.jobs[jid]
	if !ok {
		return 0, fmt.Errorf("jid %d: %w", jid, ErrNotFound)
	}
	return e.Status, nil
}

func (t *Table) SetStatus(jid int, ws unix.WaitStatus) error {
	e, ok := t.jobs[jid]
	if !ok {
		return fmt.Errorf("jid %d: %w", jid, ErrNotFound)
	}
	e.Status = ws
	e.seen = true
	return nil
}

func (t *Table) RemoveJID(jid int) {
	delete(t.jobs, jid)
}

func (t *Table) RemovePGID(pgid int) {
	if jid, err := t.JID(pgid); err == nil {
		delete(t.jobs, jid)
	}
}

// List returns a copy of the table ordered by job id.
func (t *Table) List() []Entry {
	out := make([]Entry, 0, len(t.jobs))
	for _, e := range t.jobs {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JID < out[j].JID })
	return out
}

func (t *Table) Len() int {
	return len(t.jobs)
}
