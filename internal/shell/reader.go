//go:build unix

package shell

import (
	"bufio"
	"io"
	"os"

	"shell/internal/signals"
)

type scanResult struct {
	line string
	err  error
}

// scanReader reads lines from a non-terminal input. A signal on interrupts
// abandons the pending read with signals.ErrInterrupted.
type scanReader struct {
	lines      chan scanResult
	interrupts <-chan os.Signal
	done       chan struct{}
}

func newScanReader(r io.Reader, interrupts <-chan os.Signal) *scanReader {
	s := &scanReader{
		lines:      make(chan scanResult),
		interrupts: interrupts,
		done:       make(chan struct{}),
	}
	go s.scan(bufio.NewScanner(r))
	return s
}

func (s *scanReader) scan(sc *bufio.Scanner) {
	defer close(s.lines)
	for sc.Scan() {
		select {
		case s.lines <- scanResult{line: sc.Text()}:
		case <-s.done:
			return
		}
	}
	err := sc.Err()
	if err == nil {
		err = io.EOF
	}
	select {
	case s.lines <- scanResult{err: err}:
	case <-s.done:
	}
}

func (s *scanReader) Readline() (string, error) {
	select {
	case r, ok := <-s.lines:
		if !ok {
			return "", io.EOF
		}
		return r.line, r.err
	case <-s.interrupts:
		return "", signals.ErrInterrupted
	}
}

func (s *scanReader) Close() error {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	return nil
}
