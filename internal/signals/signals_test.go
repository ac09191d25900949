//go:build unix

package signals

import (
	"errors"
	"os"
	"os/signal"
	"syscall"
	"testing"
	"time"
)

func snapshot() map[os.Signal]bool {
	got := make(map[os.Signal]bool, len(Managed))
	for _, sig := range Managed {
		got[sig] = signal.Ignored(sig)
	}
	return got
}

func TestInitRestoreRoundTrip(t *testing.T) {
	before := snapshot()

	m, err := Init()
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if !signal.Ignored(syscall.SIGTTOU) {
		t.Fatal("SIGTTOU not ignored after init")
	}
	if err := m.Restore(); err != nil {
		t.Fatalf("restore: %v", err)
	}

	after := snapshot()
	for _, sig := range Managed {
		if before[sig] != after[sig] {
			t.Fatalf("%v: ignored=%v before init, %v after restore", sig, before[sig], after[sig])
		}
	}
}

func TestInitIsSingleShot(t *testing.T) {
	m, err := Init()
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	defer m.Restore()

	if _, err := Init(); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("second init err = %v, want ErrAlreadyInitialized", err)
	}
}

func TestRestoreConsumesManager(t *testing.T) {
	m, err := Init()
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := m.Restore(); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if err := m.Restore(); !errors.Is(err, ErrRestored) {
		t.Fatalf("second restore err = %v, want ErrRestored", err)
	}
	if err := m.Ignore(syscall.SIGUSR2); !errors.Is(err, ErrRestored) {
		t.Fatalf("ignore after restore err = %v, want ErrRestored", err)
	}

	// A fresh manager may be created once the previous one is restored.
	m2, err := Init()
	if err != nil {
		t.Fatalf("init after restore: %v", err)
	}
	m2.Restore()
}

func TestShellSurvivesKeyboardSignals(t *testing.T) {
	m, err := Init()
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	defer m.Restore()

	for _, sig := range []syscall.Signal{syscall.SIGINT, syscall.SIGTSTP, syscall.SIGTTOU} {
		if err := syscall.Kill(os.Getpid(), sig); err != nil {
			t.Fatalf("raise %v: %v", sig, err)
		}
	}
	// Still running and not stopped if we get here.
	time.Sleep(50 * time.Millisecond)
}

func TestEnableInterruptDeliversToChannel(t *testing.T) {
	m, err := Init()
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	defer m.Restore()
	defer signal.Reset(syscall.SIGUSR1)

	if err := m.EnableInterrupt(syscall.SIGUSR1); err != nil {
		t.Fatalf("enable interrupt: %v", err)
	}
	if err := syscall.Kill(os.Getpid(), syscall.SIGUSR1); err != nil {
		t.Fatalf("raise: %v", err)
	}

	select {
	case sig := <-m.Interrupts():
		if sig != syscall.SIGUSR1 {
			t.Fatalf("got %v, want SIGUSR1", sig)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("interrupt not delivered")
	}
}

func TestIgnore(t *testing.T) {
	m, err := Init()
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	defer m.Restore()
	defer func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGUSR2)
		signal.Stop(c)
	}()

	if err := m.Ignore(syscall.SIGUSR2); err != nil {
		t.Fatalf("ignore: %v", err)
	}
	if !signal.Ignored(syscall.SIGUSR2) {
		t.Fatal("SIGUSR2 not ignored")
	}
}

func TestReinstateUndoesIgnore(t *testing.T) {
	m, err := Init()
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	defer m.Restore()
	defer signal.Reset(syscall.SIGUSR1)

	if err := m.EnableInterrupt(syscall.SIGUSR1); err != nil {
		t.Fatalf("enable interrupt: %v", err)
	}
	for _, sig := range []os.Signal{syscall.SIGINT, syscall.SIGUSR1} {
		if err := m.Ignore(sig); err != nil {
			t.Fatalf("ignore %v: %v", sig, err)
		}
		if !signal.Ignored(sig) {
			t.Fatalf("%v not ignored", sig)
		}
	}

	if err := m.Reinstate(syscall.SIGINT, syscall.SIGUSR1); err != nil {
		t.Fatalf("reinstate: %v", err)
	}
	for _, sig := range []os.Signal{syscall.SIGINT, syscall.SIGUSR1} {
		if signal.Ignored(sig) {
			t.Fatalf("%v still ignored after reinstate", sig)
		}
	}

	// SIGINT is caught again, so raising it must not kill the test, and
	// SIGUSR1 reaches the interrupt channel again.
	if err := syscall.Kill(os.Getpid(), syscall.SIGINT); err != nil {
		t.Fatalf("raise SIGINT: %v", err)
	}
	if err := syscall.Kill(os.Getpid(), syscall.SIGUSR1); err != nil {
		t.Fatalf("raise SIGUSR1: %v", err)
	}
	select {
	case <-m.Interrupts():
	case <-time.After(2 * time.Second):
		t.Fatal("interrupt not delivered after reinstate")
	}
}

func TestUncatchableSignalsRejected(t *testing.T) {
	m, err := Init()
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	defer m.Restore()

	for _, sig := range []os.Signal{syscall.SIGKILL, syscall.SIGSTOP} {
		if err := m.Ignore(sig); !errors.Is(err, ErrUncatchable) {
			t.Fatalf("ignore %v err = %v, want ErrUncatchable", sig, err)
		}
		if err := m.EnableInterrupt(sig); !errors.Is(err, ErrUncatchable) {
			t.Fatalf("enable interrupt %v err = %v, want ErrUncatchable", sig, err)
		}
	}
}
