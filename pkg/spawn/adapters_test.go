package spawn

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

func TestArgv(t *testing.T) {
	a := NewArgv("ls").Append("-l").Append("/tmp", "/var")
	got := a.Strings()
	want := []string{"ls", "-l", "/tmp", "/var"}
	if len(got) != len(want) || cap(got) != len(want) {
		t.Fatalf("got %v (cap %d)", got, cap(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("argv[%d] = %q", i, got[i])
		}
	}
	got[0] = "x"
	if a.Strings()[0] != "ls" {
		t.Error("Strings shares storage")
	}
}

func TestSpawnl_Wait(t *testing.T) {
	st, err := Spawnl(PWait, "/bin/sh", "sh", "-c", "exit 3")
	if err != nil {
		t.Fatal(err)
	}
	ws := unix.WaitStatus(st)
	if !ws.Exited() || ws.ExitStatus() != 3 {
		t.Errorf("status %#x, want exit 3", st)
	}
}

func TestSpawnle_Env(t *testing.T) {
	st, err := Spawnle(PWait, "/bin/sh", []string{"V=42"}, "sh", "-c", `[ "$V" = 42 ]`)
	if err != nil {
		t.Fatal(err)
	}
	if unix.WaitStatus(st).ExitStatus() != 0 {
		t.Errorf("status %#x: environment not passed", st)
	}
}

func TestSpawnvp(t *testing.T) {
	st, err := Spawnvpe(PWait, "sh", []string{"sh", "-c", "exit 5"}, []string{"PATH=/usr/bin:/bin"})
	if err != nil {
		t.Fatal(err)
	}
	if unix.WaitStatus(st).ExitStatus() != 5 {
		t.Errorf("status %#x", st)
	}

	_, err = Spawnlpe(PNoWait, "no-such-program-here", []string{"PATH=/nonexistent"}, "x")
	if errors.Cause(err) != unix.ENOENT {
		t.Errorf("got %v, want ENOENT", err)
	}
}

func TestSpawnv_NoWait(t *testing.T) {
	pid, err := Spawnv(PNoWait, "/bin/sh", []string{"sh", "-c", "exit 4"})
	if err != nil {
		t.Fatal(err)
	}
	var ws unix.WaitStatus
	if _, err := unix.Wait4(pid, &ws, 0, nil); err != nil {
		t.Fatal(err)
	}
	if ws.ExitStatus() != 4 {
		t.Errorf("status %v", ws)
	}
}

func TestSpawnv_NoWaitO(t *testing.T) {
	pid, err := Spawnv(PNoWaitO, "/bin/sh", []string{"sh", "-c", "exit 0"})
	if err != nil {
		t.Fatal(err)
	}
	if pid <= 0 {
		t.Fatalf("pid %d", pid)
	}
	// the child is reaped in the background, a later wait finds nothing
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if err := unix.Kill(pid, 0); err == unix.ESRCH {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("child %d still present", pid)
}

func TestSpawn_BadMode(t *testing.T) {
	for _, m := range []Mode{-1, 4, 100} {
		ret, err := Spawnl(m, "/bin/sh", "sh")
		if ret != -1 || errors.Cause(err) != unix.EINVAL {
			t.Errorf("mode %v: got %d, %v", m, ret, err)
		}
	}
}

func TestModeString(t *testing.T) {
	if PNoWaitO.String() != "P_NOWAITO" || Mode(9).String() != "P_UNKNOWN" {
		t.Error("mode names")
	}
}

func TestParseMode(t *testing.T) {
	tests := map[string]Mode{
		"wait":      PWait,
		"P_NOWAIT":  PNoWait,
		"overlay":   POverlay,
		"p_nowaito": PNoWaitO,
	}
	for s, want := range tests {
		got, err := ParseMode(s)
		if err != nil || got != want {
			t.Errorf("%q: got %v, %v", s, got, err)
		}
	}
	if _, err := ParseMode("later"); errors.Cause(err) != unix.EINVAL {
		t.Errorf("got %v, want EINVAL", err)
	}
}

func TestModeFlags(t *testing.T) {
	if f, _ := POverlay.Flags(); f != Exec {
		t.Errorf("overlay: %v", f)
	}
	if f, _ := PNoWaitO.Flags(); f != NoZombie {
		t.Errorf("nowaito: %v", f)
	}
	if _, err := Mode(7).Flags(); errors.Cause(err) != unix.EINVAL {
		t.Errorf("got %v", err)
	}
}
