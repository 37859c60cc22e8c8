package spawn

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Mode selects how the spawn* family treats the new process
type Mode int

// spawn modes (process.h)
const (
	// PWait blocks until the child exits and returns its wait status
	PWait Mode = 0
	// PNoWait returns the pid
	PNoWait Mode = 1
	// POverlay replaces the calling process
	POverlay Mode = 2
	// PNoWaitO returns the pid and leaves no zombie
	PNoWaitO Mode = 3
)

func (m Mode) String() string {
	switch m {
	case PWait:
		return "P_WAIT"
	case PNoWait:
		return "P_NOWAIT"
	case POverlay:
		return "P_OVERLAY"
	case PNoWaitO:
		return "P_NOWAITO"
	}
	return "P_UNKNOWN"
}

// ParseMode accepts a mode name with or without the P_ prefix
func ParseMode(s string) (Mode, error) {
	name := strings.TrimPrefix(strings.ToUpper(s), "P_")
	for m := PWait; m <= PNoWaitO; m++ {
		if strings.TrimPrefix(m.String(), "P_") == name {
			return m, nil
		}
	}
	return 0, errors.Wrapf(unix.EINVAL, "spawn: mode %q", s)
}

// Argv builds an argument vector from a variadic list
type Argv struct {
	args []string
}

// NewArgv starts a vector with arg0
func NewArgv(arg0 string) *Argv {
	return &Argv{args: []string{arg0}}
}

// Append adds arguments and returns the builder
func (a *Argv) Append(args ...string) *Argv {
	a.args = append(a.args, args...)
	return a
}

// Strings returns an owned copy of the vector, sized to its length
func (a *Argv) Strings() []string {
	ret := make([]string, len(a.args))
	copy(ret, a.args)
	return ret
}

// Spawnve spawns path with argv and envp under mode. For PWait the result is
// the raw wait status, otherwise the pid. POverlay does not return on
// success.
func (s *Spawner) Spawnve(mode Mode, path string, argv, envp []string) (int, error) {
	return s.spawnMode(mode, 0, path, argv, envp)
}

// Spawnvpe is Spawnve with a PATH search for path
func (s *Spawner) Spawnvpe(mode Mode, path string, argv, envp []string) (int, error) {
	return s.spawnMode(mode, SearchPath, path, argv, envp)
}

func (s *Spawner) spawnMode(mode Mode, flags Flag, path string, argv, envp []string) (int, error) {
	mf, err := mode.Flags()
	if err != nil {
		return -1, err
	}
	pid, err := s.Spawn(path, nil, &Inheritance{Flags: flags | mf}, argv, envp)
	if err != nil {
		return -1, err
	}
	if mode != PWait {
		return pid, nil
	}
	return Wait(pid)
}

// Flags returns the spawn flags that implement mode
func (m Mode) Flags() (Flag, error) {
	switch m {
	case PWait, PNoWait:
		return 0, nil
	case POverlay:
		return Exec, nil
	case PNoWaitO:
		return NoZombie, nil
	}
	return 0, errors.Wrapf(unix.EINVAL, "spawn: mode %d", int(m))
}

// Wait blocks until pid exits and returns its raw wait status
func Wait(pid int) (int, error) {
	var wstatus unix.WaitStatus
	_, err := unix.Wait4(pid, &wstatus, 0, nil)
	for err == unix.EINTR {
		_, err = unix.Wait4(pid, &wstatus, 0, nil)
	}
	if err != nil {
		return -1, errors.Wrap(err, "spawn: wait")
	}
	return int(wstatus), nil
}

// Spawnve spawns with the default Spawner
func Spawnve(mode Mode, path string, argv, envp []string) (int, error) {
	return std.Spawnve(mode, path, argv, envp)
}

// Spawnv spawns with the current environment
func Spawnv(mode Mode, path string, argv []string) (int, error) {
	return std.Spawnve(mode, path, argv, os.Environ())
}

// Spawnl spawns with the argument list arg0, args...
func Spawnl(mode Mode, path, arg0 string, args ...string) (int, error) {
	return std.Spawnve(mode, path, NewArgv(arg0).Append(args...).Strings(), os.Environ())
}

// Spawnle spawns with the argument list arg0, args... and envp
func Spawnle(mode Mode, path string, envp []string, arg0 string, args ...string) (int, error) {
	return std.Spawnve(mode, path, NewArgv(arg0).Append(args...).Strings(), envp)
}

// Spawnvpe spawns with a PATH search, using PATH from envp
func Spawnvpe(mode Mode, file string, argv, envp []string) (int, error) {
	return std.Spawnvpe(mode, file, argv, envp)
}

// Spawnvp spawns with a PATH search and the current environment
func Spawnvp(mode Mode, file string, argv []string) (int, error) {
	return std.Spawnvpe(mode, file, argv, os.Environ())
}

// Spawnlp is Spawnl with a PATH search
func Spawnlp(mode Mode, file, arg0 string, args ...string) (int, error) {
	return std.Spawnvpe(mode, file, NewArgv(arg0).Append(args...).Strings(), os.Environ())
}

// Spawnlpe is Spawnle with a PATH search
func Spawnlpe(mode Mode, file string, envp []string, arg0 string, args ...string) (int, error) {
	return std.Spawnvpe(mode, file, NewArgv(arg0).Append(args...).Strings(), envp)
}
