package spawn

import (
	"fmt"
	"syscall"
)

// ErrorLocation defines the step where the child process failed to exec
type ErrorLocation int

// ChildError defines the specific error and location where it failed
type ChildError struct {
	Err      syscall.Errno
	Location ErrorLocation
	Index    int
}

// Location constants
const (
	LocClone ErrorLocation = iota + 1
	LocCloseRead
	LocGetPid
	LocSetPgid
	LocSigprocmask
	LocSetSid
	LocSetRlimit
	LocDup3
	LocFcntl
	LocStop
	LocExecve
)

var locToString = []string{
	"unknown",
	"clone",
	"close_read",
	"getpid",
	"setpgid",
	"sigprocmask",
	"setsid",
	"setrlimit",
	"dup3",
	"fcntl",
	"stop",
	"execve",
}

func (e ErrorLocation) String() string {
	if e >= LocClone && e <= LocExecve {
		return locToString[e]
	}
	return "unknown"
}

func (e ChildError) Error() string {
	if e.Index > 0 {
		return fmt.Sprintf("%s(%d): %s", e.Location.String(), e.Index, e.Err.Error())
	}
	return fmt.Sprintf("%s: %s", e.Location.String(), e.Err.Error())
}

// Unwrap returns the errno
func (e ChildError) Unwrap() error {
	return e.Err
}
