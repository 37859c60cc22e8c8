// Package rlimit provides data structure for resource limits applied to a
// spawned process by prlimit on linux.
package rlimit

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// RLimit is the resource limits defined by Linux setrlimit
type RLimit struct {
	// Res is the resource type (e.g. unix.RLIMIT_STACK)
	Res int
	// Rlim is the limit applied to that resource
	Rlim unix.Rlimit
}

// Current returns the calling process's limit for res
func Current(res int) (RLimit, error) {
	r := RLimit{Res: res}
	if err := unix.Getrlimit(res, &r.Rlim); err != nil {
		return r, err
	}
	return r, nil
}

// Stack builds the stack limit for a spawned process: the soft limit is
// size, the hard limit stays at the current hard limit. A soft limit above
// the hard limit is left for the kernel to reject.
func Stack(size Size) (RLimit, error) {
	cur, err := Current(unix.RLIMIT_STACK)
	if err != nil {
		return RLimit{}, err
	}
	return RLimit{
		Res:  unix.RLIMIT_STACK,
		Rlim: unix.Rlimit{Cur: uint64(size), Max: cur.Rlim.Max},
	}, nil
}

func (r RLimit) String() string {
	name := "Stack"
	if r.Res != unix.RLIMIT_STACK {
		name = fmt.Sprintf("Res(%d)", r.Res)
	}
	return fmt.Sprintf("%s[%v:%v]", name, Size(r.Rlim.Cur), Size(r.Rlim.Max))
}
