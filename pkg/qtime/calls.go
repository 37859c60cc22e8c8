package qtime

import (
	"golang.org/x/sys/unix"
)

// Utimes sets the access and modification times of path
func Utimes(path string, times [2]Timeval) error {
	tv := []unix.Timeval{ToHost(times[0]), ToHost(times[1])}
	return unix.Utimes(path, tv)
}

// Gettimeofday returns the current wall-clock time in the QNX layout
func Gettimeofday() (Timeval, error) {
	var tv unix.Timeval
	if err := unix.Gettimeofday(&tv); err != nil {
		return Timeval{}, err
	}
	return FromHost(tv), nil
}

// Settimeofday sets the wall clock, requires CAP_SYS_TIME
func Settimeofday(tv Timeval) error {
	h := ToHost(tv)
	return unix.Settimeofday(&h)
}
