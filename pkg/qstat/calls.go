package qstat

import (
	"golang.org/x/sys/unix"
)

// Stat returns the QNX stat of path, following symlinks
func Stat(path string) (Stat_t, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return Stat_t{}, err
	}
	return FromHost(&st), nil
}

// Lstat returns the QNX stat of path without following a final symlink
func Lstat(path string) (Stat_t, error) {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return Stat_t{}, err
	}
	return FromHost(&st), nil
}

// Fstat returns the QNX stat of an open descriptor
func Fstat(fd int) (Stat_t, error) {
	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return Stat_t{}, err
	}
	return FromHost(&st), nil
}

// Fstatat returns the QNX stat of path relative to dirfd. flags takes the host
// AT_* values (AT_SYMLINK_NOFOLLOW, AT_EMPTY_PATH)
func Fstatat(dirfd int, path string, flags int) (Stat_t, error) {
	var st unix.Stat_t
	if err := unix.Fstatat(dirfd, path, &st, flags); err != nil {
		return Stat_t{}, err
	}
	return FromHost(&st), nil
}
