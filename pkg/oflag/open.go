package oflag

import (
	"golang.org/x/sys/unix"
)

// Open opens path with QNX open flags. The returned error is the host errno.
// No close-on-exec bit is added: QNX programs expect the descriptor to
// survive spawn unless they ask otherwise.
func Open(path string, flags Flag, mode uint32) (int, error) {
	return unix.Open(path, ToHost(flags), mode)
}

// Openat opens path relative to dirfd with QNX open flags
func Openat(dirfd int, path string, flags Flag, mode uint32) (int, error) {
	return unix.Openat(dirfd, path, ToHost(flags), mode)
}

// Creat is Open(path, WRONLY|CREAT|TRUNC, mode)
func Creat(path string, mode uint32) (int, error) {
	return Open(path, WRONLY|CREAT|TRUNC, mode)
}
