// Package memfd stages a program image in a sealed anonymous file so it can
// be executed by descriptor.
package memfd

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// imageSeals freeze the content and the seal set of an image
const imageSeals = unix.F_SEAL_SEAL | unix.F_SEAL_SHRINK | unix.F_SEAL_GROW | unix.F_SEAL_WRITE

// Create returns an empty close-on-exec memfd that accepts seals
func Create(name string) (*os.File, error) {
	fd, err := unix.MemfdCreate(name, unix.MFD_CLOEXEC|unix.MFD_ALLOW_SEALING)
	if err != nil {
		return nil, errors.Wrapf(err, "memfd: create %s", name)
	}
	return os.NewFile(uintptr(fd), name), nil
}

// Image copies r into a new memfd, seals it read-only and rewinds it
func Image(name string, r io.Reader) (f *os.File, err error) {
	if f, err = Create(name); err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			f.Close()
			f = nil
		}
	}()

	if _, err = io.Copy(f, r); err != nil {
		return f, errors.Wrapf(err, "memfd: copy %s", name)
	}
	if _, err = unix.FcntlInt(f.Fd(), unix.F_ADD_SEALS, imageSeals); err != nil {
		return f, errors.Wrapf(err, "memfd: seal %s", name)
	}
	if _, err = f.Seek(0, io.SeekStart); err != nil {
		return f, errors.Wrapf(err, "memfd: rewind %s", name)
	}
	return f, nil
}

// Program copies the executable at path into a sealed memfd named after it,
// ready for Spawner.SpawnFile
func Program(path string) (*os.File, error) {
	src, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	st, err := src.Stat()
	if err != nil {
		return nil, err
	}
	if !st.Mode().IsRegular() {
		return nil, errors.Wrapf(unix.EACCES, "memfd: %s is not a regular file", path)
	}
	return Image(filepath.Base(path), src)
}
