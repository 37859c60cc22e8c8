package qdirent

import (
	"golang.org/x/sys/unix"
)

// dircntl commands
const (
	D_GETFLAG = 1
	D_SETFLAG = 2
)

// QNX dircntl flag bits, stored but not acted on
const (
	D_FLAG_FILTER = 0x1
	D_FLAG_STAT   = 0x2
)

const direntBufSize = 8192

// Dir is an open directory stream yielding QNX records
type Dir struct {
	fd       int
	buf      []byte
	pos, end int
	spare    []byte
	flags    int
	ent      Dirent
}

// OpenDir opens the directory at path
func OpenDir(path string) (*Dir, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, err
	}
	return newDir(fd), nil
}

// FdOpenDir takes ownership of an open directory descriptor
func FdOpenDir(fd int) (*Dir, error) {
	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return nil, err
	}
	if st.Mode&unix.S_IFMT != unix.S_IFDIR {
		return nil, unix.ENOTDIR
	}
	return newDir(fd), nil
}

func newDir(fd int) *Dir {
	return &Dir{
		fd:  fd,
		buf: make([]byte, direntBufSize),
	}
}

// Fd returns the underlying descriptor
func (d *Dir) Fd() int {
	return d.fd
}

// Read returns the next record, or nil at the end of the directory. The
// returned Dirent is overwritten by the next call.
func (d *Dir) Read() (*Dirent, error) {
	if d.pos >= d.end {
		n, err := unix.Getdents(d.fd, d.buf)
		if err != nil {
			return nil, err
		}
		if n <= 0 {
			return nil, nil
		}
		d.pos, d.end = 0, n
	}
	src := d.buf[d.pos:d.end]
	r, err := decode(src)
	if err != nil {
		return nil, err
	}
	d.pos += int(r.Reclen)

	// in place when the foreign record fits the host slot
	dst := src[:r.Reclen]
	if r.foreignLen() > len(dst) {
		if cap(d.spare) < r.foreignLen() {
			d.spare = make([]byte, r.foreignLen())
		}
		dst = d.spare[:r.foreignLen()]
	}
	n, err := r.encode(dst)
	if err != nil {
		return nil, err
	}
	d.ent, err = Parse(dst[:n])
	if err != nil {
		return nil, err
	}
	return &d.ent, nil
}

// Dircntl gets or sets the stream flags. D_SETFLAG returns 0.
func (d *Dir) Dircntl(cmd, arg int) (int, error) {
	switch cmd {
	case D_GETFLAG:
		return d.flags, nil
	case D_SETFLAG:
		d.flags = arg
		return 0, nil
	}
	return -1, unix.EINVAL
}

// Close closes the stream and its descriptor
func (d *Dir) Close() error {
	if d.fd < 0 {
		return unix.EBADF
	}
	err := unix.Close(d.fd)
	d.fd = -1
	return err
}
