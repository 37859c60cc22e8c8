// Package qstat provides the QNX struct stat layout and the stat family of
// calls that fill it from the host.
package qstat

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/lunixbochs/struc"
	"golang.org/x/sys/unix"
)

// Size is the wire size of Stat_t in bytes
const Size = 120

// Timespec is the QNX struct timespec (long tv_sec, long tv_nsec)
type Timespec struct {
	Sec  int64 `struc:"int64"`
	Nsec int64 `struc:"int64"`
}

// Stat_t is the QNX struct stat. Field order and widths are the wire layout.
type Stat_t struct {
	Ino       uint64 `struc:"uint64"`
	Size      int64  `struc:"int64"`
	Dev       uint32 `struc:"uint32"`
	Rdev      uint32 `struc:"uint32"`
	Uid       uint32 `struc:"uint32"`
	Gid       uint32 `struc:"uint32"`
	OldMtime  uint32 `struc:"uint32"` // __old_st_mtime
	OldAtime  uint32 `struc:"uint32"` // __old_st_atime
	OldCtime  uint32 `struc:"uint32"` // __old_st_ctime
	Mode      uint32 `struc:"uint32"`
	Nlink     uint32 `struc:"uint32"`
	Blocksize uint32 `struc:"uint32"`
	Nblocks   uint32 `struc:"uint32"`
	Blksize   uint32 `struc:"uint32"`
	Blocks    uint64 `struc:"uint64"`
	Mtim      Timespec
	Atim      Timespec
	Ctim      Timespec
}

var order = binary.LittleEndian

// FromHost converts a host stat into the QNX layout.
//
// Lossy fields, truncated to their low 32 bits: Dev, Rdev, Nlink, Nblocks and
// the three __old_st_*time seconds. Blocksize has no host counterpart and
// carries the preferred I/O size, as Blksize does. Blocks stays in 512-byte
// units.
func FromHost(st *unix.Stat_t) Stat_t {
	return Stat_t{
		Ino:       st.Ino,
		Size:      st.Size,
		Dev:       uint32(st.Dev),
		Rdev:      uint32(st.Rdev),
		Uid:       st.Uid,
		Gid:       st.Gid,
		OldMtime:  uint32(st.Mtim.Sec),
		OldAtime:  uint32(st.Atim.Sec),
		OldCtime:  uint32(st.Ctim.Sec),
		Mode:      st.Mode,
		Nlink:     uint32(st.Nlink),
		Blocksize: uint32(st.Blksize),
		Nblocks:   uint32(st.Blocks),
		Blksize:   uint32(st.Blksize),
		Blocks:    uint64(st.Blocks),
		Mtim:      Timespec{Sec: int64(st.Mtim.Sec), Nsec: int64(st.Mtim.Nsec)},
		Atim:      Timespec{Sec: int64(st.Atim.Sec), Nsec: int64(st.Atim.Nsec)},
		Ctim:      Timespec{Sec: int64(st.Ctim.Sec), Nsec: int64(st.Ctim.Nsec)},
	}
}

// Pack writes the wire image of s to w
func (s *Stat_t) Pack(w io.Writer) error {
	return struc.PackWithOrder(w, s, order)
}

// Bytes returns the wire image of s
func (s *Stat_t) Bytes() []byte {
	var buf bytes.Buffer
	buf.Grow(Size)
	// struc only fails on unsupported field types, Stat_t has none
	if err := s.Pack(&buf); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// Unpack decodes a wire image
func Unpack(b []byte) (Stat_t, error) {
	var s Stat_t
	if len(b) < Size {
		return s, io.ErrUnexpectedEOF
	}
	err := struc.UnpackWithOrder(bytes.NewReader(b[:Size]), &s, order)
	return s, err
}
