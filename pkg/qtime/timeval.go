// Package qtime provides the QNX struct timeval and the calls that use it.
package qtime

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/lunixbochs/struc"
	"golang.org/x/sys/unix"
)

// Size is the wire size of Timeval
const Size = 16

// Timeval is the QNX struct timeval: long tv_sec, int tv_usec and the tail
// padding of the 8-byte aligned record, always zero.
type Timeval struct {
	Sec  int64   `struc:"int64"`
	Usec int32   `struc:"int32"`
	Pad  [4]byte `struc:"[4]byte"`
}

var order = binary.LittleEndian

// ToHost widens tv into the host timeval. It never loses information.
func ToHost(tv Timeval) unix.Timeval {
	return unix.Timeval{Sec: tv.Sec, Usec: int64(tv.Usec)}
}

// FromHost narrows a host timeval. Usec keeps its low 32 bits, a normalised
// host value (< 1e6) always fits; padding is zeroed.
func FromHost(tv unix.Timeval) Timeval {
	return Timeval{Sec: int64(tv.Sec), Usec: int32(tv.Usec)}
}

// Pack writes the wire image of tv to w
func (tv *Timeval) Pack(w io.Writer) error {
	return struc.PackWithOrder(w, tv, order)
}

// Bytes returns the wire image of tv
func (tv *Timeval) Bytes() []byte {
	var buf bytes.Buffer
	buf.Grow(Size)
	if err := tv.Pack(&buf); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// Unpack decodes a wire image. Padding bytes are ignored
func Unpack(b []byte) (Timeval, error) {
	var tv Timeval
	if len(b) < Size {
		return tv, io.ErrUnexpectedEOF
	}
	if err := struc.UnpackWithOrder(bytes.NewReader(b[:Size]), &tv, order); err != nil {
		return tv, err
	}
	tv.Pad = [4]byte{}
	return tv, nil
}
