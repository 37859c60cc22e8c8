// Package qdirent transcodes Linux directory records into the QNX struct
// dirent layout.
//
// Host records come from getdents64 (linux_dirent64):
//
//	d_ino u64 | d_off i64 | d_reclen u16 | d_type u8 | d_name NUL terminated
//
// QNX records are:
//
//	d_ino u64 | d_offset u64 | d_reclen i16 | d_namelen i16 | d_name NUL terminated
//
// The foreign header is one byte longer than the host header, so a record can
// be rewritten in place inside the getdents buffer whenever the host record
// carries at least one byte of tail padding.
package qdirent

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"

	"github.com/lunixbochs/struc"
)

const (
	// HeaderSize is the size of the QNX record up to d_name
	HeaderSize = 20
	// HostHeaderSize is the size of linux_dirent64 up to d_name
	HostHeaderSize = 19
)

var (
	// ErrMalformed is returned for a host record that cannot be decoded
	ErrMalformed = errors.New("qdirent: malformed host record")
	// ErrShortBuffer is returned when dst cannot hold the foreign record
	ErrShortBuffer = errors.New("qdirent: short buffer")
)

var order = binary.LittleEndian

type hostHeader struct {
	Ino    uint64 `struc:"uint64"`
	Off    int64  `struc:"int64"`
	Reclen uint16 `struc:"uint16"`
	Type   uint8  `struc:"uint8"`
}

type header struct {
	Ino     uint64 `struc:"uint64"`
	Offset  uint64 `struc:"uint64"`
	Reclen  int16  `struc:"int16"`
	Namelen int16  `struc:"int16"`
}

// hostRecord is a decoded host record, name is an owned copy
type hostRecord struct {
	hostHeader
	name []byte
}

func align8(n int) int {
	return (n + 7) &^ 7
}

// decode reads one host record from the start of src
func decode(src []byte) (hostRecord, error) {
	var r hostRecord
	if len(src) < HostHeaderSize {
		return r, ErrMalformed
	}
	if err := struc.UnpackWithOrder(bytes.NewReader(src[:HostHeaderSize]), &r.hostHeader, order); err != nil {
		return r, err
	}
	n := int(r.Reclen)
	if n <= HostHeaderSize || n > len(src) {
		return r, ErrMalformed
	}
	name := src[HostHeaderSize:n]
	end := bytes.IndexByte(name, 0)
	if end < 0 || end > math.MaxInt16 {
		return r, ErrMalformed
	}
	r.name = append([]byte(nil), name[:end]...)
	return r, nil
}

// foreignLen is the QNX record length for r. The host length is kept when the
// foreign record fits in it, so walking by reclen stays in step with the host
// buffer.
func (r *hostRecord) foreignLen() int {
	need := HeaderSize + len(r.name) + 1
	if need <= int(r.Reclen) {
		return int(r.Reclen)
	}
	return align8(need)
}

// encode writes the foreign record into dst, r holds no reference into dst
func (r *hostRecord) encode(dst []byte) (int, error) {
	n := r.foreignLen()
	if len(dst) < n || n > math.MaxInt16 {
		return 0, ErrShortBuffer
	}
	h := header{
		Ino:     r.Ino,
		Offset:  uint64(r.Off),
		Reclen:  int16(n),
		Namelen: int16(len(r.name)),
	}
	var buf bytes.Buffer
	buf.Grow(HeaderSize)
	if err := struc.PackWithOrder(&buf, &h, order); err != nil {
		return 0, err
	}
	copy(dst, buf.Bytes())
	copy(dst[HeaderSize:], r.name)
	for i := HeaderSize + len(r.name); i < n; i++ {
		dst[i] = 0
	}
	return n, nil
}

// Transcode converts the host record at the start of src into a QNX record
// at the start of dst and returns its length. dst may alias src: the host
// record is fully decoded before anything is written.
func Transcode(dst, src []byte) (int, error) {
	r, err := decode(src)
	if err != nil {
		return 0, err
	}
	return r.encode(dst)
}

// Dirent is a decoded QNX directory record
type Dirent struct {
	Ino     uint64
	Offset  uint64
	Reclen  int16
	Namelen int16
	Name    string

	raw []byte
}

// Raw returns the QNX wire image of the record. It is only valid until the
// next Read on the Dir that returned it.
func (e *Dirent) Raw() []byte {
	return e.raw
}

// Parse decodes a QNX record from the start of b
func Parse(b []byte) (Dirent, error) {
	var e Dirent
	if len(b) < HeaderSize {
		return e, ErrShortBuffer
	}
	var h header
	if err := struc.UnpackWithOrder(bytes.NewReader(b[:HeaderSize]), &h, order); err != nil {
		return e, err
	}
	if h.Namelen < 0 || int(h.Reclen) < HeaderSize+int(h.Namelen)+1 || int(h.Reclen) > len(b) {
		return e, ErrMalformed
	}
	e = Dirent{
		Ino:     h.Ino,
		Offset:  h.Offset,
		Reclen:  h.Reclen,
		Namelen: h.Namelen,
		Name:    string(b[HeaderSize : HeaderSize+int(h.Namelen)]),
		raw:     b[:h.Reclen],
	}
	return e, nil
}
