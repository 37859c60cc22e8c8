// Package oflag translates QNX open(2) mode flags to the Linux encoding.
//
// The two encodings share meaning but not bit positions. Translation is
// additive and per bit: every foreign bit that appears in the table sets its
// host counterpart, unknown foreign bits are dropped, and no combination is
// rejected. Invalid access-mode combinations (WRONLY|RDWR) pass through
// untouched and are left for the host open call to judge.
package oflag

import (
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// Flag is a set of QNX open-mode bits
type Flag uint32

// QNX open-mode bits (sys/fcntl.h)
const (
	RDONLY   Flag = 0o00000
	WRONLY   Flag = 0o00001
	RDWR     Flag = 0o00002
	APPEND   Flag = 0o00010
	DSYNC    Flag = 0o00020
	SYNC     Flag = 0o00040
	RSYNC    Flag = 0o00100
	NONBLOCK Flag = 0o00200
	CREAT    Flag = 0o00400
	TRUNC    Flag = 0o01000
	EXCL     Flag = 0o02000
	NOCTTY   Flag = 0o04000
)

// ACCMODE masks the access mode bits
const ACCMODE Flag = 0o00003

type mapping struct {
	foreign Flag
	host    int
	name    string
}

// table is evaluated in order, every entry independently
var table = [...]mapping{
	{RDONLY, unix.O_RDONLY, "RDONLY"},
	{WRONLY, unix.O_WRONLY, "WRONLY"},
	{RDWR, unix.O_RDWR, "RDWR"},
	{NONBLOCK, unix.O_NONBLOCK, "NONBLOCK"},
	{APPEND, unix.O_APPEND, "APPEND"},
	{DSYNC, unix.O_DSYNC, "DSYNC"},
	{RSYNC, unix.O_RSYNC, "RSYNC"},
	{SYNC, unix.O_SYNC, "SYNC"},
	{CREAT, unix.O_CREAT, "CREAT"},
	{TRUNC, unix.O_TRUNC, "TRUNC"},
	{EXCL, unix.O_EXCL, "EXCL"},
	{NOCTTY, unix.O_NOCTTY, "NOCTTY"},
}

// Known is the union of every foreign bit the table translates
var Known = func() Flag {
	var k Flag
	for _, m := range table {
		k |= m.foreign
	}
	return k
}()

// ToHost returns the Linux open flags for the QNX flag set f
func ToHost(f Flag) int {
	var ret int
	for _, m := range table {
		if f&m.foreign != 0 {
			ret |= m.host
		}
	}
	return ret
}

// FromHost returns the QNX flags for the Linux open flags h.
// A foreign bit is reported when all bits of its host value are present,
// so O_SYNC on Linux (which contains O_DSYNC) reports SYNC|DSYNC|RSYNC.
func FromHost(h int) Flag {
	var ret Flag
	for _, m := range table {
		if m.host != 0 && h&m.host == m.host {
			ret |= m.foreign
		}
	}
	return ret
}

func (f Flag) String() string {
	if f == 0 {
		return "RDONLY"
	}
	var names []string
	for _, m := range table {
		if m.foreign != 0 && f&m.foreign != 0 {
			names = append(names, m.name)
		}
	}
	if rest := f &^ Known; rest != 0 {
		names = append(names, "0x"+strconv.FormatUint(uint64(rest), 16))
	}
	return strings.Join(names, "|")
}

// Parse parses a "|" or "," separated list of flag names (e.g. "RDWR|CREAT").
// Numeric values (0o, 0x or decimal) are accepted as well
func Parse(s string) (Flag, error) {
	var f Flag
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' || r == ' ' }) {
		found := false
		for _, m := range table {
			if strings.TrimPrefix(strings.ToUpper(tok), "O_") == m.name {
				f |= m.foreign
				found = true
				break
			}
		}
		if found {
			continue
		}
		v, err := strconv.ParseUint(tok, 0, 32)
		if err != nil {
			return 0, err
		}
		f |= Flag(v)
	}
	return f, nil
}
