// Package qsignal provides the QNX sigset_t and struct sigaction layouts and
// the signal calls that transcode them to the host kernel's.
//
// A QNX sigset_t is two 32-bit words covering signals 1 to 64 (bit n-1 for
// signal n). The Linux kernel sigset used by rt_sigaction and rt_sigprocmask
// is a single 64-bit word with the same numbering, so the two are copied as an
// opaque 8-byte blob. The libc-shaped unix.Sigset_t is wider and is converted
// bit by bit; signals above 64 are not representable in the QNX set and are
// dropped.
package qsignal

import (
	"encoding/binary"

	"golang.org/x/sys/unix"
)

// SigMax is the highest signal number a Sigset can hold
const SigMax = 64

// Sigset is the QNX sigset_t
type Sigset [2]uint32

var order = binary.LittleEndian

// valid reports whether sig fits the QNX set
func valid(sig int) bool {
	return sig >= 1 && sig <= SigMax
}

// Add adds sig to the set, returns false if sig is out of range
func (s *Sigset) Add(sig int) bool {
	if !valid(sig) {
		return false
	}
	s[(sig-1)/32] |= 1 << uint((sig-1)%32)
	return true
}

// Del removes sig from the set, returns false if sig is out of range
func (s *Sigset) Del(sig int) bool {
	if !valid(sig) {
		return false
	}
	s[(sig-1)/32] &^= 1 << uint((sig-1)%32)
	return true
}

// IsMember reports whether sig is in the set
func (s Sigset) IsMember(sig int) bool {
	return valid(sig) && s[(sig-1)/32]&(1<<uint((sig-1)%32)) != 0
}

// Empty clears the set
func (s *Sigset) Empty() {
	*s = Sigset{}
}

// Fill adds every signal
func (s *Sigset) Fill() {
	*s = Sigset{^uint32(0), ^uint32(0)}
}

// Signals lists the members in ascending order
func (s Sigset) Signals() []int {
	var ret []int
	for sig := 1; sig <= SigMax; sig++ {
		if s.IsMember(sig) {
			ret = append(ret, sig)
		}
	}
	return ret
}

// NewSigset returns a set holding sigs; out of range numbers are ignored
func NewSigset(sigs ...int) Sigset {
	var s Sigset
	for _, sig := range sigs {
		s.Add(sig)
	}
	return s
}

// Kernel returns the set as the host kernel's 64-bit sigset. Both are eight
// bytes, so the words are moved as raw bytes without looking at the bits.
func (s Sigset) Kernel() uint64 {
	var b [8]byte
	order.PutUint32(b[0:], s[0])
	order.PutUint32(b[4:], s[1])
	return order.Uint64(b[:])
}

// FromKernel is the inverse of Kernel
func FromKernel(k uint64) Sigset {
	var b [8]byte
	order.PutUint64(b[:], k)
	return Sigset{order.Uint32(b[0:]), order.Uint32(b[4:])}
}

// ToSigsetT converts to the wide host sigset bit by bit
func (s Sigset) ToSigsetT() unix.Sigset_t {
	var set unix.Sigset_t
	const bits = 64
	for sig := 1; sig <= SigMax; sig++ {
		if s.IsMember(sig) {
			set.Val[(sig-1)/bits] |= 1 << uint((sig-1)%bits)
		}
	}
	return set
}

// FromSigsetT converts the wide host sigset, signals above SigMax are dropped
func FromSigsetT(set *unix.Sigset_t) Sigset {
	var s Sigset
	const bits = 64
	for sig := 1; sig <= SigMax; sig++ {
		if set.Val[(sig-1)/bits]&(1<<uint((sig-1)%bits)) != 0 {
			s.Add(sig)
		}
	}
	return s
}
