package qsignal

import (
	"bytes"
	"io"

	"github.com/lunixbochs/struc"
)

// Special handler values, identical on both sides
const (
	SIG_DFL = 0
	SIG_IGN = 1
)

// saRestorer is the Linux SA_RESTORER bit. QNX has no such flag; it is set
// on the host side whenever a real handler is installed and hidden from the
// foreign side.
const saRestorer = 0x04000000

// SigactionSize is the wire size of Sigaction_t
const SigactionSize = 24

// Sigaction_t is the QNX struct sigaction: the handler union, int sa_flags,
// sigset_t sa_mask and tail padding (zero).
type Sigaction_t struct {
	Handler uint64  `struc:"uint64"`
	Flags   int32   `struc:"int32"`
	Mask    Sigset  `struc:"[2]uint32"`
	Pad     [4]byte `struc:"[4]byte"`
}

// HostAction is the Linux kernel struct sigaction taken by rt_sigaction
type HostAction struct {
	Handler  uintptr
	Flags    uint64
	Restorer uintptr
	Mask     uint64
}

// ToHost converts a QNX sigaction. restorer is only used for real handlers
// and is normally the one of the action currently installed. Flags are
// carried as an unsigned 32-bit value so SA_RESETHAND (bit 31) does not
// sign extend.
func ToHost(act Sigaction_t, restorer uintptr) HostAction {
	h := HostAction{
		Handler: uintptr(act.Handler),
		Flags:   uint64(uint32(act.Flags)) &^ saRestorer,
		Mask:    act.Mask.Kernel(),
	}
	if act.Handler != SIG_DFL && act.Handler != SIG_IGN && restorer != 0 {
		h.Flags |= saRestorer
		h.Restorer = restorer
	}
	return h
}

// FromHost converts a kernel sigaction. The restorer and its flag bit are
// dropped, the upper 32 flag bits do not exist on QNX.
func FromHost(h HostAction) Sigaction_t {
	return Sigaction_t{
		Handler: uint64(h.Handler),
		Flags:   int32(uint32(h.Flags &^ saRestorer)),
		Mask:    FromKernel(h.Mask),
	}
}

// Pack writes the wire image of act
func (act *Sigaction_t) Pack(w io.Writer) error {
	return struc.PackWithOrder(w, act, order)
}

// Bytes returns the wire image of act
func (act *Sigaction_t) Bytes() []byte {
	var buf bytes.Buffer
	buf.Grow(SigactionSize)
	if err := act.Pack(&buf); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// UnpackSigaction decodes a wire image, padding is ignored
func UnpackSigaction(b []byte) (Sigaction_t, error) {
	var act Sigaction_t
	if len(b) < SigactionSize {
		return act, io.ErrUnexpectedEOF
	}
	if err := struc.UnpackWithOrder(bytes.NewReader(b[:SigactionSize]), &act, order); err != nil {
		return act, err
	}
	act.Pad = [4]byte{}
	return act, nil
}
