package qsignal

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// kernel sigset size passed to the rt_* calls
const kernelSigsetSize = 8

// RawSigaction calls rt_sigaction directly. act or old may be nil.
//
//go:nosplit
func RawSigaction(sig int, act, old *HostAction) unix.Errno {
	_, _, errno := unix.RawSyscall6(unix.SYS_RT_SIGACTION, uintptr(sig),
		uintptr(unsafe.Pointer(act)), uintptr(unsafe.Pointer(old)), kernelSigsetSize, 0, 0)
	return errno
}

// Sigaction examines and changes the action for sig using the QNX layout.
// Either act or oldact may be nil. When a handler is installed the restorer
// of the currently installed action is kept, so the handler returns through
// the same trampoline.
func Sigaction(sig int, act, oldact *Sigaction_t) error {
	if !valid(sig) {
		return unix.EINVAL
	}
	var cur HostAction
	if errno := RawSigaction(sig, nil, &cur); errno != 0 {
		return errno
	}
	if act != nil {
		h := ToHost(*act, cur.Restorer)
		if errno := RawSigaction(sig, &h, nil); errno != 0 {
			return errno
		}
	}
	if oldact != nil {
		*oldact = FromHost(cur)
	}
	return nil
}

// Sigprocmask changes the signal mask of the calling thread. how is one of
// unix.SIG_BLOCK, unix.SIG_UNBLOCK or unix.SIG_SETMASK. The caller should
// hold runtime.LockOSThread for the result to be meaningful.
func Sigprocmask(how int, set, oldset *Sigset) error {
	var k, old uint64
	var kp *uint64
	if set != nil {
		k = set.Kernel()
		kp = &k
	}
	_, _, errno := unix.RawSyscall6(unix.SYS_RT_SIGPROCMASK, uintptr(how),
		uintptr(unsafe.Pointer(kp)), uintptr(unsafe.Pointer(&old)), kernelSigsetSize, 0, 0)
	if errno != 0 {
		return errno
	}
	if oldset != nil {
		*oldset = FromKernel(old)
	}
	return nil
}
