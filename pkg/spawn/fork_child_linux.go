package spawn

import (
	"syscall"
	"unsafe"

	"github.com/criyle/go-qnxcompat/pkg/qsignal"
	"golang.org/x/sys/unix"
)

// kernel sigset size for rt_sigaction / rt_sigprocmask
const sigsetSize = 8

var (
	sigDfl = qsignal.HostAction{Handler: qsignal.SIG_DFL}
	sigIgn = qsignal.HostAction{Handler: qsignal.SIG_IGN}

	empty = [...]byte{0}

	etxtbsyRetryInterval = unix.Timespec{Nsec: 1000 * 1000}
)

// Reference to src/syscall/exec_linux.go
//
// With inPlace the steps run in the calling process, which the caller has
// locked to its thread, and no clone happens.
//
//go:norace
func forkAndExecInChild(c *childParams, p [2]int, inPlace bool) (r1 uintptr, err1 syscall.Errno) {
	fd := c.fds
	pipe := p[1]
	execFile := c.execFile

	if !inPlace {
		// Acquire the fork lock so that no other threads
		// create new fds that are not yet close-on-exec
		// before we fork.
		syscall.ForkLock.Lock()

		// About to call fork.
		// No more allocation or calls of non-assembly functions.
		beforeFork()

		r1, _, err1 = syscall.RawSyscall6(syscall.SYS_CLONE, uintptr(syscall.SIGCHLD), 0, 0, 0, 0, 0)
		if err1 != 0 || r1 != 0 {
			// in parent process, immediate return
			return
		}

		// In child process
		afterForkInChild()
		// Notice: cannot call any GO functions beyond this point

		// Close read end of pipe
		if p[0] >= 0 {
			if _, _, err1 = syscall.RawSyscall(syscall.SYS_CLOSE, uintptr(p[0]), 0, 0); err1 != 0 {
				childExitError(pipe, LocCloseRead, 0, err1)
			}
		}
	}

	// Process group, superseded by a new session
	if c.flags&SetGroup != 0 && c.flags&SetSID == 0 {
		_, _, err1 = syscall.RawSyscall(syscall.SYS_SETPGID, 0, uintptr(c.pgroup), 0)
		if err1 != 0 {
			childExitError(pipe, LocSetPgid, 0, err1)
		}
	}

	// Blocked signals
	if c.flags&SetSigMask != 0 {
		_, _, err1 = syscall.RawSyscall6(syscall.SYS_RT_SIGPROCMASK, unix.SIG_SETMASK,
			uintptr(unsafe.Pointer(&c.sigmask)), 0, sigsetSize, 0, 0)
		if err1 != 0 {
			childExitError(pipe, LocSigprocmask, 0, err1)
		}
	}

	// Set the session ID
	if c.flags&SetSID != 0 {
		_, _, err1 = syscall.RawSyscall(syscall.SYS_SETSID, 0, 0, 0)
		if err1 != 0 {
			childExitError(pipe, LocSetSid, 0, err1)
		}
	}

	// Stack limit, prlimit instead of setrlimit to avoid 32-bit limitation
	if c.flags&SetStackMax != 0 {
		_, _, err1 = syscall.RawSyscall6(syscall.SYS_PRLIMIT64, 0, uintptr(c.stack.Res),
			uintptr(unsafe.Pointer(&c.stack.Rlim)), 0, 0, 0)
		if err1 != 0 {
			childExitError(pipe, LocSetRlimit, 0, err1)
		}
	}

	// Signal dispositions: defaults first so the ignore pass wins.
	// SIGKILL and SIGSTOP cannot be changed and are skipped.
	if c.flags&SetSigDef != 0 {
		for sig := uintptr(1); sig <= qsignal.SigMax; sig++ {
			if c.sigdef&(1<<(sig-1)) != 0 {
				syscall.RawSyscall6(syscall.SYS_RT_SIGACTION, sig, uintptr(unsafe.Pointer(&sigDfl)), 0, sigsetSize, 0, 0)
			}
		}
	}
	if c.flags&SetSigIgn != 0 {
		for sig := uintptr(1); sig <= qsignal.SigMax; sig++ {
			if c.sigign&(1<<(sig-1)) != 0 {
				syscall.RawSyscall6(syscall.SYS_RT_SIGACTION, sig, uintptr(unsafe.Pointer(&sigIgn)), 0, sigsetSize, 0, 0)
			}
		}
	}

	// Pass 1: move parent-side fds and clobbered sources above every fd in
	// the table, close on exec
	if pipe >= 0 && fd.keepReloc[0] {
		r1, _, err1 = syscall.RawSyscall(syscall.SYS_FCNTL, uintptr(pipe), syscall.F_DUPFD_CLOEXEC, uintptr(fd.floor))
		if err1 != 0 {
			childExitError(pipe, LocDup3, 0, err1)
		}
		pipe = int(r1)
	}
	if execFile >= 0 && fd.keepReloc[1] {
		r1, _, err1 = syscall.RawSyscall(syscall.SYS_FCNTL, uintptr(execFile), syscall.F_DUPFD_CLOEXEC, uintptr(fd.floor))
		if err1 != 0 {
			childExitError(pipe, LocDup3, 0, err1)
		}
		execFile = int(r1)
	}
	for i := 0; i < len(fd.src); i++ {
		if fd.reloc[i] {
			r1, _, err1 = syscall.RawSyscall(syscall.SYS_FCNTL, uintptr(fd.src[i]), syscall.F_DUPFD_CLOEXEC, uintptr(fd.floor))
			if err1 != 0 {
				childExitError(pipe, LocDup3, i+1, err1)
			}
			fd.src[i] = int(r1)
		}
	}
	// Pass 2: src[i] => dst[i]
	for i := 0; i < len(fd.src); i++ {
		if fd.src[i] == FdClosed {
			syscall.RawSyscall(syscall.SYS_CLOSE, uintptr(fd.dst[i]), 0, 0)
			continue
		}
		if fd.src[i] == fd.dst[i] {
			// dup2(i, i) will not clear close on exec flag, need to reset the flag
			_, _, err1 = syscall.RawSyscall(syscall.SYS_FCNTL, uintptr(fd.src[i]), syscall.F_SETFD, 0)
			if err1 != 0 {
				childExitError(pipe, LocFcntl, i+1, err1)
			}
			continue
		}
		_, _, err1 = syscall.RawSyscall(syscall.SYS_DUP3, uintptr(fd.src[i]), uintptr(fd.dst[i]), 0)
		if err1 != 0 {
			childExitError(pipe, LocDup3, i+1, err1)
		}
	}
	// Pass 3: the sources are gone from the child
	for _, s := range fd.closeSrc {
		syscall.RawSyscall(syscall.SYS_CLOSE, uintptr(s), 0, 0)
	}

	// Hold and Debug stop before exec until continued
	if c.flags&(Hold|Debug) != 0 {
		r1, _, err1 = syscall.RawSyscall(syscall.SYS_GETPID, 0, 0, 0)
		if err1 != 0 {
			childExitError(pipe, LocGetPid, 0, err1)
		}
		_, _, err1 = syscall.RawSyscall(syscall.SYS_KILL, r1, uintptr(syscall.SIGSTOP), 0)
		if err1 != 0 {
			childExitError(pipe, LocStop, 0, err1)
		}
	}

	// time to exec, if execfile fd is specified, call fexecve
	if execFile >= 0 {
		_, _, err1 = syscall.RawSyscall6(unix.SYS_EXECVEAT, uintptr(execFile),
			uintptr(unsafe.Pointer(&empty[0])), uintptr(unsafe.Pointer(&c.argv[0])),
			uintptr(unsafe.Pointer(&c.env[0])), unix.AT_EMPTY_PATH, 0)
	} else {
		_, _, err1 = syscall.RawSyscall(unix.SYS_EXECVE, uintptr(unsafe.Pointer(c.path)),
			uintptr(unsafe.Pointer(&c.argv[0])), uintptr(unsafe.Pointer(&c.env[0])))
	}
	// The file may still be open for writing in another forked child that
	// has not reached exec yet (max 50 attempt)
	for range [50]struct{}{} {
		if err1 != syscall.ETXTBSY {
			break
		}
		// wait instead of busy wait
		syscall.RawSyscall(unix.SYS_NANOSLEEP, uintptr(unsafe.Pointer(&etxtbsyRetryInterval)), 0, 0)
		if execFile >= 0 {
			_, _, err1 = syscall.RawSyscall6(unix.SYS_EXECVEAT, uintptr(execFile),
				uintptr(unsafe.Pointer(&empty[0])), uintptr(unsafe.Pointer(&c.argv[0])),
				uintptr(unsafe.Pointer(&c.env[0])), unix.AT_EMPTY_PATH, 0)
		} else {
			_, _, err1 = syscall.RawSyscall(unix.SYS_EXECVE, uintptr(unsafe.Pointer(c.path)),
				uintptr(unsafe.Pointer(&c.argv[0])), uintptr(unsafe.Pointer(&c.env[0])))
		}
	}
	// Not an executable image: hand it to the shell
	if err1 == syscall.ENOEXEC && c.shPath != nil {
		_, _, err1 = syscall.RawSyscall(unix.SYS_EXECVE, uintptr(unsafe.Pointer(c.shPath)),
			uintptr(unsafe.Pointer(&c.shArgv[0])), uintptr(unsafe.Pointer(&c.env[0])))
	}
	childExitError(pipe, LocExecve, 0, err1)
	return
}

// childExitError reports the failed step on the pipe, if any, and ends the
// process with the errno as exit status
//
//go:nosplit
func childExitError(pipe int, loc ErrorLocation, idx int, err syscall.Errno) {
	childError := ChildError{
		Err:      err,
		Location: loc,
		Index:    idx,
	}

	// send error code on pipe
	if pipe >= 0 {
		syscall.RawSyscall(unix.SYS_WRITE, uintptr(pipe), uintptr(unsafe.Pointer(&childError)), unsafe.Sizeof(childError))
	}
	status := uintptr(err)
	if status == 0 || status > 255 {
		status = 255
	}
	for {
		syscall.RawSyscall(syscall.SYS_EXIT_GROUP, status, 0, 0)
	}
}
