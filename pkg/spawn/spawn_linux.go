package spawn

import (
	"io"
	"os"
	"runtime"
	"strconv"
	"syscall"
	"unsafe" // required for go:linkname.

	"github.com/criyle/go-qnxcompat/pkg/rlimit"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

//go:linkname beforeFork syscall.runtime_BeforeFork
func beforeFork()

//go:linkname afterFork syscall.runtime_AfterFork
func afterFork()

//go:linkname afterForkInChild syscall.runtime_AfterForkInChild
func afterForkInChild()

// Spawner starts processes described by an Inheritance
type Spawner struct {
	// Logger receives debug and failure records, nil discards them
	Logger logrus.FieldLogger

	// Diagnose keeps a close-on-exec pipe to the child so the step that
	// failed before exec is logged. Spawn still returns the pid at once
	// when the child holds itself (Hold, Debug); otherwise it returns once
	// the child has exec'd or exited.
	Diagnose bool
}

var std Spawner

// Spawn starts path with the default Spawner
func Spawn(path string, fds []FdMapping, inherit *Inheritance, argv, envp []string) (int, error) {
	return std.Spawn(path, fds, inherit, argv, envp)
}

// request is a spawn call before any host resource is touched
type request struct {
	path     string
	execFile int
	fds      []FdMapping
	inherit  *Inheritance
	argv     []string
	envp     []string
}

// childParams holds everything the child touches, built in the parent so
// the child never allocates
type childParams struct {
	flags    Flag
	pgroup   int
	sigmask  uint64
	sigdef   uint64
	sigign   uint64
	stack    rlimit.RLimit
	fds      *fdPlan
	execFile int

	path   *byte
	argv   []*byte
	env    []*byte
	shPath *byte
	shArgv []*byte
}

// Spawn starts the program at path in a new process, or in place of the
// current one when inherit has Exec set. fds lists the descriptors to
// remap, descriptors not listed are inherited unchanged. A nil envp passes
// the current environment.
//
// The returned error covers only what happens before the process exists.
// Once it exists, a failing step makes it exit with the errno as its status.
// With Exec set Spawn does not return on success, and a failure ends the
// current process.
func (s *Spawner) Spawn(path string, fds []FdMapping, inherit *Inheritance, argv, envp []string) (int, error) {
	return s.start(&request{path: path, execFile: -1, fds: fds, inherit: inherit, argv: argv, envp: envp})
}

// SpawnFile is Spawn for a program open on f, executed with execveat. The
// descriptor stays open in the caller; it need not be inherited by the
// child.
func (s *Spawner) SpawnFile(f *os.File, fds []FdMapping, inherit *Inheritance, argv, envp []string) (int, error) {
	return s.start(&request{path: f.Name(), execFile: int(f.Fd()), fds: fds, inherit: inherit, argv: argv, envp: envp})
}

var discardLogger = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()

func (s *Spawner) logger() logrus.FieldLogger {
	if s.Logger != nil {
		return s.Logger
	}
	return discardLogger
}

func (s *Spawner) start(req *request) (int, error) {
	if req.inherit == nil {
		req.inherit = &Inheritance{}
	}
	if req.envp == nil {
		req.envp = os.Environ()
	}
	flags := req.inherit.Flags
	log := s.logger().WithFields(logrus.Fields{
		"path":  req.path,
		"flags": flags,
	})
	if r := flags & Reserved; r != 0 {
		log.WithField("ignored", r).Debug("spawn flags without host equivalent")
	}

	if flags&Exec != 0 {
		c, err := prepare(req, -1)
		if err != nil {
			return 0, err
		}
		log.Debug("exec in place")
		execInPlace(c)
		return 0, errors.New("spawn: exec in place returned")
	}

	p := [2]int{-1, -1}
	if s.Diagnose {
		if err := unix.Pipe2(p[:], unix.O_CLOEXEC); err != nil {
			return 0, errors.Wrap(err, "spawn: pipe")
		}
	}
	c, err := prepare(req, p[1])
	if err != nil {
		closePipe(p)
		return 0, err
	}

	pid, err1 := forkAndExecInChild(c, p, false)

	// restore all signals
	afterFork()
	syscall.ForkLock.Unlock()

	if err1 != 0 {
		closePipe(p)
		return 0, errors.Wrap(err1, "spawn: clone")
	}
	log = log.WithField("pid", int(pid))
	if flags&SetStackMax != 0 {
		log = log.WithField("stack", c.stack.String())
	}
	log.Debug("spawned")

	if s.Diagnose {
		unix.Close(p[1])
		if flags&(Hold|Debug) != 0 {
			go reportChild(log, p[0])
		} else {
			reportChild(log, p[0])
		}
	}
	if flags&NoZombie != 0 {
		go reap(log, int(pid))
	}
	return int(pid), nil
}

// prepare converts a request into child parameters. pipe is the parent-side
// descriptor the child must keep, -1 for none.
func prepare(req *request, pipe int) (*childParams, error) {
	in := req.inherit
	c := &childParams{
		flags:    in.Flags,
		pgroup:   in.PGroup,
		sigmask:  in.SigMask.Kernel(),
		sigdef:   in.SigDefault.Kernel(),
		sigign:   in.SigIgnore.Kernel(),
		execFile: req.execFile,
	}

	path := req.path
	if req.execFile < 0 && in.Flags&SearchPath != 0 {
		found, err := lookPath(path, pathFromEnv(req.envp))
		if err != nil {
			return nil, errors.Wrapf(err, "spawn: search %s", path)
		}
		path = found
	}

	var err error
	if c.path, err = syscall.BytePtrFromString(path); err != nil {
		return nil, errors.Wrap(err, "spawn: path")
	}
	if c.argv, err = syscall.SlicePtrFromStrings(req.argv); err != nil {
		return nil, errors.Wrap(err, "spawn: argv")
	}
	if c.env, err = syscall.SlicePtrFromStrings(req.envp); err != nil {
		return nil, errors.Wrap(err, "spawn: envp")
	}
	if in.Flags&CheckScript != 0 {
		script := path
		if req.execFile >= 0 {
			script = "/proc/self/fd/" + strconv.Itoa(req.execFile)
		}
		args := []string{"sh", script}
		if len(req.argv) > 1 {
			args = append(args, req.argv[1:]...)
		}
		if c.shPath, err = syscall.BytePtrFromString("/bin/sh"); err != nil {
			return nil, err
		}
		if c.shArgv, err = syscall.SlicePtrFromStrings(args); err != nil {
			return nil, errors.Wrap(err, "spawn: argv")
		}
	}

	if c.fds, err = planFds(req.fds, pipe, req.execFile); err != nil {
		return nil, errors.Wrap(err, "spawn: descriptor map")
	}
	if in.Flags&SetStackMax != 0 {
		if c.stack, err = rlimit.Stack(rlimit.Size(in.StackMax)); err != nil {
			return nil, errors.Wrap(err, "spawn: stack limit")
		}
	}
	return c, nil
}

// execInPlace applies the inheritance to the current process and execs.
// The locked thread is never released: exec replaces the process or a
// failing step ends it.
func execInPlace(c *childParams) {
	runtime.LockOSThread()
	syscall.ForkLock.Lock()
	forkAndExecInChild(c, [2]int{-1, -1}, true)
}

func closePipe(p [2]int) {
	for _, fd := range p {
		if fd >= 0 {
			unix.Close(fd)
		}
	}
}

// reportChild reads the pipe until exec closes it or the child reports a
// failed step
func reportChild(log logrus.FieldLogger, fd int) {
	defer unix.Close(fd)

	var ce ChildError
	buf := make([]byte, unsafe.Sizeof(ce))
	n, err := readFull(fd, buf)
	switch {
	case err != nil:
		log.WithError(err).Warn("spawn: sync read")
	case n == len(buf):
		ce = *(*ChildError)(unsafe.Pointer(&buf[0]))
		log.WithError(ce).Warn("spawn: child failed before exec")
	case n == 0:
		log.Debug("child exec'd")
	default:
		log.WithError(syscall.EPIPE).Warn("spawn: short sync read")
	}
}

func readFull(fd int, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		r, err := unix.Read(fd, buf[n:])
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return n, err
		}
		if r == 0 {
			break
		}
		n += r
	}
	return n, nil
}

// reap collects a NoZombie child
func reap(log logrus.FieldLogger, pid int) {
	var wstatus unix.WaitStatus
	_, err := unix.Wait4(pid, &wstatus, 0, nil)
	for err == unix.EINTR {
		_, err = unix.Wait4(pid, &wstatus, 0, nil)
	}
	if err != nil {
		log.WithError(err).Debug("reap")
		return
	}
	log.WithField("status", int(wstatus)).Debug("reaped")
}
