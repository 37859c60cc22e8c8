package main

import (
	"os"
	"strconv"

	"github.com/criyle/go-qnxcompat/pkg/qsignal"
	"github.com/criyle/go-qnxcompat/pkg/rlimit"
	"github.com/criyle/go-qnxcompat/pkg/spawn"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
	"gopkg.in/yaml.v3"
)

// profile is the yaml form of an inheritance. A non-empty field turns on its
// flag bit; flags adds any other bits.
//
//	flags: setsid|nozombie
//	sigignore: [SIGPIPE, 1]
//	stack: 8m
//	fds: [0, 1, 2]
type profile struct {
	Flags      string      `yaml:"flags"`
	PGroup     *int        `yaml:"pgroup"`
	SigMask    []string    `yaml:"sigmask"`
	SigDefault []string    `yaml:"sigdefault"`
	SigIgnore  []string    `yaml:"sigignore"`
	Stack      rlimit.Size `yaml:"stack"`
	Fds        []int       `yaml:"fds"`
	Env        []string    `yaml:"env"`
}

func loadProfile(path string) (*profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p := new(profile)
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(p); err != nil {
		return nil, errors.Wrapf(err, "profile %s", path)
	}
	return p, nil
}

func (p *profile) inheritance() (*spawn.Inheritance, error) {
	f, err := spawn.ParseFlag(p.Flags)
	if err != nil {
		return nil, err
	}
	in := &spawn.Inheritance{Flags: f}
	if p.PGroup != nil {
		in.Flags |= spawn.SetGroup
		in.PGroup = *p.PGroup
	}
	sets := []struct {
		names []string
		flag  spawn.Flag
		set   *qsignal.Sigset
	}{
		{p.SigMask, spawn.SetSigMask, &in.SigMask},
		{p.SigDefault, spawn.SetSigDef, &in.SigDefault},
		{p.SigIgnore, spawn.SetSigIgn, &in.SigIgnore},
	}
	for _, s := range sets {
		if len(s.names) == 0 {
			continue
		}
		in.Flags |= s.flag
		for _, n := range s.names {
			sig, err := parseSignal(n)
			if err != nil {
				return nil, err
			}
			s.set.Add(sig)
		}
	}
	if p.Stack > 0 {
		in.Flags |= spawn.SetStackMax
		in.StackMax = uint64(p.Stack)
	}
	return in, nil
}

func (p *profile) fdMap() []spawn.FdMapping {
	if p.Fds == nil {
		return nil
	}
	return spawn.FdMap(p.Fds...)
}

func parseSignal(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > qsignal.SigMax {
			return 0, errors.Errorf("signal %d out of range", n)
		}
		return n, nil
	}
	if sig := unix.SignalNum(s); sig != 0 {
		return int(sig), nil
	}
	return 0, errors.Errorf("unknown signal %q", s)
}
