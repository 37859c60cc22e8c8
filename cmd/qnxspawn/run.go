package main

import (
	"fmt"

	"github.com/criyle/go-qnxcompat/pkg/memfd"
	"github.com/criyle/go-qnxcompat/pkg/spawn"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"golang.org/x/sys/unix"
)

var runCommand = cli.Command{
	Name:      "run",
	Usage:     "spawn a program with an inheritance profile",
	ArgsUsage: "[--] <program> [args...]",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "yaml inheritance profile",
		},
		cli.StringFlag{
			Name:  "flags, f",
			Usage: "spawn flags added to the profile (e.g. setsid|nozombie)",
		},
		cli.StringFlag{
			Name:  "mode, m",
			Value: "wait",
			Usage: "spawn mode: wait, nowait, overlay or nowaito",
		},
		cli.StringSliceFlag{
			Name:  "env, e",
			Usage: "environment entry KEY=VALUE, replaces the inherited environment",
		},
		cli.BoolFlag{
			Name:  "memfd",
			Usage: "copy the program into a sealed memfd and exec the descriptor",
		},
		cli.BoolFlag{
			Name:  "diagnose",
			Usage: "log the step a child failed at before exec",
		},
	},
	Action: runAction,
}

func runAction(c *cli.Context) error {
	args := c.Args()
	if len(args) == 0 {
		return cli.NewExitError("run: missing program", 2)
	}

	p := new(profile)
	if path := c.String("config"); path != "" {
		var err error
		if p, err = loadProfile(path); err != nil {
			return err
		}
	}
	if f := c.String("flags"); f != "" {
		p.Flags += "|" + f
	}
	p.Env = append(p.Env, c.StringSlice("env")...)

	in, err := p.inheritance()
	if err != nil {
		return err
	}
	mode, err := spawn.ParseMode(c.String("mode"))
	if err != nil {
		return err
	}
	mf, err := mode.Flags()
	if err != nil {
		return err
	}
	in.Flags |= mf

	var envp []string
	if len(p.Env) > 0 {
		envp = p.Env
	}
	s := &spawn.Spawner{
		Logger:   logrus.StandardLogger(),
		Diagnose: c.Bool("diagnose"),
	}

	var pid int
	if c.Bool("memfd") {
		f, err := memfd.Program(args.First())
		if err != nil {
			return err
		}
		defer f.Close()
		pid, err = s.SpawnFile(f, p.fdMap(), in, args, envp)
		if err != nil {
			return err
		}
	} else {
		pid, err = s.Spawn(args.First(), p.fdMap(), in, args, envp)
		if err != nil {
			return err
		}
	}

	if mode != spawn.PWait {
		fmt.Fprintln(c.App.Writer, pid)
		return nil
	}
	st, err := spawn.Wait(pid)
	if err != nil {
		return err
	}
	ws := unix.WaitStatus(st)
	logrus.WithFields(logrus.Fields{"pid": pid, "status": st}).Debug("child finished")
	switch {
	case ws.Signaled():
		return cli.NewExitError("", 128+int(ws.Signal()))
	case ws.ExitStatus() != 0:
		return cli.NewExitError("", ws.ExitStatus())
	}
	return nil
}
