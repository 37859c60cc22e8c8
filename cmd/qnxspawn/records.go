package main

import (
	"encoding/hex"
	"io"
	"strconv"

	"github.com/criyle/go-qnxcompat/pkg/oflag"
	"github.com/criyle/go-qnxcompat/pkg/qdirent"
	"github.com/criyle/go-qnxcompat/pkg/qlocale"
	"github.com/criyle/go-qnxcompat/pkg/qstat"
	"github.com/criyle/go-qnxcompat/pkg/qterm"
	"github.com/criyle/go-qnxcompat/pkg/qtime"
	"github.com/criyle/go-qnxcompat/pkg/slog"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
	"gopkg.in/yaml.v3"
)

var hexFlag = cli.BoolFlag{
	Name:  "hex",
	Usage: "also print the wire image",
}

var statCommand = cli.Command{
	Name:      "stat",
	Usage:     "print the QNX struct stat of files",
	ArgsUsage: "<path>...",
	Flags: []cli.Flag{
		cli.BoolFlag{
			Name:  "lstat, l",
			Usage: "do not follow symbolic links",
		},
		hexFlag,
	},
	Action: func(c *cli.Context) error {
		type record struct {
			Path string       `yaml:"path"`
			Stat qstat.Stat_t `yaml:"stat"`
			Wire string       `yaml:"wire,omitempty"`
		}
		stat := qstat.Stat
		if c.Bool("lstat") {
			stat = qstat.Lstat
		}
		var out []record
		for _, p := range c.Args() {
			st, err := stat(p)
			if err != nil {
				return errors.Wrap(err, p)
			}
			r := record{Path: p, Stat: st}
			if c.Bool("hex") {
				r.Wire = hex.EncodeToString(st.Bytes())
			}
			out = append(out, r)
		}
		return printYAML(c.App.Writer, out)
	},
}

var lsCommand = cli.Command{
	Name:      "ls",
	Usage:     "print the QNX struct dirent records of a directory",
	ArgsUsage: "[dir]",
	Action: func(c *cli.Context) error {
		path := c.Args().First()
		if path == "" {
			path = "."
		}
		d, err := qdirent.OpenDir(path)
		if err != nil {
			return errors.Wrap(err, path)
		}
		defer d.Close()

		// Read reuses its record, keep copies
		var out []qdirent.Dirent
		for {
			e, err := d.Read()
			if err != nil {
				return errors.Wrap(err, path)
			}
			if e == nil {
				break
			}
			out = append(out, *e)
		}
		return printYAML(c.App.Writer, out)
	},
}

var timeCommand = cli.Command{
	Name:  "time",
	Usage: "print the QNX struct timeval of the current time",
	Flags: []cli.Flag{hexFlag},
	Action: func(c *cli.Context) error {
		tv, err := qtime.Gettimeofday()
		if err != nil {
			return err
		}
		out := map[string]interface{}{"timeval": tv}
		if c.Bool("hex") {
			out["wire"] = hex.EncodeToString(tv.Bytes())
		}
		return printYAML(c.App.Writer, out)
	},
}

var localeconvCommand = cli.Command{
	Name:  "localeconv",
	Usage: "print the QNX struct lconv of the numeric locale",
	Action: func(c *cli.Context) error {
		return printYAML(c.App.Writer, qlocale.Localeconv())
	},
}

var oflagCommand = cli.Command{
	Name:      "oflag",
	Usage:     "translate QNX open flags to the host",
	ArgsUsage: "<flags>",
	Action: func(c *cli.Context) error {
		f, err := oflag.Parse(c.Args().First())
		if err != nil {
			return err
		}
		return printYAML(c.App.Writer, map[string]string{
			"qnx":   f.String(),
			"value": "0x" + strconv.FormatUint(uint64(f), 16),
			"host":  "0x" + strconv.FormatUint(uint64(oflag.ToHost(f)), 16),
		})
	},
}

var termCommand = cli.Command{
	Name:  "term",
	Usage: "print the terminal size of standard input",
	Action: func(c *cli.Context) error {
		rows, cols := qterm.Tcgetsize(0)
		return printYAML(c.App.Writer, map[string]int{"rows": rows, "cols": cols})
	},
}

var slogCommand = cli.Command{
	Name:      "slog",
	Usage:     "log a message through slogf",
	ArgsUsage: "<code> <severity> <message>",
	Action: func(c *cli.Context) error {
		args := c.Args()
		if len(args) != 3 {
			return cli.NewExitError("slog: want code, severity and message", 2)
		}
		code, err := strconv.Atoi(args[0])
		if err != nil {
			return errors.Wrap(err, "code")
		}
		sev, err := strconv.Atoi(args[1])
		if err != nil {
			return errors.Wrap(err, "severity")
		}
		slog.Slogf(code, sev, "%s", args[2])
		return nil
	},
}

func printYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
