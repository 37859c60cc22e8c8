// Command qnxspawn runs programs under a QNX spawn inheritance profile and
// prints the QNX images of host records.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/criyle/go-qnxcompat/pkg/slog"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

var version = "unknown"

func main() {
	app := newApp()
	// If the command returns an error, cli takes upon itself to print
	// the error on cli.ErrWriter and exit.
	cli.ErrWriter = &fatalWriter{cli.ErrWriter}
	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "qnxspawn"
	app.Usage = "QNX process creation and record layouts on Linux"
	app.Version = version + "\ngo: " + runtime.Version()

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "debug",
			Usage: "enable debug logging",
		},
		cli.StringFlag{
			Name:  "log-format",
			Value: "text",
			Usage: "set the log format ('text' (default), 'json' or 'slog')",
		},
	}
	app.Commands = []cli.Command{
		runCommand,
		statCommand,
		lsCommand,
		timeCommand,
		localeconvCommand,
		oflagCommand,
		termCommand,
		slogCommand,
	}
	app.Before = configLogrus
	return app
}

type fatalWriter struct {
	cliErrWriter io.Writer
}

func (f *fatalWriter) Write(p []byte) (n int, err error) {
	logrus.Error(string(p))
	return f.cliErrWriter.Write(p)
}

func configLogrus(context *cli.Context) error {
	if context.GlobalBool("debug") {
		logrus.SetLevel(logrus.DebugLevel)
	}

	switch f := context.GlobalString("log-format"); f {
	case "", "text":
		// do nothing
	case "json":
		logrus.SetFormatter(new(logrus.JSONFormatter))
	case "slog":
		logrus.SetFormatter(slog.Formatter{})
	default:
		return errors.New("invalid log-format: " + f)
	}
	return nil
}

func fatal(err error) {
	logrus.Error(err)
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
