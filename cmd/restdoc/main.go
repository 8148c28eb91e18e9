package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/reoring/restdoc"
	"github.com/reoring/restdoc/source"
	"github.com/reoring/restdoc/source/gojson"
	"github.com/reoring/restdoc/source/jsonc"
	"github.com/reoring/restdoc/source/yaml"
)

func main() {
	stdout := io.Writer(os.Stdout)
	tty := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	if tty {
		stdout = colorable.NewColorableStdout()
	}
	os.Exit(run(os.Args[1:], os.Stdin, stdout, os.Stderr, tty))
}

const usageText = `restdoc CLI

Usage:
  restdoc fmt   [flags]
  restdoc get   [flags] PATH
  restdoc set   [flags] PATH VALUE
  restdoc del   [flags] PATH
  restdoc query [flags] EXPR
  restdoc patch [flags] PATCH_FILE
  restdoc merge [flags] MERGE_FILE
  restdoc diff  [flags] OTHER_FILE

PATH is dotted (a.b.0) or a JSON Pointer (/a/b/0). VALUE is parsed as JSON
and taken as a string when it is not JSON.

Common flags:
  -f FILE      input file, stdin when omitted or "-"
  -format F    json, yaml or jsonc (default: from the file extension)
  -indent N    indent step of the output (negative for compact output)
  -color MODE  auto, always or never
  -v           debug logs on stderr`

type command func(e *env, args []string) error

var commands = map[string]struct {
	nargs int
	run   command
}{
	"fmt":   {0, fmtCmd},
	"get":   {1, getCmd},
	"set":   {2, setCmd},
	"del":   {1, delCmd},
	"query": {1, queryCmd},
	"patch": {1, patchCmd},
	"merge": {1, mergeCmd},
	"diff":  {1, diffCmd},
}

// run executes one subcommand and returns the exit status. tty enables
// colors in auto mode.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer, tty bool) int {
	if len(args) < 1 {
		fmt.Fprintln(stderr, usageText)
		return 2
	}
	sub, ok := commands[args[0]]
	if !ok {
		fmt.Fprintln(stderr, usageText)
		return 2
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprintln(stderr, usageText) }
	e := &env{stdin: stdin, stdout: stdout, stderr: stderr}
	var colorMode string
	var verbose bool
	fs.StringVar(&e.file, "f", "", "input file")
	fs.StringVar(&e.format, "format", "", "input format")
	fs.IntVar(&e.indent, "indent", 2, "indent step")
	fs.StringVar(&colorMode, "color", "auto", "auto, always or never")
	fs.BoolVar(&verbose, "v", false, "enable verbose logs")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}
	if fs.NArg() != sub.nargs {
		fmt.Fprintf(stderr, "%s: want %d argument(s), got %d\n", args[0], sub.nargs, fs.NArg())
		return 2
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	e.log = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	switch colorMode {
	case "always":
		e.colors = newPalette()
	case "never":
	case "auto":
		if tty {
			e.colors = newPalette()
		}
	default:
		fmt.Fprintf(stderr, "invalid -color %q\n", colorMode)
		return 2
	}

	if err := sub.run(e, fs.Args()); err != nil {
		fmt.Fprintf(stderr, "restdoc %s: %v\n", args[0], err)
		var ee *restdoc.Error
		if errors.As(err, &ee) && ee.Code == restdoc.CodeParseError {
			return 3
		}
		return 1
	}
	return 0
}

type env struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	file   string
	format string
	indent int
	colors *palette
	log    *slog.Logger
}

func (e *env) options(d source.Driver) restdoc.Options {
	return restdoc.Options{
		Driver:         d,
		OnDuplicateKey: restdoc.DuplicateWarn,
		Logger:         e.log,
	}
}

func driverFor(format, name string) (source.Driver, error) {
	if format == "" {
		switch strings.ToLower(filepath.Ext(name)) {
		case ".yaml", ".yml":
			format = "yaml"
		case ".jsonc", ".json5", ".hujson":
			format = "jsonc"
		default:
			format = "json"
		}
	}
	switch format {
	case "json":
		return gojson.Driver(), nil
	case "yaml":
		return yaml.Driver(), nil
	case "jsonc":
		return jsonc.Driver(), nil
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

// input loads the -f document.
func (e *env) input() (restdoc.Node, error) {
	return e.load(e.file, e.stdin)
}

func (e *env) load(name string, stdin io.Reader) (restdoc.Node, error) {
	d, err := driverFor(e.format, name)
	if err != nil {
		return nil, err
	}
	var r io.Reader = stdin
	if name != "" && name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	v, err := restdoc.Load(r, e.options(d))
	if err != nil {
		return nil, err
	}
	e.log.Debug("loaded", "file", name, "driver", d.Name(), "kind", v.Kind())
	n, ok := v.(restdoc.Node)
	if !ok {
		return nil, fmt.Errorf("document is a %s, want object or array", v.Kind())
	}
	return n, nil
}
