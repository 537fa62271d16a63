package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/ligustah/picsum/internal/config"
)

type uint16Value struct{ p *uint16 }

func (v uint16Value) String() string {
	if v.p == nil {
		return "0"
	}
	return strconv.FormatUint(uint64(*v.p), 10)
}

func (v uint16Value) Set(s string) error {
	n, err := config.ParseUint16(s)
	if err != nil {
		return err
	}
	*v.p = n
	return nil
}

type uint8Value struct{ p *uint8 }

func (v uint8Value) String() string {
	if v.p == nil {
		return "0"
	}
	return strconv.FormatUint(uint64(*v.p), 10)
}

func (v uint8Value) Set(s string) error {
	n, err := config.ParseUint8(s)
	if err != nil {
		return err
	}
	*v.p = n
	return nil
}

// parseFlags builds the run configuration from defaults, the optional
// config file, PICSUM_* variables and flags, in that order. When ok is
// false the process should exit with code.
func (c *cli) parseFlags(args []string) (cfg config.Config, code int, ok bool) {
	fs := flag.NewFlagSet("picsum", flag.ContinueOnError)
	fs.SetOutput(c.stderr)

	fc := config.Default()
	configPath := fs.String("config", "", "YAML configuration file")
	fs.Var(uint16Value{&fc.Count}, "count", "Number of images to download")
	fs.Var(uint16Value{&fc.Width}, "width", "Width of image to be downloaded")
	fs.Var(uint16Value{&fc.Height}, "height", "Height of image to be downloaded")
	fs.StringVar(&fc.Dir, "dir", "", "Directory to save downloaded files in (default ~/Downloads)")
	fs.Var(uint8Value{&fc.Threads}, "threads", "Number of parallel downloads")
	fs.StringVar(&fc.Bucket, "bucket", "", "Bucket URL to save images to instead of -dir (s3://, gs://, file://, mem://)")
	fs.StringVar(&fc.BaseURL, "base-url", fc.BaseURL, "Image endpoint root")
	fs.DurationVar(&fc.Timeout, "timeout", fc.Timeout, "Per-image request timeout (0 disables)")
	fs.BoolVar(&fc.Verbose, "verbose", false, "Enable debug logging")

	// Usage is printed after Parse returns so that --help can go to stdout
	// while errors go to stderr.
	fs.Usage = func() {}
	usage := func(w io.Writer) {
		printUsage(w)
		fs.SetOutput(w)
		fs.PrintDefaults()
		fs.SetOutput(c.stderr)
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			usage(c.stdout)
			return cfg, ExitSuccess, false
		}
		usage(c.stderr)
		return cfg, ExitInvalidArgs, false
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(c.stderr, "Invalid argument %s\n", fs.Arg(0))
		usage(c.stderr)
		return cfg, ExitInvalidArgs, false
	}

	cfg = config.Default()
	if *configPath != "" {
		if err := cfg.ApplyFile(*configPath); err != nil {
			fmt.Fprintf(c.stderr, "Error: %v\n", err)
			return cfg, ExitInvalidArgs, false
		}
	}
	if err := cfg.LoadFromEnv(); err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return cfg, ExitInvalidArgs, false
	}

	cfg = cfg.Merge(flagOverride(fs, fc))

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		usage(c.stderr)
		return cfg, ExitInvalidArgs, false
	}

	return cfg, ExitSuccess, true
}

// flagOverride collects the flags given on the command line. Flags left at
// their defaults do not override the file or environment.
func flagOverride(fs *flag.FlagSet, fc config.Config) config.Override {
	var o config.Override
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "count":
			o.Count = &fc.Count
		case "width":
			o.Width = &fc.Width
		case "height":
			o.Height = &fc.Height
		case "dir":
			o.Dir = &fc.Dir
		case "threads":
			o.Threads = &fc.Threads
		case "bucket":
			o.Bucket = &fc.Bucket
		case "base-url":
			o.BaseURL = &fc.BaseURL
		case "timeout":
			o.Timeout = &fc.Timeout
		case "verbose":
			o.Verbose = &fc.Verbose
		}
	})
	return o
}
