package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/robert-malhotra/go-npy/npy"
)

// arrayReport describes one loaded array.
type arrayReport struct {
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Dtype    string `json:"dtype" yaml:"dtype"`
	GoType   string `json:"go_type,omitempty" yaml:"go_type,omitempty"`
	Shape    []int  `json:"shape" yaml:"shape,flow"`
	Order    string `json:"order" yaml:"order"`
	WordSize int    `json:"word_size" yaml:"word_size"`
	Bytes    int    `json:"bytes" yaml:"bytes"`
}

// report is everything info prints about one file.
type report struct {
	Path string `json:"path" yaml:"path"`
	Kind string `json:"kind" yaml:"kind"`

	// Archive footer summary; zero for standalone arrays.
	Members         int    `json:"members,omitempty" yaml:"members,omitempty"`
	DirectoryOffset uint32 `json:"directory_offset,omitempty" yaml:"directory_offset,omitempty"`
	DirectorySize   uint32 `json:"directory_size,omitempty" yaml:"directory_size,omitempty"`

	Arrays []arrayReport `json:"arrays" yaml:"arrays"`
}

func infoCmd() *cli.Command {
	var (
		entry    string
		format   string
		logLevel string
		maxBytes uint64
	)

	return &cli.Command{
		Name:      "info",
		Usage:     "Describe the arrays in an .npy or .npz file",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "entry",
				Aliases:     []string{"e"},
				Usage:       "only load this archive member",
				Destination: &entry,
			},
			&cli.StringFlag{
				Name:        "format",
				Aliases:     []string{"f"},
				Usage:       "output format: text, json or yaml",
				Value:       "text",
				Destination: &format,
			},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error", Value: "warn", Destination: &logLevel},
			&cli.Uint64Flag{
				Name:        "max-array-bytes",
				Usage:       "reject arrays declaring a larger payload",
				Value:       npy.DefaultMaxArrayBytes,
				Destination: &maxBytes,
			},
		},
		Action: func(_ context.Context, c *cli.Command) error {
			applyInfoConfig(c, LoadConfig(), &format, &logLevel, &maxBytes)
			if c.Args().Len() != 1 {
				return fmt.Errorf("usage: %s info [options] <file>", c.Root().Name)
			}

			logger, err := newLogger(c.Root().ErrWriter, logLevel)
			if err != nil {
				return err
			}
			rep, err := inspect(c.Args().First(), entry, npy.WithLogger(logger), npy.WithMaxArrayBytes(maxBytes))
			if err != nil {
				return err
			}
			return writeReport(c.Root().Writer, rep, format)
		},
	}
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	if w == nil {
		w = os.Stderr
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// inspect loads path as an archive when it carries a valid footer and as a
// standalone array otherwise.
func inspect(path, entry string, opts ...npy.Option) (*report, error) {
	ft, err := npy.ArchiveInfo(path)
	if errors.Is(err, npy.ErrNotArchive) {
		if entry != "" {
			return nil, fmt.Errorf("%s is not an archive, --entry does not apply", path)
		}
		a, err := npy.LoadFile(path, opts...)
		if err != nil {
			return nil, err
		}
		return &report{Path: path, Kind: "npy", Arrays: []arrayReport{describe("", a)}}, nil
	}
	if err != nil {
		return nil, err
	}

	rep := &report{
		Path:            path,
		Kind:            "npz",
		Members:         int(ft.CDCount),
		DirectoryOffset: ft.CDOffset,
		DirectorySize:   ft.CDSize,
	}
	if entry != "" {
		a, err := npy.LoadArchiveEntry(path, entry, opts...)
		if err != nil {
			return nil, err
		}
		rep.Arrays = []arrayReport{describe(entry, a)}
		return rep, nil
	}

	arrays, err := npy.LoadArchive(path, opts...)
	if err != nil {
		return nil, err
	}
	rep.Arrays = []arrayReport{}
	for _, name := range slices.Sorted(maps.Keys(arrays)) {
		rep.Arrays = append(rep.Arrays, describe(name, arrays[name]))
	}
	return rep, nil
}

func describe(name string, a *npy.Array) arrayReport {
	order := "C"
	if a.FortranOrder {
		order = "F"
	}
	r := arrayReport{
		Name:     name,
		Dtype:    a.Dtype.String(),
		Shape:    a.Shape,
		Order:    order,
		WordSize: a.WordSize,
		Bytes:    a.NumBytes(),
	}
	if t := npy.GoType(a.Dtype); t != nil {
		r.GoType = t.String()
	}
	return r
}

func writeReport(w io.Writer, rep *report, format string) error {
	if w == nil {
		w = os.Stdout
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		return writeText(w, rep)
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
}

func writeText(w io.Writer, rep *report) error {
	if rep.Kind == "npz" {
		fmt.Fprintf(w, "%s: archive, %d members, central directory %d bytes at offset %d\n\n",
			rep.Path, rep.Members, rep.DirectorySize, rep.DirectoryOffset)
	} else {
		fmt.Fprintf(w, "%s: array\n\n", rep.Path)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDTYPE\tSHAPE\tORDER\tBYTES")
	for _, a := range rep.Arrays {
		name := a.Name
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%v\t%s\t%d\n", name, a.Dtype, a.Shape, a.Order, a.Bytes)
	}
	return tw.Flush()
}
