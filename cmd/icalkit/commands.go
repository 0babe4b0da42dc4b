package main

import (
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"icalkit/internal/caltime"
	"icalkit/internal/config"
	"icalkit/internal/ics"
	"icalkit/internal/interop"
	appLog "icalkit/internal/log"
	"icalkit/internal/model"
)

func engineFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "engine",
		Usage: "parser to read input with: native, golang-ical or go-ical (default from config)",
	}
}

// engine returns the --engine flag, falling back to the config.
func (s *runState) engine(c *cli.Context) string {
	if c.IsSet("engine") {
		return c.String("engine")
	}
	return s.conf.Expand.Engine
}

// singleArg returns the only positional argument.
func singleArg(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", cli.Exit(fmt.Sprintf("%s: expected exactly one FILE argument", c.Command.Name), 2)
	}
	return c.Args().First(), nil
}

func (s *runState) readCalendar(c *cli.Context, path, engine string) (*ics.Calendar, error) {
	data, err := readInput(path, c.App.Reader)
	if err != nil {
		return nil, err
	}
	cal, err := loadCalendar(data, engine)
	if err != nil {
		appLog.Error("calendar rejected", err, "run_id", s.id, "path", path, "engine", engine)
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cal, nil
}

func validateCommand(s *runState) *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Check files and report every component error.",
		ArgsUsage: "FILE...",
		Action: func(c *cli.Context) error {
			paths := c.Args().Slice()
			if len(paths) == 0 {
				return cli.Exit("validate: no files given", 2)
			}
			appLog.Info("validate started", "run_id", s.id, "files", len(paths))

			results := make([][]error, len(paths))
			g, ctx := errgroup.WithContext(c.Context)
			g.SetLimit(runtime.GOMAXPROCS(0))
			for i, path := range paths {
				i, path := i, path
				g.Go(func() error {
					if err := ctx.Err(); err != nil {
						return err
					}
					data, err := readInput(path, c.App.Reader)
					if err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}
					results[i] = validateAll(data)
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			failed := 0
			for i, errs := range results {
				if len(errs) == 0 {
					fmt.Fprintf(c.App.Writer, "%s: ok\n", paths[i])
					continue
				}
				failed++
				for _, err := range errs {
					fmt.Fprintf(c.App.Writer, "%s: %v\n", paths[i], err)
				}
			}

			appLog.Info("validate completed", "run_id", s.id, "files", len(paths), "failed", failed)
			if failed > 0 {
				return cli.Exit(fmt.Sprintf("%d of %d files invalid", failed, len(paths)), 1)
			}
			return nil
		},
	}
}

func fmtCommand(s *runState) *cli.Command {
	return &cli.Command{
		Name:      "fmt",
		Usage:     "Re-emit a calendar as canonical iCalendar text.",
		ArgsUsage: "FILE",
		Flags:     []cli.Flag{engineFlag()},
		Action: func(c *cli.Context) error {
			path, err := singleArg(c)
			if err != nil {
				return err
			}
			cal, err := s.readCalendar(c, path, s.engine(c))
			if err != nil {
				return err
			}
			_, err = io.WriteString(c.App.Writer, cal.Generate())
			return err
		},
	}
}

func importCommand(s *runState) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Read a calendar through a third-party parser, verify it and print it.",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "engine",
				Usage: "golang-ical or go-ical",
				Value: config.EngineGolangICal,
			},
		},
		Action: func(c *cli.Context) error {
			path, err := singleArg(c)
			if err != nil {
				return err
			}
			engine := c.String("engine")
			if engine == config.EngineNative {
				return cli.Exit("import: use fmt for the native parser", 2)
			}
			cal, err := s.readCalendar(c, path, engine)
			if err != nil {
				return err
			}
			appLog.Info("import completed", "run_id", s.id, "path", path, "engine", engine, "components", len(cal.Components()))
			_, err = io.WriteString(c.App.Writer, cal.Generate())
			return err
		},
	}
}

func convertCommand(s *runState) *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     "Verify a calendar and write it through go-ical's encoder.",
		ArgsUsage: "FILE",
		Flags:     []cli.Flag{engineFlag()},
		Action: func(c *cli.Context) error {
			path, err := singleArg(c)
			if err != nil {
				return err
			}
			cal, err := s.readCalendar(c, path, s.engine(c))
			if err != nil {
				return err
			}
			return interop.EncodeGoICal(c.App.Writer, cal)
		},
	}
}

func expandCommand(s *runState) *cli.Command {
	return &cli.Command{
		Name:      "expand",
		Usage:     "List the occurrences of every entry inside a time window.",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "from", Usage: "window start, YYYY-MM-DD or RFC 3339 (default: today)"},
			&cli.StringFlag{Name: "to", Usage: "window end, YYYY-MM-DD (whole day) or RFC 3339 (default: from + window_days)"},
			&cli.StringFlag{Name: "tz", Usage: "display timezone (default from config)"},
			&cli.IntFlag{Name: "max", Usage: "maximum instances per entry (default from config)"},
			&cli.StringFlag{Name: "format", Aliases: []string{"o"}, Usage: "yaml or json (default from config)"},
			&cli.BoolFlag{Name: "ics", Usage: "print the expanded entries as one iCalendar document"},
			engineFlag(),
		},
		Action: func(c *cli.Context) error {
			path, err := singleArg(c)
			if err != nil {
				return err
			}

			tzName := s.conf.Timezone
			if c.IsSet("tz") {
				tzName = c.String("tz")
			}
			loc, err := displayLocation(tzName)
			if err != nil {
				return err
			}
			from, to, err := expandWindow(c.String("from"), c.String("to"), s.conf.Expand.WindowDays, loc, time.Now())
			if err != nil {
				return err
			}
			maxInstances := s.conf.Expand.MaxInstances
			if c.IsSet("max") {
				maxInstances = c.Int("max")
			}

			cal, err := s.readCalendar(c, path, s.engine(c))
			if err != nil {
				return err
			}
			objs, err := cal.Objects()
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			opts := ics.ExpandOptions{Start: &from, End: &to, MaxInstances: maxInstances}
			var (
				expanded  []*ics.Object
				occs      []model.Occurrence
				truncated []string
			)
			for _, obj := range objs {
				res, err := obj.Expand(opts)
				if err != nil {
					return fmt.Errorf("%s: %s: %w", path, obj.UID(), err)
				}
				if res.Truncated {
					truncated = append(truncated, obj.UID())
				}
				// Entries that do not recur come back whole; the window
				// decides whether they are listed.
				inWindow := ics.FilterWindow(ics.Occurrences(res.Object, loc), from, to)
				if len(inWindow) == 0 {
					continue
				}
				expanded = append(expanded, res.Object)
				for _, occ := range inWindow {
					occ.Source = path
					occs = append(occs, occ)
				}
			}
			sortOccurrences(occs)

			appLog.Info("expand completed",
				"run_id", s.id,
				"path", path,
				"objects", len(objs),
				"occurrences", len(occs),
				"truncated", len(truncated),
			)

			if c.Bool("ics") {
				_, err := io.WriteString(c.App.Writer, ics.FromObjects(s.conf.ProdID, expanded...).Generate())
				return err
			}

			format := s.conf.Output
			if c.IsSet("format") {
				format = c.String("format")
			}
			return writeListing(c.App.Writer, listing{
				From:        from.Format(time.RFC3339),
				To:          to.Format(time.RFC3339),
				Timezone:    loc.String(),
				Truncated:   truncated,
				Occurrences: occs,
			}, format)
		},
	}
}

// displayLocation resolves the display zone; "Local" is the host zone.
func displayLocation(name string) (*time.Location, error) {
	switch strings.TrimSpace(name) {
	case "", "Local":
		return time.Local, nil
	case "UTC":
		return time.UTC, nil
	}
	loc := caltime.Resolve("", name)
	if loc == nil {
		return nil, fmt.Errorf("unknown timezone %q", name)
	}
	return loc, nil
}

// expandWindow turns the --from/--to flags into inclusive bounds. A date-only
// --to covers that whole day.
func expandWindow(fromFlag, toFlag string, days int, loc *time.Location, now time.Time) (time.Time, time.Time, error) {
	var from time.Time
	if fromFlag == "" {
		y, m, d := now.In(loc).Date()
		from = time.Date(y, m, d, 0, 0, 0, 0, loc)
	} else {
		t, _, err := parseBound(fromFlag, loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = t
	}

	to := from.AddDate(0, 0, days)
	if toFlag != "" {
		t, dateOnly, err := parseBound(toFlag, loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = t
		if dateOnly {
			to = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("window end %s is before start %s", to.Format(time.RFC3339), from.Format(time.RFC3339))
	}
	return from, to, nil
}

func parseBound(s string, loc *time.Location) (time.Time, bool, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return t, true, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, false, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("invalid time %q, want YYYY-MM-DD or RFC 3339", s)
}
