// Command catalog checks and exports course content offline.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/p-n-ai/pai-course/internal/catalog"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "catalog",
		Usage:     "validate and export course content",
		Writer:    stdout,
		ErrWriter: stderr,
		Commands: []*cli.Command{
			{
				Name:      "validate",
				Usage:     "check every lesson in DIR, or the bundled course when DIR is omitted",
				ArgsUsage: "[DIR]",
				Action:    validateAction,
			},
			{
				Name:      "export",
				Usage:     "write the lessons in DIR, or the bundled course, to an xlsx workbook",
				ArgsUsage: "[DIR]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Value:   "catalog.xlsx",
						Usage:   "output `FILE`",
					},
				},
				Action: exportAction,
			},
		},
	}
}

func load(dir string) (*catalog.Catalog, error) {
	if dir == "" {
		return catalog.LoadEmbedded()
	}
	return catalog.LoadDir(dir)
}

func validateAction(c *cli.Context) error {
	cat, err := load(c.Args().First())
	var verr *catalog.ValidationError
	if errors.As(err, &verr) {
		for _, p := range verr.Problems {
			fmt.Fprintln(c.App.ErrWriter, p)
		}
		return fmt.Errorf("%d problems found", len(verr.Problems))
	}
	if err != nil {
		return err
	}

	questions := 0
	for _, l := range cat.All() {
		questions += len(l.Questions)
	}
	fmt.Fprintf(c.App.Writer, "ok: %d lessons, %d questions, months %v, fingerprint %s\n",
		cat.Len(), questions, cat.Months(), cat.Fingerprint())
	return nil
}

func exportAction(c *cli.Context) error {
	cat, err := load(c.Args().First())
	if err != nil {
		return err
	}

	out := c.String("out")
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	if err := catalog.WriteXLSX(f, cat); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", out, err)
	}

	fmt.Fprintf(c.App.Writer, "wrote %d lessons to %s\n", cat.Len(), out)
	return nil
}
