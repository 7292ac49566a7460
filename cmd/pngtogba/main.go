package main

import (
	"bytes"
	"errors"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"runtime"
	"strings"

	"github.com/bodgit/pngtogba"
	"github.com/bodgit/pngtogba/config"
	"github.com/bodgit/pngtogba/palette"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) (logrus.FieldLogger, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	if c.Bool("verbose") {
		logger.SetLevel(logrus.DebugLevel)
	}

	switch c.String("log-format") {
	case "text":
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log format %q", c.String("log-format"))
	}

	return logger, nil
}

func transparent(s string) (*palette.Color, error) {
	switch strings.ToLower(s) {
	case "":
		return nil, nil
	case "none":
		c := palette.None
		return &c, nil
	}
	c, err := palette.ParseHex(s)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func newConverter(c *cli.Context) (*pngtogba.Converter, error) {
	logger, err := newLogger(c)
	if err != nil {
		return nil, err
	}

	t, err := transparent(c.String("transparent"))
	if err != nil {
		return nil, err
	}

	return pngtogba.New(pngtogba.Options{
		TileSize:    c.Int("tile-size"),
		Prefix:      c.String("prefix"),
		Transparent: t,
		Quantize:    c.Int("quantize"),
		Header:      c.Bool("header"),
		Workers:     c.Int("workers"),
	}, logger), nil
}

// writePreview renders the preview in memory so nothing is written if the
// conversion fails
func writePreview(m *pngtogba.Converter, header, output string, scale int) error {
	b := new(bytes.Buffer)
	if err := m.Preview(header, b, scale); err != nil {
		return err
	}
	return ioutil.WriteFile(output, b.Bytes(), 0644)
}

func main() {
	// Allow flag defaults to be set from a .env file
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatal(err)
	}

	app := cli.NewApp()

	app.Name = "pngtogba"
	app.Usage = "Convert images into GBA 4bpp tiles and palettes"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
		&cli.StringFlag{
			Name:    "log-format",
			EnvVars: []string{"PNGTOGBA_LOG_FORMAT"},
			Value:   "text",
			Usage:   "log format, text or json",
		},
		&cli.IntFlag{
			Name:    "tile-size",
			Aliases: []string{"t"},
			EnvVars: []string{"PNGTOGBA_TILE_SIZE"},
			Usage:   "override the tile size from the header",
		},
		&cli.StringFlag{
			Name:    "prefix",
			Aliases: []string{"p"},
			EnvVars: []string{"PNGTOGBA_PREFIX"},
			Usage:   "override the symbol prefix from the header",
		},
		&cli.StringFlag{
			Name:    "transparent",
			EnvVars: []string{"PNGTOGBA_TRANSPARENT"},
			Usage:   "override the transparent color from the header, rrggbb or none",
		},
		&cli.IntFlag{
			Name:    "quantize",
			Aliases: []string{"q"},
			EnvVars: []string{"PNGTOGBA_QUANTIZE"},
			Usage:   "reduce the image to at most `N` colors first",
		},
		&cli.BoolFlag{
			Name:  "header",
			Usage: "rewrite each header with declarations for the generated source",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "convert",
			Usage:       "Convert images described by headers",
			Description: "Each header, for example tileset.png.h, sits alongside the image and holds the\nsettings; the generated source is written to tileset.png.c.",
			ArgsUsage:   "HEADER...",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				m, err := newConverter(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				for _, header := range c.Args().Slice() {
					if err := m.Convert(header); err != nil {
						return cli.NewExitError(err, 1)
					}
				}

				return nil
			},
		},
		{
			Name:        "scan",
			Usage:       "Convert every image header beneath a directory",
			Description: "",
			ArgsUsage:   "DIRECTORY",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "workers",
					Aliases: []string{"w"},
					EnvVars: []string{"PNGTOGBA_WORKERS"},
					Value:   runtime.NumCPU(),
					Usage:   "number of images to convert concurrently",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				m, err := newConverter(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				if err := m.Scan(c.Args().First()); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "preview",
			Usage:       "Render the converted image as a PNG",
			Description: "The preview is decoded from the generated tiles and palettes so it shows\nexactly what will be displayed.",
			ArgsUsage:   "HEADER",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "output",
					Aliases: []string{"o"},
					Usage:   "write the preview to `FILE` (default IMAGE.preview.png)",
				},
				&cli.IntFlag{
					Name:    "scale",
					Aliases: []string{"s"},
					Value:   1,
					Usage:   "enlarge the preview by this factor",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				m, err := newConverter(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				header := c.Args().First()
				output := c.String("output")
				if output == "" {
					image, _ := config.Paths(header)
					output = image + ".preview.png"
				}

				if err := writePreview(m, header, output, c.Int("scale")); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
