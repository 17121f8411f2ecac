package main

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"

	"github.com/bodgit/pixeldraw"
	"github.com/bodgit/pixeldraw/document"
	pdimage "github.com/bodgit/pixeldraw/image"
	"github.com/bodgit/pixeldraw/palette"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

const defaultDB = "pixeldraw.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) (*zap.Logger, error) {
	if c.Bool("verbose") {
		return zap.NewDevelopment()
	}
	return zap.NewNop(), nil
}

func newConfig(c *cli.Context) document.Config {
	return document.Config{
		AppID:  c.String("app"),
		Width:  c.Int("width"),
		Height: c.Int("height"),
	}
}

func targetVersion(c *cli.Context) (document.Version, error) {
	return document.ParseVersion(c.String("format-version"))
}

func readInput(name string) ([]byte, error) {
	if name == "-" {
		return ioutil.ReadAll(os.Stdin)
	}
	return ioutil.ReadFile(name)
}

func writeOutput(name string, b []byte) error {
	if name == "" || name == "-" {
		_, err := os.Stdout.Write(b)
		return err
	}
	return ioutil.WriteFile(name, b, 0644)
}

var formatVersionFlag = &cli.StringFlag{
	Name:  "format-version",
	Value: string(document.Current),
	Usage: "document version to write",
}

func info(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	b, err := readInput(c.Args().First())
	if err != nil {
		return cli.Exit(err, 1)
	}

	cfg := newConfig(c)

	env, err := document.Parse(b, cfg)
	if err != nil {
		return cli.Exit(err, 1)
	}

	doc, err := document.Decode(env, cfg)
	if err != nil {
		return cli.Exit(err, 1)
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Version: %s\n", env.Version)
	fmt.Fprintf(w, "Pixels:  %s\n", env.Pixels.Format())
	fmt.Fprintf(w, "Title:   %s\n", doc.Title)
	fmt.Fprintf(w, "Size:    %dx%d\n", doc.Raster.Width, doc.Raster.Height)
	fmt.Fprintf(w, "Colors:  %d\n", doc.Palette.Len())
	if env.Palette == nil {
		fmt.Fprintln(w, "Palette: default")
	}

	return nil
}

func convert(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	v, err := targetVersion(c)
	if err != nil {
		return cli.Exit(err, 1)
	}

	b, err := readInput(c.Args().First())
	if err != nil {
		return cli.Exit(err, 1)
	}

	cfg := newConfig(c)

	doc, err := document.Load(b, cfg)
	if err != nil {
		return cli.Exit(err, 1)
	}

	out, err := document.EncodeVersion(doc, cfg, v)
	if err != nil {
		return cli.Exit(err, 1)
	}

	if err := writeOutput(c.Args().Get(1), out); err != nil {
		return cli.Exit(err, 1)
	}

	return nil
}

func migrate(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	logger, err := newLogger(c)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer logger.Sync()

	v, err := targetVersion(c)
	if err != nil {
		return cli.Exit(err, 1)
	}

	m, err := pixeldraw.NewMigrator(newConfig(c), v, logger)
	if err != nil {
		return cli.Exit(err, 1)
	}

	if err := m.Migrate(c.Args().First()); err != nil {
		return cli.Exit(err, 1)
	}

	return nil
}

func importImage(c *cli.Context) error {
	if c.NArg() < 2 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	f, err := os.Open(c.Args().First())
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer f.Close()

	m, _, err := image.Decode(f)
	if err != nil {
		return cli.Exit(err, 1)
	}

	cfg := newConfig(c)

	r, p, err := pdimage.Import(m, palette.Default(), cfg.Width, cfg.Height, c.Int("extra"))
	if err != nil {
		return cli.Exit(err, 1)
	}

	title := c.String("title")
	if title == "" {
		title = filepath.Base(c.Args().First())
		title = title[:len(title)-len(filepath.Ext(title))]
	}

	b, err := document.Encode(&document.Document{Title: title, Palette: p, Raster: r}, cfg)
	if err != nil {
		return cli.Exit(err, 1)
	}

	if err := writeOutput(c.Args().Get(1), b); err != nil {
		return cli.Exit(err, 1)
	}

	return nil
}

func export(c *cli.Context) error {
	if c.NArg() < 2 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	b, err := readInput(c.Args().First())
	if err != nil {
		return cli.Exit(err, 1)
	}

	doc, err := document.Load(b, newConfig(c))
	if err != nil {
		return cli.Exit(err, 1)
	}

	m, err := pdimage.Paletted(doc.Raster, doc.Palette, c.Int("scale"))
	if err != nil {
		return cli.Exit(err, 1)
	}

	buf := new(bytes.Buffer)
	if err := png.Encode(buf, m); err != nil {
		return cli.Exit(err, 1)
	}

	if err := writeOutput(c.Args().Get(1), buf.Bytes()); err != nil {
		return cli.Exit(err, 1)
	}

	return nil
}

func withSession(c *cli.Context, f func(*pixeldraw.Session) error) error {
	logger, err := newLogger(c)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer logger.Sync()

	db, err := pixeldraw.NewDB(c.String("db"))
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer db.Close()

	s, err := pixeldraw.New(newConfig(c), db, logger)
	if err != nil {
		return cli.Exit(err, 1)
	}

	if err := f(s); err != nil {
		return cli.Exit(err, 1)
	}

	return nil
}

func save(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	b, err := readInput(c.Args().First())
	if err != nil {
		return cli.Exit(err, 1)
	}

	return withSession(c, func(s *pixeldraw.Session) error {
		return s.Load(b)
	})
}

func restore(c *cli.Context) error {
	return withSession(c, func(s *pixeldraw.Session) error {
		ok, err := s.Restore()
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("nothing stored under %s", pixeldraw.StorageKey(document.Current))
		}

		b, err := s.Save()
		if err != nil {
			return err
		}

		return writeOutput(c.Args().First(), b)
	})
}

func withDB(c *cli.Context, f func(*pixeldraw.DB) error) error {
	db, err := pixeldraw.NewDB(c.String("db"))
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer db.Close()

	if err := f(db); err != nil {
		return cli.Exit(err, 1)
	}

	return nil
}

func list(c *cli.Context) error {
	return withDB(c, func(db *pixeldraw.DB) error {
		keys, err := db.Keys()
		if err != nil {
			return err
		}
		for _, key := range keys {
			fmt.Fprintln(c.App.Writer, key)
		}
		return nil
	})
}

func discard(c *cli.Context) error {
	v, err := targetVersion(c)
	if err != nil {
		return cli.Exit(err, 1)
	}

	return withDB(c, func(db *pixeldraw.DB) error {
		return db.Delete(pixeldraw.StorageKey(v))
	})
}

func newApp(stdout io.Writer) *cli.App {
	app := cli.NewApp()

	app.Name = "pixeldraw"
	app.Usage = "PixelDraw document utility"
	app.Version = "3.0.0"
	app.Writer = stdout

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	defaults := document.DefaultConfig()

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"PIXELDRAW_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to auto-save database",
		},
		&cli.StringFlag{
			Name:    "app",
			EnvVars: []string{"PIXELDRAW_APP"},
			Value:   defaults.AppID,
			Usage:   "expected application identity",
		},
		&cli.IntFlag{
			Name:    "width",
			EnvVars: []string{"PIXELDRAW_WIDTH"},
			Value:   defaults.Width,
			Usage:   "canvas width",
		},
		&cli.IntFlag{
			Name:    "height",
			EnvVars: []string{"PIXELDRAW_HEIGHT"},
			Value:   defaults.Height,
			Usage:   "canvas height",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:      "info",
			Usage:     "Validate a document and describe it",
			ArgsUsage: "FILE",
			Action:    info,
		},
		{
			Name:      "convert",
			Usage:     "Rewrite a document in another version",
			ArgsUsage: "FILE [OUTPUT]",
			Flags:     []cli.Flag{formatVersionFlag},
			Action:    convert,
		},
		{
			Name:      "migrate",
			Usage:     "Rewrite every document in a directory tree",
			ArgsUsage: "DIRECTORY",
			Flags:     []cli.Flag{formatVersionFlag},
			Action:    migrate,
		},
		{
			Name:      "import",
			Usage:     "Create a document from a PNG, GIF or JPEG image",
			ArgsUsage: "IMAGE OUTPUT",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "extra",
					Usage: "number of colors to add to the palette from the image",
				},
				&cli.StringFlag{
					Name:  "title",
					Usage: "document title, defaults to the image filename",
				},
			},
			Action: importImage,
		},
		{
			Name:      "export",
			Usage:     "Write a document as a PNG image",
			ArgsUsage: "FILE OUTPUT",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "scale",
					Value: 1,
					Usage: "size in pixels of each cell",
				},
			},
			Action: export,
		},
		{
			Name:      "save",
			Usage:     "Store a document as the auto-saved drawing",
			ArgsUsage: "FILE",
			Action:    save,
		},
		{
			Name:      "restore",
			Usage:     "Write out the auto-saved drawing",
			ArgsUsage: "[OUTPUT]",
			Action:    restore,
		},
		{
			Name:   "list",
			Usage:  "List the keys held in the auto-save database",
			Action: list,
		},
		{
			Name:  "discard",
			Usage: "Remove the auto-saved drawing of a version",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "format-version",
					Value: string(document.Current),
					Usage: "version whose drawing is removed",
				},
			},
			Action: discard,
		},
	}

	return app
}

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
