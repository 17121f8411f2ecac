package pixeldraw

import (
	"context"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"

	"github.com/bodgit/pixeldraw/document"
	"go.uber.org/zap"
)

const numWorkers = 10

// Migrator rewrites PixelDraw documents in bulk.
type Migrator struct {
	cfg     document.Config
	version document.Version
	logger  *zap.Logger
}

// NewMigrator returns a Migrator writing version v documents.
func NewMigrator(cfg document.Config, v document.Version, logger *zap.Logger) (*Migrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !v.Supported() {
		return nil, &document.FormatError{Reason: "unsupported version " + string(v)}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Migrator{
		cfg:     cfg,
		version: v,
		logger:  logger,
	}, nil
}

func (m *Migrator) findDocuments(ctx context.Context, base string) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories, except the base itself
			if file != base && info.Name()[0] == '.' {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			// Ignore anything that isn't a normal file
			if !info.Mode().IsRegular() || filepath.Ext(file) != ".json" {
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

// migrate rewrites a single file, it reports whether the file was changed.
func (m *Migrator) migrate(file string) (bool, error) {
	b, err := ioutil.ReadFile(file)
	if err != nil {
		return false, err
	}

	env, err := document.Parse(b, m.cfg)
	if err != nil {
		return false, err
	}

	doc, err := document.Decode(env, m.cfg)
	if err != nil {
		return false, err
	}

	if env.Version == m.version {
		return false, nil
	}

	out, err := document.EncodeVersion(doc, m.cfg, m.version)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(file)
	if err != nil {
		return false, err
	}

	// Write alongside and rename so a failure never leaves half a document
	tmp := file + ".tmp"
	if err := ioutil.WriteFile(tmp, out, info.Mode().Perm()); err != nil {
		return false, err
	}
	if err := os.Rename(tmp, file); err != nil {
		os.Remove(tmp)
		return false, err
	}

	m.logger.Info("migrated document",
		zap.String("file", file),
		zap.String("from", string(env.Version)),
		zap.String("to", string(m.version)))

	return true, nil
}

func (m *Migrator) documentWorker(ctx context.Context, in <-chan string) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for file := range in {
			if _, err := m.migrate(file); err != nil {
				var fe *document.FormatError
				var de *document.DecodeError
				var dm *document.DimensionMismatchError
				var pe *os.PathError
				if errors.As(err, &fe) || errors.As(err, &de) || errors.As(err, &dm) || errors.As(err, &pe) {
					// Not a document we can read or write, leave it alone
					m.logger.Warn("skipping file", zap.String("file", file), zap.Error(err))
					continue
				}
				errc <- err
				return
			}
		}
	}()
	return errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Migrate rewrites every document found under path.
func (m *Migrator) Migrate(path string) error {
	dir, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	files, errc, err := m.findDocuments(ctx, dir)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for i := 0; i < numWorkers; i++ {
		errc, err := m.documentWorker(ctx, files)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(errcList...)
}
