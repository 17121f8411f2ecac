/*
Package pixeldraw is a library for editing and storing PixelDraw documents, the
small indexed-color drawings produced by the PixelDraw editor.

A Session owns the drawing being edited. Codec calls are made with the
session's state passed in explicitly, nothing is shared between calls.
*/
package pixeldraw

import (
	"errors"
	"fmt"

	"github.com/bodgit/pixeldraw/document"
	"github.com/bodgit/pixeldraw/palette"
	"github.com/bodgit/pixeldraw/raster"
	"go.uber.org/zap"
)

// ErrNoStore is returned by Restore when the session has no store.
var ErrNoStore = errors.New("pixeldraw: no store")

// StorageKey returns the key the auto-saved document of version v is kept
// under.
func StorageKey(v document.Version) string {
	return "pixelDrawingData-v" + string(v)
}

// Store persists auto-saved documents.
type Store interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
}

// Session is the state of one editing session.
type Session struct {
	cfg     document.Config
	store   Store
	logger  *zap.Logger
	palette palette.Palette
	raster  *raster.Raster
	title   string
	color   int
}

// New returns a session with an empty canvas and the default palette. store
// may be nil to disable auto-saving.
func New(cfg document.Config, store Store, logger *zap.Logger) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := palette.Default()
	return &Session{
		cfg:     cfg,
		store:   store,
		logger:  logger,
		palette: p,
		raster:  raster.New(cfg.Width, cfg.Height, p.Transparent()),
	}, nil
}

// Config returns the session configuration.
func (s *Session) Config() document.Config {
	return s.cfg
}

// Palette returns a copy of the current palette.
func (s *Session) Palette() palette.Palette {
	return s.palette.Clone()
}

// Raster returns a copy of the current raster.
func (s *Session) Raster() *raster.Raster {
	return s.raster.Clone()
}

// Title returns the current title.
func (s *Session) Title() string {
	return s.title
}

// Color returns the selected palette index.
func (s *Session) Color() int {
	return s.color
}

// Document returns a copy of the current drawing.
func (s *Session) Document() *document.Document {
	return &document.Document{
		Title:   s.title,
		Palette: s.Palette(),
		Raster:  s.Raster(),
	}
}

// Select chooses the palette index used by Paint.
func (s *Session) Select(i int) error {
	if !s.palette.Valid(i) {
		return palette.ErrBadIndex
	}
	s.color = i
	return nil
}

// Paint sets the cell at (x, y) to the selected color. The change is not
// saved until EndStroke.
func (s *Session) Paint(x, y int) error {
	if !s.raster.In(x, y) {
		return fmt.Errorf("pixeldraw: (%d, %d) is outside the canvas", x, y)
	}
	s.raster.Set(x, y, s.color)
	return nil
}

// EndStroke marks the end of a run of Paint calls and auto-saves.
func (s *Session) EndStroke() error {
	return s.autosave()
}

// Clear resets every cell to transparent.
func (s *Session) Clear() error {
	s.raster.Fill(s.palette.Transparent())
	return s.autosave()
}

// SetTitle changes the title.
func (s *Session) SetTitle(title string) error {
	s.title = title
	return s.autosave()
}

// AddColor inserts c before the transparent sentinel and selects it. Cells
// that were transparent stay transparent.
func (s *Session) AddColor(c string) error {
	p, i, err := s.palette.Insert(c)
	if err != nil {
		return err
	}

	old := s.palette.Transparent()
	s.raster.Remap(func(v int) int {
		if v == old {
			return p.Transparent()
		}
		return v
	})
	s.palette, s.color = p, i

	return s.autosave()
}

// RemoveColor removes the selected color. Cells using it become transparent
// and the selection returns to the first color.
func (s *Session) RemoveColor() error {
	removed := s.color
	p, err := s.palette.Remove(removed)
	if err != nil {
		return err
	}

	s.raster.Remap(func(v int) int {
		switch {
		case v == removed:
			return p.Transparent()
		case v > removed:
			return v - 1
		default:
			return v
		}
	})
	s.palette, s.color = p, 0

	return s.autosave()
}

// ResetPalette restores the default palette. Cells using a color that no
// longer exists become transparent.
func (s *Session) ResetPalette() error {
	old := s.palette
	p := palette.Default()

	s.raster.Remap(func(v int) int {
		if v == old.Transparent() || v >= p.Transparent() {
			return p.Transparent()
		}
		return v
	})
	s.palette, s.color = p, 0

	return s.autosave()
}

// Save returns the drawing as a current version document.
func (s *Session) Save() ([]byte, error) {
	b, err := document.Encode(s.Document(), s.cfg)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("saved document", zap.Int("bytes", len(b)), zap.String("version", string(document.Current)))
	return b, nil
}

// Load replaces the drawing with the document in b and auto-saves it. On
// error the session is left unchanged.
func (s *Session) Load(b []byte) error {
	if err := s.load(b); err != nil {
		return err
	}
	return s.autosave()
}

func (s *Session) load(b []byte) error {
	env, err := document.Parse(b, s.cfg)
	if err != nil {
		s.logger.Debug("rejected document", zap.Error(err))
		return err
	}

	doc, err := document.Decode(env, s.cfg)
	if err != nil {
		s.logger.Debug("cannot decode document", zap.String("version", string(env.Version)), zap.Error(err))
		return err
	}

	s.palette, s.raster, s.title, s.color = doc.Palette, doc.Raster, doc.Title, 0

	s.logger.Info("loaded document",
		zap.String("version", string(env.Version)),
		zap.Stringer("format", env.Pixels.Format()),
		zap.Int("colors", doc.Palette.Len()))

	return nil
}

// Restore loads the auto-saved document, if there is one. It reports whether
// a document was restored.
func (s *Session) Restore() (bool, error) {
	if s.store == nil {
		return false, ErrNoStore
	}

	b, err := s.store.Get(StorageKey(document.Current))
	if err != nil {
		return false, err
	}
	if b == nil {
		return false, nil
	}

	if err := s.load(b); err != nil {
		return false, err
	}

	return true, nil
}

func (s *Session) autosave() error {
	if s.store == nil {
		return nil
	}

	b, err := s.Save()
	if err != nil {
		return err
	}

	return s.store.Put(StorageKey(document.Current), b)
}
