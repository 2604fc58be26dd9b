// Package gallery saves captured photos to disk and keeps an index of them and of
// where they were sent.
package gallery

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // DecodeConfig during reindex
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/oklog/ulid/v2"

	"github.com/dixieflatline76/Cheese/config"
	"github.com/dixieflatline76/Cheese/pkg/photo"
	"github.com/dixieflatline76/Cheese/util/log"
)

// JPEGQuality is the quality saved photos are encoded with.
const JPEGQuality = 95

// ErrNotFound is returned for names that are not photos in the gallery.
var ErrNotFound = errors.New("photo not found")

// Entry is one indexed photo.
type Entry struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Path      string    `json:"-"`
	TakenAt   time.Time `json:"taken_at"`
	FramePath string    `json:"frame_path,omitempty"`
	Framed    bool      `json:"framed"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	SessionID string    `json:"session_id,omitempty"`
}

// Store is the photos directory plus its index.
type Store struct {
	dir string
	db  *sql.DB

	// serialises name allocation so two saves in the same second get distinct files
	saveMu sync.Mutex
}

// DirFor returns the directory photos are written to. With save_to_disk off the photos
// still need a file for delivery, so they go to a scratch directory instead.
func DirFor(cfg *config.Config) string {
	if !cfg.SaveToDisk {
		return filepath.Join(os.TempDir(), strings.ToLower(config.AppName)+"-photos")
	}
	return cfg.PhotosDirectory
}

// Open opens (creating if needed) the gallery in dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating photos directory: %w", err)
	}
	db, err := openIndex(dir)
	if err != nil {
		return nil, err
	}
	return &Store{dir: dir, db: db}, nil
}

// Close closes the index.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dir returns the photos directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes p as a JPEG named after its timestamp and indexes it. A name already taken
// gets a _2, _3, ... suffix. Save sets p.ID and returns the file path.
func (s *Store) Save(ctx context.Context, p *photo.Photo) (string, error) {
	if p == nil || p.Image == nil {
		return "", errors.New("nothing to save")
	}

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	path, err := s.uniquePath(p.Filename())
	if err != nil {
		return "", err
	}
	if err := writeJPEG(p.Image, path); err != nil {
		return "", fmt.Errorf("writing photo: %w", err)
	}

	id := newID(p.Timestamp)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO photos (id, name, taken_at, frame_path, framed, width, height, session_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, filepath.Base(path), p.Timestamp.UnixMilli(), p.FramePath, p.FrameApplied, p.Width(), p.Height(), p.SessionID)
	if err != nil {
		// The file is the source of truth; a later Reindex picks it up.
		log.Printf("Failed to index %s: %v", path, err)
	}
	p.ID = id
	return path, nil
}

// maxNameAttempts bounds the _N suffixes tried for one timestamp.
var maxNameAttempts = 1000

func (s *Store) uniquePath(name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	path := filepath.Join(s.dir, name)
	for n := 2; n <= maxNameAttempts+1; n++ {
		_, err := os.Stat(path)
		if errors.Is(err, os.ErrNotExist) {
			return path, nil
		}
		if err != nil {
			return "", fmt.Errorf("checking %s: %w", path, err)
		}
		path = filepath.Join(s.dir, stem+"_"+strconv.Itoa(n)+ext)
	}
	return "", fmt.Errorf("no free name for %s after %d attempts", name, maxNameAttempts)
}

// List returns the indexed photos, newest first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, taken_at, COALESCE(frame_path, ''), framed, width, height, COALESCE(session_id, '')
		 FROM photos ORDER BY taken_at DESC, name DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing photos: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var taken int64
		if err := rows.Scan(&e.ID, &e.Name, &taken, &e.FramePath, &e.Framed, &e.Width, &e.Height, &e.SessionID); err != nil {
			return nil, fmt.Errorf("reading photo row: %w", err)
		}
		e.TakenAt = time.UnixMilli(taken)
		e.Path = filepath.Join(s.dir, e.Name)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Resolve maps a bare photo name to its path, refusing anything outside the gallery.
func (s *Store) Resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", ErrNotFound
	}
	if !isPhoto(name) {
		return "", ErrNotFound
	}
	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", ErrNotFound
	}
	return path, nil
}

// Delete removes the photo, its thumbnail and its index row.
func (s *Store) Delete(ctx context.Context, name string) error {
	path, err := s.Resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("deleting photo: %w", err)
	}
	os.Remove(s.thumbPath(name))
	if _, err := s.db.ExecContext(ctx, `DELETE FROM photos WHERE name = ?`, name); err != nil {
		return fmt.Errorf("deleting photo row: %w", err)
	}
	return nil
}

// writeJPEG encodes img next to path and renames it into place, so readers never see half a file.
func writeJPEG(img image.Image, path string) error {
	tmp := path + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := imaging.Encode(f, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func isPhoto(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".jpg" || ext == ".jpeg"
}

func newID(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), ulid.Monotonic(rand.Reader, 0)).String()
}

// takenAt recovers the capture time from a photo_<YYYYMMDD_HHMMSS>[_N].jpg name.
func takenAt(name string, fallback time.Time) time.Time {
	stem := strings.TrimSuffix(strings.TrimPrefix(name, "photo_"), filepath.Ext(name))
	if len(stem) >= len(photo.TimestampLayout) {
		if t, err := time.ParseInLocation(photo.TimestampLayout, stem[:len(photo.TimestampLayout)], time.Local); err == nil {
			return t
		}
	}
	return fallback
}

func decodeSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}
