package gallery

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/karrick/godirwalk"
	"github.com/otiai10/copy"

	"github.com/dixieflatline76/Cheese/util/log"
)

// thumbDir holds cached thumbnails inside the photos directory.
const thumbDir = ".thumbs"

// Reindex brings the index in line with the files on disk: photos copied in by hand are
// added, rows whose file is gone are removed.
func (s *Store) Reindex(ctx context.Context) (added, removed int, err error) {
	onDisk := map[string]string{}
	root := filepath.Clean(s.dir)
	err = godirwalk.Walk(root, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if path == root {
				return nil
			}
			if de.IsDir() {
				// Only the top level holds photos.
				return godirwalk.SkipThis
			}
			name := de.Name()
			if strings.HasPrefix(name, ".") || !isPhoto(name) {
				return nil
			}
			onDisk[name] = path
			return nil
		},
		Unsorted: true,
	})
	if err != nil {
		return 0, 0, fmt.Errorf("scanning %s: %w", s.dir, err)
	}

	known := map[string]bool{}
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM photos`)
	if err != nil {
		return 0, 0, fmt.Errorf("reading index: %w", err)
	}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return 0, 0, err
		}
		known[name] = true
	}
	rows.Close()

	for name := range known {
		if _, ok := onDisk[name]; ok {
			continue
		}
		if _, err := s.db.ExecContext(ctx, `DELETE FROM photos WHERE name = ?`, name); err != nil {
			return added, removed, fmt.Errorf("removing %s from index: %w", name, err)
		}
		removed++
	}

	for name, path := range onDisk {
		if known[name] {
			continue
		}
		w, h, err := decodeSize(path)
		if err != nil {
			log.Printf("Skipping unreadable photo %s: %v", path, err)
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		taken := takenAt(name, info.ModTime())
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO photos (id, name, taken_at, framed, width, height) VALUES (?, ?, ?, 0, ?, ?)`,
			newID(taken), name, taken.UnixMilli(), w, h)
		if err != nil {
			return added, removed, fmt.Errorf("indexing %s: %w", name, err)
		}
		added++
	}

	if added > 0 || removed > 0 {
		log.Printf("Gallery reindexed: %d added, %d removed", added, removed)
	}
	return added, removed, nil
}

func (s *Store) thumbPath(name string) string {
	return filepath.Join(s.dir, thumbDir, name)
}

// Thumbnail returns a w×h cover-cropped thumbnail of the named photo, cached on disk.
func (s *Store) Thumbnail(name string, w, h int) (image.Image, error) {
	path, err := s.Resolve(name)
	if err != nil {
		return nil, err
	}

	thumb := s.thumbPath(name)
	if ti, err := os.Stat(thumb); err == nil {
		if pi, err := os.Stat(path); err == nil && !ti.ModTime().Before(pi.ModTime()) {
			if img, err := imaging.Open(thumb); err == nil && img.Bounds().Dx() == w && img.Bounds().Dy() == h {
				return img, nil
			}
		}
	}

	src, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	img := imaging.Thumbnail(src, w, h, imaging.Box)

	if err := os.MkdirAll(filepath.Dir(thumb), 0755); err == nil {
		if err := writeJPEG(img, thumb); err != nil {
			log.Printf("Failed to cache thumbnail %s: %v", thumb, err)
		}
	}
	return img, nil
}

// Export copies every photo into dest, e.g. a USB stick at the end of an event.
// Files already present in dest are left alone. It returns the number of photos copied.
func (s *Store) Export(ctx context.Context, dest string) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("reading photos: %w", err)
	}
	if err := os.MkdirAll(dest, 0755); err != nil {
		return 0, fmt.Errorf("creating export directory: %w", err)
	}

	copied := 0
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return copied, err
		}
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !isPhoto(name) {
			continue
		}
		target := filepath.Join(dest, name)
		if _, err := os.Stat(target); err == nil {
			continue
		} else if !errors.Is(err, os.ErrNotExist) {
			return copied, err
		}
		if err := copy.Copy(filepath.Join(s.dir, name), target, copy.Options{PreserveTimes: true}); err != nil {
			return copied, fmt.Errorf("copying %s: %w", name, err)
		}
		copied++
	}
	return copied, nil
}
