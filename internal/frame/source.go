package frame

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/f3rmion/hanzicam/internal/hanzi"
	"github.com/fsnotify/fsnotify"
)

// ErrNoFrame is returned when a source has not produced any frame yet.
var ErrNoFrame = errors.New("no frame available")

// Source supplies still images on demand.
type Source interface {
	Snapshot(ctx context.Context, opts Options) (hanzi.Image, error)
}

// FileSource snapshots a single image file.
type FileSource struct {
	Path string
}

// Snapshot implements Source.
func (f FileSource) Snapshot(ctx context.Context, opts Options) (hanzi.Image, error) {
	if err := ctx.Err(); err != nil {
		return hanzi.Image{}, err
	}
	return snapshotFile(f.Path, opts)
}

func snapshotFile(path string, opts Options) (hanzi.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return hanzi.Image{}, fmt.Errorf("reading frame: %w", err)
	}
	img, err := Decode(data)
	if err != nil {
		return hanzi.Image{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return Encode(img, opts)
}

// DirStats reports how frames moved through a DirSource.
type DirStats struct {
	Published uint64 // Frames seen
	Taken     uint64 // Snapshots served
	Dropped   uint64 // Frames replaced before any snapshot used them
}

// DirSource follows a directory a camera tool writes frames into. Only the
// newest frame is kept: a new file replaces an unconsumed one.
type DirSource struct {
	dir     string
	watcher *fsnotify.Watcher
	log     *slog.Logger

	mu       sync.Mutex
	latest   string
	consumed bool
	stats    DirStats
}

// WatchDir starts watching dir. The newest image already present becomes the
// current frame. Call Run to process events and Close when done.
func WatchDir(dir string, log *slog.Logger) (*DirSource, error) {
	if log == nil {
		log = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	d := &DirSource{dir: dir, watcher: watcher, log: log, consumed: true}
	if newest, err := newestImage(dir); err == nil && newest != "" {
		d.publish(newest)
	}
	return d, nil
}

// Run processes file events until ctx is done or the watcher is closed.
func (d *DirSource) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-d.watcher.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) {
				if isImage(ev.Name) {
					d.publish(ev.Name)
				}
			}
		case err, ok := <-d.watcher.Errors:
			if !ok {
				return nil
			}
			d.log.Warn("frame watcher error", slog.String("dir", d.dir), slog.Any("error", err))
		}
	}
}

// Snapshot implements Source using the newest frame.
func (d *DirSource) Snapshot(ctx context.Context, opts Options) (hanzi.Image, error) {
	if err := ctx.Err(); err != nil {
		return hanzi.Image{}, err
	}

	d.mu.Lock()
	path := d.latest
	if path != "" {
		d.consumed = true
		d.stats.Taken++
	}
	d.mu.Unlock()

	if path == "" {
		return hanzi.Image{}, ErrNoFrame
	}
	return snapshotFile(path, opts)
}

// Stats returns a snapshot of the frame counters.
func (d *DirSource) Stats() DirStats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// Close stops watching.
func (d *DirSource) Close() error {
	return d.watcher.Close()
}

func (d *DirSource) publish(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.consumed && d.latest != path {
		d.stats.Dropped++
	}
	d.latest = path
	d.consumed = false
	d.stats.Published++
}

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".bmp": true,
}

func isImage(path string) bool {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}

func newestImage(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var newest string
	var newestMod int64
	for _, e := range entries {
		if e.IsDir() || !isImage(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if mod := info.ModTime().UnixNano(); newest == "" || mod > newestMod {
			newest, newestMod = filepath.Join(dir, e.Name()), mod
		}
	}
	return newest, nil
}
