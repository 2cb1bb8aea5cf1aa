// Package watch keeps a composed preview file in sync with three source
// files in a directory.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/varunrmantri23/nexacode/internal/adapters/fs"
	"github.com/varunrmantri23/nexacode/internal/clock"
	"github.com/varunrmantri23/nexacode/internal/core"
	"github.com/varunrmantri23/nexacode/internal/preview"
)

// Files maps the watched file names to their buffers.
var Files = map[string]core.BufferKind{
	"index.html": core.BufferMarkup,
	"style.css":  core.BufferStyles,
	"script.js":  core.BufferScript,
}

const DefaultOutput = "preview.html"

type Options struct {
	// Output is the composed file. Relative paths are resolved against the
	// watched directory.
	Output     string
	Quiescence time.Duration
	Clock      clock.Clock
	FS         fs.FileSystem
	Logger     *zap.Logger
	// OnWrite is called after every write of the output file.
	OnWrite func(path string, version uint64)
}

type Watcher struct {
	dir      string
	output   string
	fs       fs.FileSystem
	logger   *zap.Logger
	onWrite  func(string, uint64)
	composer *preview.Composer

	mu      sync.Mutex
	written uint64
}

func New(dir string, opts Options) *Watcher {
	if opts.Output == "" {
		opts.Output = DefaultOutput
	}
	if !filepath.IsAbs(opts.Output) {
		opts.Output = filepath.Join(dir, opts.Output)
	}
	if opts.FS == nil {
		opts.FS = fs.NewOSFileSystem()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}

	w := &Watcher{
		dir:     dir,
		output:  opts.Output,
		fs:      opts.FS,
		logger:  opts.Logger,
		onWrite: opts.OnWrite,
	}
	w.composer = preview.New(
		preview.WithQuiescence(opts.Quiescence),
		preview.WithClock(opts.Clock),
		preview.WithLogger(opts.Logger),
		preview.OnChange(w.write),
	)
	return w
}

func (w *Watcher) Output() string {
	return w.output
}

// Load reads all three source files, composes them at once and writes the
// output.
func (w *Watcher) Load() error {
	var src core.Sources
	for name, kind := range Files {
		value, err := fs.ReadOptional(w.fs, filepath.Join(w.dir, name))
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		src.Set(kind, value)
	}

	w.composer.Seed(src)
	if doc, version := w.composer.Snapshot(); version == 1 {
		// Seeding empty sources does not recompute; write the shell anyway.
		w.write(doc, version)
	}
	return nil
}

// Run watches the directory until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.composer.Close()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !isWatchEvent(event.Op) {
		return
	}
	kind, ok := Files[filepath.Base(event.Name)]
	if !ok {
		return
	}

	value, err := fs.ReadOptional(w.fs, event.Name)
	if err != nil {
		w.logger.Warn("read source", zap.String("path", event.Name), zap.Error(err))
		return
	}
	w.logger.Debug("source changed", zap.Stringer("buffer", kind), zap.Int("bytes", len(value)))
	w.composer.Update(kind, value)
}

// write persists doc unless a newer version already reached the output.
// Composer callbacks can arrive out of order when buffers settle together.
func (w *Watcher) write(doc string, version uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if version <= w.written {
		w.logger.Debug("stale preview dropped", zap.Uint64("version", version), zap.Uint64("written", w.written))
		return
	}

	if err := w.fs.WriteFile(w.output, []byte(doc), 0o644); err != nil {
		w.logger.Error("write preview", zap.String("path", w.output), zap.Error(err))
		return
	}
	w.written = version
	w.logger.Debug("preview written", zap.String("path", w.output), zap.Uint64("version", version))
	if w.onWrite != nil {
		w.onWrite(w.output, version)
	}
}

func isWatchEvent(op fsnotify.Op) bool {
	return op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
}
