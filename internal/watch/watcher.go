package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/docmanual/internal/config"
	derrors "git.home.luguber.info/inful/docmanual/internal/foundation/errors"
	"git.home.luguber.info/inful/docmanual/internal/logfields"
	"git.home.luguber.info/inful/docmanual/internal/retry"
)

// RebuildFunc performs one rebuild. Errors are logged and the watcher keeps
// running.
type RebuildFunc func(ctx context.Context, trigger Trigger) error

// Targets lists what to watch: individual files and recursive directories.
type Targets struct {
	Files []string
	Dirs  []string
}

// TargetsFor returns the inputs of a manual build: every configured
// document, the identifier index, the config file itself and the template
// override directory.
func TargetsFor(cfg *config.Config, configPath string) Targets {
	var t Targets
	t.Files = append(t.Files, cfg.Manual.Paths()...)
	if cfg.Identifiers != "" {
		t.Files = append(t.Files, cfg.Identifiers)
	}
	if configPath != "" {
		t.Files = append(t.Files, configPath)
	}
	if cfg.Templates != "" {
		t.Dirs = append(t.Dirs, cfg.Templates)
	}
	return t
}

// Options tune a Watcher.
type Options struct {
	Debounce        time.Duration
	MaxDelay        time.Duration // defaults to ten debounce windows
	RebuildInterval time.Duration // 0 disables scheduled rebuilds
	Retry           retry.Policy  // zero value never retries
}

// Watcher drives rebuilds from file events and an optional schedule.
type Watcher struct {
	files   map[string]bool
	dirs    []string
	opts    Options
	rebuild RebuildFunc
}

// New validates targets and returns a Watcher.
func New(targets Targets, opts Options, rebuild RebuildFunc) (*Watcher, error) {
	if rebuild == nil {
		return nil, derrors.ValidationError("rebuild function is required").Build()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 300 * time.Millisecond
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 10 * opts.Debounce
	}
	w := &Watcher{files: make(map[string]bool), opts: opts, rebuild: rebuild}
	for _, f := range targets.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, derrors.WrapError(err, derrors.CategoryFileSystem, "resolve watch path").
				WithContext("path", f).
				Build()
		}
		w.files[abs] = true
	}
	for _, d := range targets.Dirs {
		abs, err := filepath.Abs(d)
		if err != nil {
			return nil, derrors.WrapError(err, derrors.CategoryFileSystem, "resolve watch path").
				WithContext("path", d).
				Build()
		}
		w.dirs = append(w.dirs, abs)
	}
	if len(w.files) == 0 && len(w.dirs) == 0 {
		return nil, derrors.ValidationError("nothing to watch").Build()
	}
	return w, nil
}

// Run watches until ctx is done. The first rebuild is the caller's job.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryRuntime, "create file watcher").Build()
	}
	defer func() { _ = fsw.Close() }()
	w.addAll(fsw)

	deb, err := NewDebouncer(w.opts.Debounce, w.opts.MaxDelay)
	if err != nil {
		return err
	}
	go deb.Run(ctx)

	if w.opts.RebuildInterval > 0 {
		sched, err := NewScheduler()
		if err != nil {
			return err
		}
		if _, err := sched.ScheduleEvery("scheduled-rebuild", w.opts.RebuildInterval, func() {
			deb.Request("schedule")
		}); err != nil {
			return err
		}
		sched.Start()
		defer func() { _ = sched.Stop() }()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.runWorker(ctx, deb.C())
	}()

	slog.Info("Watching manual inputs",
		logfields.Count(len(w.files)+len(w.dirs)),
		slog.Duration("debounce", w.opts.Debounce))

	for {
		select {
		case <-ctx.Done():
			<-done
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(fsw, ev, deb)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(err))
		}
	}
}

// runWorker executes rebuilds sequentially. Because the trigger channel holds
// one value, at most one follow-up waits behind a running rebuild.
func (w *Watcher) runWorker(ctx context.Context, triggers <-chan Trigger) {
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-triggers:
			start := time.Now()
			slog.Info("Change detected; rebuilding manual",
				slog.String("reason", t.LastReason),
				logfields.Count(t.RequestCount))
			err := w.opts.Retry.Do(ctx, func(ctx context.Context) error {
				return w.rebuild(ctx, t)
			}, func(attempt int, delay time.Duration, err error) {
				slog.Info("Rebuild failed transiently; retrying",
					slog.Int("attempt", attempt),
					slog.Duration("delay", delay),
					logfields.Error(err))
			})
			if err != nil {
				slog.Warn("Rebuild failed", logfields.Error(err), logfields.Since(start))
				continue
			}
			slog.Debug("Rebuild finished", logfields.Since(start))
		}
	}
}

func (w *Watcher) addAll(fsw *fsnotify.Watcher) {
	parents := make(map[string]bool)
	for f := range w.files {
		parents[filepath.Dir(f)] = true
	}
	for dir := range parents {
		if err := fsw.Add(dir); err != nil {
			slog.Warn("Watch add failed", logfields.Path(dir), logfields.Error(err))
		}
	}
	for _, d := range w.dirs {
		addDirsRecursive(fsw, d)
	}
}

func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, ev fsnotify.Event, deb *Debouncer) {
	if shouldIgnoreEvent(ev.Name) {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() && w.underDirs(ev.Name) {
			addDirsRecursive(fsw, ev.Name)
		}
	}
	if !w.interesting(ev.Name) {
		return
	}
	slog.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	deb.Request(ev.Name)
}

// interesting reports whether path is a watched file or lies below a
// watched directory.
func (w *Watcher) interesting(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return w.files[abs] || w.underDirs(abs)
}

func (w *Watcher) underDirs(path string) bool {
	for _, d := range w.dirs {
		if path == d || strings.HasPrefix(path, d+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func addDirsRecursive(fsw *fsnotify.Watcher, root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := fsw.Add(path); err != nil {
				slog.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}

// shouldIgnoreEvent returns true for editor temp, swap and hidden files.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasPrefix(base, "."):
		return true
	case strings.HasSuffix(base, "~"), strings.HasSuffix(base, ".swp"), strings.HasSuffix(base, ".swx"):
		return true
	case strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	case base == "Thumbs.db":
		return true
	}
	return false
}
