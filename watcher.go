package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debouncer coalesces rapid event bursts into a single callback per file.
type debouncer struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	delay  time.Duration
	onFire func(path string)
}

func newDebouncer(delay time.Duration, onFire func(path string)) *debouncer {
	return &debouncer{
		timers: make(map[string]*time.Timer),
		delay:  delay,
		onFire: onFire,
	}
}

func (d *debouncer) trigger(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[path]; ok {
		t.Reset(d.delay)
		return
	}
	d.timers[path] = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		delete(d.timers, path)
		d.mu.Unlock()
		d.onFire(path)
	})
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for path, t := range d.timers {
		t.Stop()
		delete(d.timers, path)
	}
}

func runWatchMode(cfg *Config, opts ExportOptions, strict bool) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	for _, dir := range cfg.Watch.InputDirs {
		if err := watchRecursive(w, dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		fmt.Printf("Watching: %s\n", dir)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nShutting down...")
		cancel()
	}()

	sem := make(chan struct{}, runtime.GOMAXPROCS(0))
	var wg sync.WaitGroup

	db := newDebouncer(cfg.Watch.Debounce(), func(path string) {
		dir := watchOutputDir(path, cfg)
		if dir == "" || isSpriteUpToDate(path, dir) {
			return
		}
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer func() { <-sem; wg.Done() }()
			renderWatched(path, dir, opts, strict)
		}()
	})
	defer db.stop()

	initialScan(cfg, opts, strict)

	fmt.Println("Daemon ready. Waiting for file changes...")

	eventLoop(ctx, w, db, cfg)

	fmt.Println("Waiting for in-flight renders...")
	wg.Wait()
	fmt.Println("Shutdown complete.")
	return nil
}

func watchRecursive(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}

// initialScan renders stale documents in the watched directories at startup.
func initialScan(cfg *Config, opts ExportOptions, strict bool) {
	sem := make(chan struct{}, runtime.GOMAXPROCS(0))
	var wg sync.WaitGroup

	for _, dir := range cfg.Watch.InputDirs {
		filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() || !strings.HasSuffix(path, docExt) {
				return nil
			}
			outDir := watchOutputDir(path, cfg)
			if outDir == "" || isSpriteUpToDate(path, outDir) {
				return nil
			}
			wg.Add(1)
			sem <- struct{}{}
			go func() {
				defer func() { <-sem; wg.Done() }()
				renderWatched(path, outDir, opts, strict)
			}()
			return nil
		})
	}
	wg.Wait()
}

func eventLoop(ctx context.Context, w *fsnotify.Watcher, db *debouncer, cfg *Config) {
	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Remove) {
				if strings.HasSuffix(ev.Name, docExt) {
					handleDeletion(ev.Name, cfg)
				}
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					watchRecursive(w, ev.Name)
					continue
				}
			}
			// Atomic file replacement (common on macOS/kqueue): verify the
			// renamed path still exists and re-add parent for inode tracking.
			if ev.Has(fsnotify.Rename) {
				if _, err := os.Stat(ev.Name); err != nil {
					continue
				}
				w.Add(filepath.Dir(ev.Name))
			}
			if strings.HasSuffix(ev.Name, docExt) {
				db.trigger(ev.Name)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "Watcher error: %v\n", err)
		}
	}
}

// watchOutputDir maps a watched document to its output directory,
// mirroring the source directory structure under the configured location.
func watchOutputDir(path string, cfg *Config) string {
	for _, dir := range cfg.Watch.InputDirs {
		if !isUnderDir(path, dir) {
			continue
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return ""
		}
		return filepath.Join(cfg.Watch.Location, filepath.Dir(rel))
	}
	return ""
}

func isUnderDir(path, dir string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	return strings.HasPrefix(absPath, absDir+string(filepath.Separator)) || absPath == absDir
}

// isSpriteUpToDate compares the source mtime against the sheet output.
func isSpriteUpToDate(path, outDir string) bool {
	sheet := filepath.Join(outDir, spriteName(path)+"_sheet.png")
	outInfo, err := os.Stat(sheet)
	if err != nil {
		return false
	}
	inInfo, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !outInfo.ModTime().Before(inInfo.ModTime())
}

func renderWatched(path, outDir string, opts ExportOptions, strict bool) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating directory '%s': %v\n", outDir, err)
		return
	}
	start := time.Now()
	if err := renderFile(path, outDir, opts, strict); err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering '%s': %v\n", path, err)
		return
	}
	fmt.Printf("Rendered '%s' -> '%s' (%.2fs)\n", filepath.Base(path), outDir, time.Since(start).Seconds())
}

// handleDeletion removes the outputs of a deleted document and cleans up
// empty parent directories up to the output root.
func handleDeletion(path string, cfg *Config) {
	outDir := watchOutputDir(path, cfg)
	if outDir == "" {
		return
	}
	name := spriteName(path)
	removed := false
	for _, out := range []string{
		name + "_sheet.png", name + "_meta.json",
		name + ".gif", name + ".svg", name + "_sheet.pdf",
	} {
		full := filepath.Join(outDir, out)
		if _, err := os.Stat(full); err != nil {
			continue
		}
		if err := os.Remove(full); err != nil {
			fmt.Fprintf(os.Stderr, "Error removing output '%s': %v\n", full, err)
			continue
		}
		removed = true
	}
	if removed {
		fmt.Printf("Removed outputs for '%s' (source deleted)\n", filepath.Base(path))
		removeEmptyParents(outDir, cfg.Watch.Location)
	}
}

func removeEmptyParents(dir, stopDir string) {
	absStop, err := filepath.Abs(stopDir)
	if err != nil {
		return
	}
	for {
		absDir, err := filepath.Abs(dir)
		if err != nil || absDir == absStop {
			return
		}
		if !strings.HasPrefix(absDir, absStop+string(filepath.Separator)) {
			return
		}
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}
