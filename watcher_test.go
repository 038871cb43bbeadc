package main

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestDebouncerCoalesces(t *testing.T) {
	var mu sync.Mutex
	fired := map[string]int{}
	db := newDebouncer(30*time.Millisecond, func(path string) {
		mu.Lock()
		fired[path]++
		mu.Unlock()
	})
	defer db.stop()

	for i := 0; i < 5; i++ {
		db.trigger("a" + docExt)
	}
	db.trigger("b" + docExt)

	time.Sleep(150 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if fired["a"+docExt] != 1 {
		t.Fatalf("burst fired %d times, want 1", fired["a"+docExt])
	}
	if fired["b"+docExt] != 1 {
		t.Fatal("independent path did not fire")
	}
}

func TestDebouncerStopCancelsPending(t *testing.T) {
	var mu sync.Mutex
	count := 0
	db := newDebouncer(50*time.Millisecond, func(string) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	db.trigger("x" + docExt)
	db.stop()

	time.Sleep(120 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if count != 0 {
		t.Fatal("stopped debouncer still fired")
	}
}

func TestWatchOutputDir(t *testing.T) {
	cfg := &Config{Watch: WatchConfig{
		InputDirs: []string{"sprites"},
		Location:  "out",
	}}

	tests := []struct {
		name, path, want string
	}{
		{"top level", filepath.Join("sprites", "hero"+docExt), "out"},
		{"nested", filepath.Join("sprites", "npc", "slime"+docExt), filepath.Join("out", "npc")},
		{"outside watched dirs", filepath.Join("elsewhere", "hero"+docExt), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := watchOutputDir(tt.path, cfg); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsUnderDir(t *testing.T) {
	if !isUnderDir(filepath.Join("a", "b", "c.txt"), "a") {
		t.Fatal("nested path not recognized")
	}
	if isUnderDir(filepath.Join("ab", "c.txt"), "a") {
		t.Fatal("sibling prefix mistaken for containment")
	}
}

func TestIsSpriteUpToDate(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "hero"+docExt)
	sheet := filepath.Join(dir, "hero_sheet.png")

	if err := os.WriteFile(src, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	if isSpriteUpToDate(src, dir) {
		t.Fatal("up to date with no output present")
	}

	if err := os.WriteFile(sheet, []byte("png"), 0644); err != nil {
		t.Fatal(err)
	}
	now := time.Now()
	os.Chtimes(src, now.Add(-time.Hour), now.Add(-time.Hour))
	os.Chtimes(sheet, now, now)
	if !isSpriteUpToDate(src, dir) {
		t.Fatal("fresh output reported stale")
	}

	os.Chtimes(src, now.Add(time.Hour), now.Add(time.Hour))
	if isSpriteUpToDate(src, dir) {
		t.Fatal("stale output reported fresh")
	}
}

func TestRemoveEmptyParents(t *testing.T) {
	root := t.TempDir()
	leaf := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(leaf, 0755); err != nil {
		t.Fatal(err)
	}

	removeEmptyParents(leaf, root)
	if _, err := os.Stat(filepath.Join(root, "a")); !os.IsNotExist(err) {
		t.Fatal("empty parent chain not removed")
	}
	if _, err := os.Stat(root); err != nil {
		t.Fatal("removal crossed the output root")
	}

	// Non-empty directories stop the walk.
	leaf2 := filepath.Join(root, "c", "d")
	os.MkdirAll(leaf2, 0755)
	os.WriteFile(filepath.Join(root, "c", "keep.txt"), []byte("x"), 0644)
	removeEmptyParents(leaf2, root)
	if _, err := os.Stat(filepath.Join(root, "c")); err != nil {
		t.Fatal("non-empty parent removed")
	}
	if _, err := os.Stat(leaf2); !os.IsNotExist(err) {
		t.Fatal("empty leaf kept")
	}
}
