package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/memblob"

	"github.com/ligustah/picsum/internal/job"
)

func TestResolveDirectoryWithBase(t *testing.T) {
	dim := job.Dimension{Width: 100, Height: 200}

	dir, err := ResolveDirectory(dim, "/data/pics", nil)
	if err != nil {
		t.Fatalf("ResolveDirectory: %v", err)
	}
	if dir != filepath.Join("/data/pics", "100x200") {
		t.Errorf("unexpected directory %s", dir)
	}

	again, err := ResolveDirectory(dim, "/data/pics", nil)
	if err != nil {
		t.Fatalf("ResolveDirectory: %v", err)
	}
	if again != dir {
		t.Errorf("expected identical path on repeat, got %s and %s", dir, again)
	}
}

func TestResolveDirectoryDefaultsToDownloads(t *testing.T) {
	home := func() string { return "/home/alice" }

	dir, err := ResolveDirectory(job.Dimension{Width: 1920, Height: 1080}, "", home)
	if err != nil {
		t.Fatalf("ResolveDirectory: %v", err)
	}
	if dir != filepath.Join("/home/alice", "Downloads", "1920x1080") {
		t.Errorf("unexpected directory %s", dir)
	}
}

func TestResolveDirectoryHomeUnresolved(t *testing.T) {
	home := func() string { return "" }

	_, err := ResolveDirectory(job.Dimension{Width: 1, Height: 1}, "", home)
	if !errors.Is(err, ErrHomeDirectoryUnresolved) {
		t.Errorf("expected ErrHomeDirectoryUnresolved, got %v", err)
	}

	// A base directory makes the home directory irrelevant.
	if _, err := ResolveDirectory(job.Dimension{Width: 1, Height: 1}, "/tmp", home); err != nil {
		t.Errorf("expected no error with explicit base, got %v", err)
	}
}

func TestEnsureDirectoryCreatesMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "100x100")

	EnsureDirectory(path, zerolog.Nop())

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !info.IsDir() {
		t.Error("expected a directory")
	}
}

func TestEnsureDirectoryConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "640x480")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			EnsureDirectory(path, zerolog.Nop())
		}()
	}
	wg.Wait()

	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		t.Fatalf("expected directory to exist: %v", err)
	}
}

func TestEnsureDirectoryFailureIsLoggedNotReturned(t *testing.T) {
	tmp := t.TempDir()
	blocker := filepath.Join(tmp, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	var logs bytes.Buffer
	// Must not panic and has no error to return; the failure only shows up in the log.
	EnsureDirectory(filepath.Join(blocker, "100x100"), zerolog.New(&logs))

	if !strings.Contains(logs.String(), "could not create download directory") {
		t.Errorf("expected warning in log output, got %q", logs.String())
	}
}

func TestLocalStoreWrite(t *testing.T) {
	base := t.TempDir()
	store := NewLocalStore(base, zerolog.Nop())
	dim := job.Dimension{Width: 100, Height: 100}

	path, n, err := store.Write(context.Background(), dim, "image-0.jpg", strings.NewReader("jpegdata"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	if path != filepath.Join(base, "100x100", "image-0.jpg") {
		t.Errorf("unexpected path %s", path)
	}
	if n != 8 {
		t.Errorf("expected 8 bytes written, got %d", n)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "jpegdata" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestLocalStoreDefaultBase(t *testing.T) {
	home := t.TempDir()
	store := NewLocalStore("", zerolog.Nop())
	store.home = func() string { return home }

	path, _, err := store.Write(context.Background(), job.Dimension{Width: 3, Height: 4}, "image-1.jpg", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if path != filepath.Join(home, "Downloads", "3x4", "image-1.jpg") {
		t.Errorf("unexpected path %s", path)
	}
}

type failingReader struct {
	data []byte
	err  error
}

func (r *failingReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, r.err
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

func TestLocalStoreRemovesPartialFile(t *testing.T) {
	base := t.TempDir()
	store := NewLocalStore(base, zerolog.Nop())

	body := &failingReader{data: []byte("half an image"), err: io.ErrUnexpectedEOF}
	_, _, err := store.Write(context.Background(), job.Dimension{Width: 1, Height: 1}, "image-0.jpg", body)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", err)
	}

	if _, err := os.Stat(filepath.Join(base, "1x1", "image-0.jpg")); !os.IsNotExist(err) {
		t.Errorf("expected partial file to be removed, stat err: %v", err)
	}
}

func TestLocalStoreCancelled(t *testing.T) {
	base := t.TempDir()
	store := NewLocalStore(base, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := store.Write(ctx, job.Dimension{Width: 1, Height: 1}, "image-0.jpg", strings.NewReader("data"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(base, "1x1", "image-0.jpg")); !os.IsNotExist(err) {
		t.Errorf("expected no file after cancellation, stat err: %v", err)
	}
}

func TestLocalStoreUnwritableDirectory(t *testing.T) {
	tmp := t.TempDir()
	blocker := filepath.Join(tmp, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	store := NewLocalStore(blocker, zerolog.Nop())
	_, _, err := store.Write(context.Background(), job.Dimension{Width: 1, Height: 1}, "image-0.jpg", strings.NewReader("x"))
	if err == nil {
		t.Fatal("expected write error when directory cannot be created")
	}
}

func TestBucketStoreWrite(t *testing.T) {
	ctx := context.Background()
	bucket, err := blob.OpenBucket(ctx, "mem://")
	if err != nil {
		t.Fatalf("open bucket: %v", err)
	}
	defer bucket.Close()

	store := NewBucketStore(bucket, "runs/1", map[string]string{"run_id": "abc"})
	dim := job.Dimension{Width: 100, Height: 100}

	key, n, err := store.Write(ctx, dim, "image-0.jpg", strings.NewReader("jpegdata"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if key != "runs/1/100x100/image-0.jpg" {
		t.Errorf("unexpected key %s", key)
	}
	if n != 8 {
		t.Errorf("expected 8 bytes, got %d", n)
	}

	attrs, err := bucket.Attributes(ctx, key)
	if err != nil {
		t.Fatalf("Attributes: %v", err)
	}
	if attrs.ContentType != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %s", attrs.ContentType)
	}
	if attrs.Metadata["run_id"] != "abc" {
		t.Errorf("expected run_id metadata, got %v", attrs.Metadata)
	}

	data, err := bucket.ReadAll(ctx, key)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(data) != "jpegdata" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestBucketStoreAbortsFailedWrite(t *testing.T) {
	ctx := context.Background()
	bucket, err := blob.OpenBucket(ctx, "mem://")
	if err != nil {
		t.Fatalf("open bucket: %v", err)
	}
	defer bucket.Close()

	store := NewBucketStore(bucket, "", nil)
	dim := job.Dimension{Width: 1, Height: 1}

	body := &failingReader{data: []byte("partial"), err: io.ErrUnexpectedEOF}
	if _, _, err := store.Write(ctx, dim, "image-0.jpg", body); err == nil {
		t.Fatal("expected error")
	}

	exists, err := bucket.Exists(ctx, store.Key(dim, "image-0.jpg"))
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if exists {
		t.Error("expected aborted object to not exist")
	}
}
