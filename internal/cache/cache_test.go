package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	c := New(0)
	if c == nil {
		t.Fatal("New() returned nil")
	}
	if c.ttl != DefaultTTL {
		t.Errorf("ttl = %v, want %v", c.ttl, DefaultTTL)
	}
}

func TestGetSet(t *testing.T) {
	c := New(time.Minute)
	c.Set("key", []byte("body"))

	val, found := c.Get("key")
	if !found {
		t.Fatal("expected key to be found")
	}
	if string(val.([]byte)) != "body" {
		t.Errorf("got %v, want body", val)
	}
}

func TestGet_Missing(t *testing.T) {
	c := New(time.Minute)
	if _, found := c.Get("missing"); found {
		t.Error("expected missing key to not be found")
	}
}

func TestGet_Expired(t *testing.T) {
	c := New(time.Millisecond)
	c.Set("key", []byte("x"))
	time.Sleep(5 * time.Millisecond)
	if _, found := c.Get("key"); found {
		t.Error("expected expired key to be gone")
	}
}

func TestFlush(t *testing.T) {
	c := New(time.Minute)
	c.Set("key", []byte("value"))
	c.Flush()

	if _, found := c.Get("key"); found {
		t.Error("expected key to be gone after Flush")
	}
	if c.ItemCount() != 0 {
		t.Errorf("ItemCount = %d, want 0", c.ItemCount())
	}
}

func TestSaveAndLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "test.gob")

	c := New(time.Hour)
	c.Set("trending:weekly:", []byte(`[{"url":"a"}]`))

	if err := c.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile: %v", err)
	}

	loaded, err := LoadFromFile(path, time.Hour)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	val, found := loaded.Get("trending:weekly:")
	if !found {
		t.Fatal("expected key after load")
	}
	if string(val.([]byte)) != `[{"url":"a"}]` {
		t.Errorf("got %s", val)
	}
}

func TestLoadFromFile_NonexistentFile(t *testing.T) {
	c, err := LoadFromFile("/nonexistent/path/cache.gob", time.Hour)
	if err != nil {
		t.Fatalf("expected no error for nonexistent file, got %v", err)
	}
	if c == nil {
		t.Fatal("expected fresh cache, got nil")
	}
}

func TestLoadFromFile_CorruptData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.gob")

	if err := os.WriteFile(path, []byte("not valid gob data"), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadFromFile(path, time.Hour)
	if err == nil {
		t.Error("expected a decode error to be reported")
	}
	if c == nil {
		t.Fatal("expected fresh cache, got nil")
	}
	if _, found := c.Get("anything"); found {
		t.Error("expected empty cache from corrupt file")
	}
}
