package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"argbind/internal/diag"
	"argbind/internal/funcinfo"
	"argbind/internal/project"
)

// Bump when ProgramPayload changes shape.
const cacheSchemaVersion uint16 = 1

// ProgramCache stores decoded programs on disk keyed by content digest.
// Safe for concurrent use.
type ProgramCache struct {
	mu  sync.RWMutex
	dir string
}

// ProgramPayload is the cached result of a successful decode.
type ProgramPayload struct {
	Schema    uint16
	Source    string
	Functions []funcinfo.FunctionInfo
	// Warnings raised by the decode that produced the payload.
	Warnings []diag.Diagnostic
}

// DefaultCacheDir returns $XDG_CACHE_HOME/argbind or ~/.cache/argbind.
func DefaultCacheDir() (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, "argbind"), nil
}

// OpenProgramCache opens (and creates) a cache rooted at dir. An empty dir
// selects DefaultCacheDir.
func OpenProgramCache(dir string) (*ProgramCache, error) {
	if dir == "" {
		var err error
		if dir, err = DefaultCacheDir(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &ProgramCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *ProgramCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

// Key derives the cache key for file content decoded with the given mode.
// Strict and lenient decodes produce different results, so they never share
// an entry.
func Key(content []byte, strict bool) project.Digest {
	mode := []byte("lenient")
	if strict {
		mode = []byte("strict")
	}
	schema := []byte{byte(cacheSchemaVersion >> 8), byte(cacheSchemaVersion)}
	return project.Combine(project.HashBytes(content), schema, []byte(funcinfo.WireVersion), mode)
}

func (c *ProgramCache) pathFor(key project.Digest) string {
	return filepath.Join(c.dir, "programs", key.String()+".mp")
}

// Put writes payload under key, replacing any previous entry atomically.
func (c *ProgramCache) Put(key project.Digest, payload *ProgramPayload) (err error) {
	if c == nil || payload == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()

	payload.Schema = cacheSchemaVersion
	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads the payload stored under key. A missing entry or an entry written
// by another schema is a miss, not an error.
func (c *ProgramCache) Get(key project.Digest) (*ProgramPayload, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var out ProgramPayload
	if err := msgpack.NewDecoder(f).Decode(&out); err != nil {
		return nil, false, fmt.Errorf("corrupt cache entry %s: %w", key, err)
	}
	if out.Schema != cacheSchemaVersion {
		return nil, false, nil
	}
	return &out, true, nil
}

// DropAll removes every cached program. The directory itself is recreated.
func (c *ProgramCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return os.MkdirAll(c.dir, 0o755)
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}
