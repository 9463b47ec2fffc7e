package state

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/bedtime/internal/config"
)

// FileKV persists keys as a JSON object on disk.
// JSON is produced and consumed via protojson over a structpb.Struct.
type FileKV struct {
	// path is the filesystem location of the JSON file.
	path string
	// mu protects the read-modify-write cycle of Put.
	mu sync.Mutex
}

// NewFileKV creates a backend that reads/writes JSON at the provided path.
func NewFileKV(path string) *FileKV {
	return &FileKV{
		path: filepath.Clean(path),
	}
}

// Get reads the file and returns the value of key.
func (f *FileKV) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fields, err := f.load()
	if err != nil {
		return "", err
	}

	v, ok := fields[key]
	if !ok {
		return "", ErrNotFound
	}

	return v.GetStringValue(), nil
}

// Put writes key into the file. The new content is written to a temporary
// file, synced and renamed over the old one, so a crash leaves either the
// old or the new content.
func (f *FileKV) Put(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fields, err := f.load()
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	if fields == nil {
		fields = make(map[string]*structpb.Value, 1)
	}

	fields[key] = structpb.NewStringValue(value)

	data, err := protojson.MarshalOptions{Multiline: true}.Marshal(&structpb.Struct{Fields: fields})
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	return writeFileSync(f.path, data)
}

// Close is a no-op; the file is opened per operation.
func (f *FileKV) Close() error {
	return nil
}

// load returns the stored fields or ErrNotFound when the file is absent.
func (f *FileKV) load() (map[string]*structpb.Value, error) {
	contents, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read state file: %w", err)
	}

	var st structpb.Struct
	if err = protojson.Unmarshal(contents, &st); err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}

	return st.GetFields(), nil
}

func writeFileSync(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}

	tmpName := tmp.Name()

	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("write state file: %w", err)
	}

	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("sync state file: %w", err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close state file: %w", err)
	}

	if err = os.Chmod(tmpName, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("chmod state file: %w", err)
	}

	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename state file: %w", err)
	}

	// Persist the rename itself.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}

	return nil
}
