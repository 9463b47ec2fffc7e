package state

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/oshokin/bedtime/internal/config"
	"github.com/oshokin/bedtime/internal/logger"
)

// TriggeredKey is the key holding the triggered flag.
const TriggeredKey = "triggered"

var (
	// ErrNotFound is returned by a KV when the key does not exist yet.
	ErrNotFound = errors.New("key not found")
	// errUnknownBackend is returned by Open for unsupported backends.
	errUnknownBackend = errors.New("unknown state backend")
)

// KV is a durable string key/value backend.
type KV interface {
	// Get returns the value for key or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Put stores the value and returns only once it is durable.
	Put(ctx context.Context, key, value string) error
	// Close releases the backend.
	Close() error
}

// Store exposes the triggered flag on top of a KV backend.
type Store struct {
	// kv is the durable backend.
	kv KV
}

// NewStore wraps kv.
func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// Open opens the backend named by backend at path and makes sure the
// triggered flag exists.
func Open(ctx context.Context, backend, path string) (*Store, error) {
	var (
		kv  KV
		err error
	)

	switch backend {
	case config.StateBackendSQLite, "":
		kv, err = OpenSQLite(path)
	case config.StateBackendFile:
		kv = NewFileKV(path)
	default:
		return nil, fmt.Errorf("%w: %s", errUnknownBackend, backend)
	}

	if err != nil {
		return nil, err
	}

	s := NewStore(kv)
	if err = s.Init(ctx); err != nil {
		_ = kv.Close()

		return nil, err
	}

	return s, nil
}

// Init writes the flag as false when it is absent.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.kv.Get(ctx, TriggeredKey)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return s.SetTriggered(ctx, false)
	default:
		return fmt.Errorf("read %s: %w", TriggeredKey, err)
	}
}

// Triggered reports the persisted flag. Missing keys, read errors and
// unparsable values all count as false; errors are logged.
func (s *Store) Triggered(ctx context.Context) bool {
	raw, err := s.kv.Get(ctx, TriggeredKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.ErrorKV(ctx, "Failed to read triggered flag", "error", err)
		}

		return false
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		logger.ErrorKV(ctx, "Malformed triggered flag", "value", raw, "error", err)

		return false
	}

	return v
}

// SetTriggered durably persists the flag as "true" or "false".
func (s *Store) SetTriggered(ctx context.Context, v bool) error {
	if err := s.kv.Put(ctx, TriggeredKey, strconv.FormatBool(v)); err != nil {
		return fmt.Errorf("persist %s: %w", TriggeredKey, err)
	}

	return nil
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.kv.Close()
}
