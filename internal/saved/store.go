package saved

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	jsoniter "github.com/json-iterator/go"
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// Store is the saved list under one key. Every operation reads and rewrites
// the whole sequence; a per-key mutex shared by every Store derived from the
// same NewStore call serialises that within a process only.
type Store struct {
	backend Backend
	key     string
	logger  *slog.Logger
	locks   *sync.Map // key -> *sync.Mutex
	mu      *sync.Mutex
}

// NewStore returns a Store on DefaultKey.
func NewStore(backend Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	locks := &sync.Map{}
	return &Store{backend: backend, key: DefaultKey, logger: logger, locks: locks, mu: lockFor(locks, DefaultKey)}
}

// ForUser returns a Store on the same backend scoped to userID. Stores for
// the same user share one lock.
func (s *Store) ForUser(userID string) *Store {
	key := UserKey(userID)
	return &Store{backend: s.backend, key: key, logger: s.logger, locks: s.locks, mu: lockFor(s.locks, key)}
}

func lockFor(locks *sync.Map, key string) *sync.Mutex {
	mu, _ := locks.LoadOrStore(key, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (s *Store) Key() string {
	return s.key
}

// Load returns the saved records, newest first. A list that cannot be
// decoded is reported as empty.
func (s *Store) Load(ctx context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

// LoadStrict is Load without the corruption fallback.
func (s *Store) LoadStrict(ctx context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err := s.backend.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("read saved list: %w", err)
	}
	if !ok || len(raw) == 0 {
		return []Record{}, nil
	}
	return decode(raw)
}

// Save puts rec at the front of the list unless its id is already saved.
func (s *Store) Save(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.loadLocked(ctx)
	if err != nil {
		return err
	}
	for _, r := range current {
		if r.ID == rec.ID {
			return nil
		}
	}
	next := make([]Record, 0, len(current)+1)
	next = append(next, rec)
	next = append(next, current...)
	return s.persist(ctx, next)
}

// Remove drops the record with the given id. Removing an unknown id is not
// an error.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.loadLocked(ctx)
	if err != nil {
		return err
	}
	next := make([]Record, 0, len(current))
	for _, r := range current {
		if r.ID != id {
			next = append(next, r)
		}
	}
	return s.persist(ctx, next)
}

// Clear deletes the stored list.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("clear saved list: %w", err)
	}
	return nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	list, err := s.Load(ctx)
	if err != nil {
		return 0, err
	}
	return len(list), nil
}

// Contains reports whether id is on the list.
func (s *Store) Contains(ctx context.Context, id string) (bool, error) {
	list, err := s.Load(ctx)
	if err != nil {
		return false, err
	}
	for _, r := range list {
		if r.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) loadLocked(ctx context.Context) ([]Record, error) {
	raw, ok, err := s.backend.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("read saved list: %w", err)
	}
	if !ok || len(raw) == 0 {
		return []Record{}, nil
	}

	list, err := decode(raw)
	if err != nil {
		s.logger.Warn("saved list unreadable, treating as empty", "key", s.key, "error", err)
		return []Record{}, nil
	}
	return list, nil
}

func (s *Store) persist(ctx context.Context, list []Record) error {
	raw, err := codec.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode saved list: %w", err)
	}
	if err := s.backend.Set(ctx, s.key, raw); err != nil {
		return fmt.Errorf("write saved list: %w", err)
	}
	return nil
}

// decode accepts only a JSON array of records.
func decode(raw []byte) ([]Record, error) {
	if codec.Get(raw).ValueType() != jsoniter.ArrayValue {
		return nil, ErrCorrupt
	}
	var list []Record
	if err := codec.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if list == nil {
		list = []Record{}
	}
	return list, nil
}
