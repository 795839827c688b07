package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore - хранилище документов в памяти процесса
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Fields
	bus         *LocalBus
}

// NewMemoryStore создает новый экземпляр MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]Fields),
		bus:         NewLocalBus(),
	}
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	fields, ok := s.collections[collection][id]
	if !ok {
		return Document{}, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	return Document{ID: id, Fields: fields.Clone()}, nil
}

func (s *MemoryStore) Create(ctx context.Context, collection, id string, fields Fields) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if id == "" {
		id = uuid.NewString()
	}

	s.mu.Lock()
	docs, ok := s.collections[collection]
	if !ok {
		docs = make(map[string]Fields)
		s.collections[collection] = docs
	}
	if _, exists := docs[id]; exists {
		s.mu.Unlock()
		return "", fmt.Errorf("%s/%s: %w", collection, id, ErrAlreadyExists)
	}
	docs[id] = fields.Clone()
	s.mu.Unlock()

	s.bus.Publish(ctx, collection)
	return id, nil
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, fields Fields, preconditions ...Predicate) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	current, ok := s.collections[collection][id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	if !Matches(current, preconditions) {
		s.mu.Unlock()
		return fmt.Errorf("%s/%s: %w", collection, id, ErrPreconditionFailed)
	}

	merged := current.Clone()
	for k, v := range fields {
		merged[k] = cloneValue(v)
	}
	s.collections[collection][id] = merged
	s.mu.Unlock()

	s.bus.Publish(ctx, collection)
	return nil
}

func (s *MemoryStore) Query(ctx context.Context, q Query) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	docs := make([]Document, 0)
	for id, fields := range s.collections[q.Collection] {
		if Matches(fields, q.Where) {
			docs = append(docs, Document{ID: id, Fields: fields.Clone()})
		}
	}
	s.mu.RUnlock()

	sortDocuments(docs, q.OrderBy)
	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}
	return docs, nil
}

func (s *MemoryStore) Subscribe(ctx context.Context, q Query) (*Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return NewStream(ctx, s.bus, q, s.Query), nil
}
