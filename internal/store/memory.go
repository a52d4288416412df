package store

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"certificate-automation/certifier-portal/certifier-portal-backend/internal/common"
)

// MemoryStore keeps bson-encoded documents in process memory. Documents get
// ObjectID ids like they would in MongoDB, so the same models decode from both.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

type memoryCollection struct {
	order []string
	docs  map[string]bson.Raw
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memoryCollection)}
}

// lookup never creates a collection, so it is safe under the read lock.
func (s *MemoryStore) lookup(name string) *memoryCollection {
	if c, ok := s.collections[name]; ok {
		return c
	}
	return &memoryCollection{}
}

func (s *MemoryStore) collection(name string) *memoryCollection {
	c, ok := s.collections[name]
	if !ok {
		c = &memoryCollection{docs: make(map[string]bson.Raw)}
		s.collections[name] = c
	}
	return c
}

func (s *MemoryStore) FindByID(ctx context.Context, collection, id string, out interface{}) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, ok := s.lookup(collection).docs[id]
	if !ok {
		return fmt.Errorf("%s %q: %w", collection, id, common.ErrNotFound)
	}
	return bson.Unmarshal(raw, out)
}

func (s *MemoryStore) FindByField(ctx context.Context, collection, field string, value interface{}, out interface{}) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches, err := s.match(collection, field, value, 1)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return fmt.Errorf("%s: %w", collection, common.ErrNotFound)
	}
	return bson.Unmarshal(matches[0], out)
}

func (s *MemoryStore) FindAllByField(ctx context.Context, collection, field string, value interface{}, out interface{}) error {
	ptr := reflect.ValueOf(out)
	if ptr.Kind() != reflect.Ptr || ptr.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("expected pointer to slice, got %T", out)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matches, err := s.match(collection, field, value, 0)
	if err != nil {
		return err
	}

	slice := ptr.Elem()
	result := reflect.MakeSlice(slice.Type(), 0, len(matches))
	for _, raw := range matches {
		item := reflect.New(slice.Type().Elem())
		if err := bson.Unmarshal(raw, item.Interface()); err != nil {
			return fmt.Errorf("failed to decode %s: %w", collection, err)
		}
		result = reflect.Append(result, item.Elem())
	}
	slice.Set(result)
	return nil
}

// match returns documents whose field equals value, in insertion order.
// A limit of 0 means no limit.
func (s *MemoryStore) match(collection, field string, value interface{}, limit int) ([]bson.Raw, error) {
	typ, data, err := bson.MarshalValue(value)
	if err != nil {
		return nil, fmt.Errorf("unsupported filter value for %s: %w", field, err)
	}

	c := s.lookup(collection)
	var out []bson.Raw
	for _, id := range c.order {
		raw := c.docs[id]
		v, err := raw.LookupErr(field)
		if err != nil {
			continue
		}
		if v.Type == typ && bytes.Equal(v.Value, data) {
			out = append(out, raw)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (s *MemoryStore) Insert(ctx context.Context, collection string, doc interface{}) (string, error) {
	data, err := bson.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}
	var m bson.M
	if err := bson.Unmarshal(data, &m); err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}

	oid := primitive.NewObjectID()
	m["_id"] = oid
	raw, err := bson.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(collection)
	id := oid.Hex()
	c.docs[id] = raw
	c.order = append(c.order, id)
	return id, nil
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.lookup(collection)
	raw, ok := c.docs[id]
	if !ok {
		return fmt.Errorf("%s %q: %w", collection, id, common.ErrNotFound)
	}

	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("failed to decode %s: %w", collection, err)
	}
	for k, v := range fields {
		m[k] = v
	}
	updated, err := bson.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", collection, err)
	}
	c.docs[id] = updated
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}
