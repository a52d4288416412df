package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certificate-automation/certifier-portal/certifier-portal-backend/internal/common"
)

type record struct {
	ID    string `bson:"_id,omitempty"`
	Name  string `bson:"name"`
	Owner string `bson:"owner"`
	URL   string `bson:"url,omitempty"`
}

func TestMemoryStore_InsertAndFind(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, err := s.Insert(ctx, "records", &record{Name: "alice", Owner: "o1"})
	require.NoError(t, err)
	assert.Len(t, id, 24)

	var byID record
	require.NoError(t, s.FindByID(ctx, "records", id, &byID))
	assert.Equal(t, id, byID.ID)
	assert.Equal(t, "alice", byID.Name)

	var byField record
	require.NoError(t, s.FindByField(ctx, "records", "name", "alice", &byField))
	assert.Equal(t, id, byField.ID)
}

func TestMemoryStore_NotFound(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var r record
	assert.ErrorIs(t, s.FindByID(ctx, "records", "not-an-id", &r), common.ErrNotFound)
	assert.ErrorIs(t, s.FindByField(ctx, "records", "name", "nobody", &r), common.ErrNotFound)
	assert.ErrorIs(t, s.Update(ctx, "records", "64b7f0c2a1b2c3d4e5f60718", map[string]interface{}{"url": "x"}), common.ErrNotFound)
}

func TestMemoryStore_FindAllByField(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		owner := "o1"
		if name == "b" {
			owner = "o2"
		}
		_, err := s.Insert(ctx, "records", record{Name: name, Owner: owner})
		require.NoError(t, err)
	}

	var got []record
	require.NoError(t, s.FindAllByField(ctx, "records", "owner", "o1", &got))
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Name)
	assert.Equal(t, "c", got[1].Name)

	var none []record
	require.NoError(t, s.FindAllByField(ctx, "records", "owner", "o9", &none))
	assert.Empty(t, none)

	assert.Error(t, s.FindAllByField(ctx, "records", "owner", "o1", &record{}))
}

func TestMemoryStore_Update(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, err := s.Insert(ctx, "records", &record{Name: "alice"})
	require.NoError(t, err)

	require.NoError(t, s.Update(ctx, "records", id, map[string]interface{}{"url": "https://a.example"}))
	require.NoError(t, s.Update(ctx, "records", id, map[string]interface{}{"url": "https://b.example"}))

	var r record
	require.NoError(t, s.FindByID(ctx, "records", id, &r))
	assert.Equal(t, "alice", r.Name)
	assert.Equal(t, "https://b.example", r.URL)
}

func TestScope_ReleaseWithoutSession(t *testing.T) {
	ctx, scope := WithScope(context.Background())

	assert.Same(t, scope, ScopeFrom(ctx))
	assert.False(t, scope.Active())

	scope.Release(ctx)
	scope.Release(ctx)
	assert.False(t, scope.Active())
	assert.True(t, scope.Released())
	assert.Nil(t, ScopeFrom(context.Background()))
}
