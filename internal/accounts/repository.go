package accounts

import (
	"context"
	"time"

	"certificate-automation/certifier-portal/certifier-portal-backend/internal/store"
)

// Repository persists certifiers. Lookups that match nothing return common.ErrNotFound.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Certifier, error)
	GetByName(ctx context.Context, name string) (*Certifier, error)
	Create(ctx context.Context, certifier *Certifier) error
	SetVerifiedURL(ctx context.Context, id, url string, at time.Time) error
}

type storeRepository struct {
	store store.DocumentStore
}

func NewRepository(s store.DocumentStore) Repository {
	return &storeRepository{store: s}
}

func (r *storeRepository) GetByID(ctx context.Context, id string) (*Certifier, error) {
	var c Certifier
	if err := r.store.FindByID(ctx, store.CollectionCertifiers, id, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *storeRepository) GetByName(ctx context.Context, name string) (*Certifier, error) {
	var c Certifier
	if err := r.store.FindByField(ctx, store.CollectionCertifiers, "name", name, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *storeRepository) Create(ctx context.Context, certifier *Certifier) error {
	id, err := r.store.Insert(ctx, store.CollectionCertifiers, certifier)
	if err != nil {
		return err
	}
	certifier.ID = id
	return nil
}

func (r *storeRepository) SetVerifiedURL(ctx context.Context, id, url string, at time.Time) error {
	return r.store.Update(ctx, store.CollectionCertifiers, id, map[string]interface{}{
		"verified_url": url,
		"verified_at":  at,
	})
}
