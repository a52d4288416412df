package certificates

import (
	"context"

	"certificate-automation/certifier-portal/certifier-portal-backend/internal/store"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*Certificate, error)
	ListByCertifier(ctx context.Context, certifierID string) ([]Certificate, error)
	Create(ctx context.Context, certificate *Certificate) error
}

type storeRepository struct {
	store store.DocumentStore
}

func NewRepository(s store.DocumentStore) Repository {
	return &storeRepository{store: s}
}

func (r *storeRepository) GetByID(ctx context.Context, id string) (*Certificate, error) {
	var c Certificate
	if err := r.store.FindByID(ctx, store.CollectionCertificates, id, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *storeRepository) ListByCertifier(ctx context.Context, certifierID string) ([]Certificate, error) {
	var list []Certificate
	if err := r.store.FindAllByField(ctx, store.CollectionCertificates, "certifier_id", certifierID, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *storeRepository) Create(ctx context.Context, certificate *Certificate) error {
	id, err := r.store.Insert(ctx, store.CollectionCertificates, certificate)
	if err != nil {
		return err
	}
	certificate.ID = id
	return nil
}
