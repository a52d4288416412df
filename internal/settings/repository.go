package settings

import (
	"context"

	"certificate-automation/certifier-portal/certifier-portal-backend/internal/fetch"
)

// Repository returns raw settings documents by location.
type Repository interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// RemoteRepository reads settings documents over HTTP(S).
type RemoteRepository struct {
	client *fetch.Client
}

// NewRepository creates a new settings repository
func NewRepository(client *fetch.Client) *RemoteRepository {
	return &RemoteRepository{client: client}
}

func (r *RemoteRepository) Fetch(ctx context.Context, location string) ([]byte, error) {
	resp, err := r.client.GetOK(ctx, location)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}
