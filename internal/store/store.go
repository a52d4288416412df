// Package store is the document store behind certifier and certificate
// records. Records are looked up by id or by a single field and are never
// deleted by the application.
package store

import "context"

// Collection names
const (
	CollectionCertifiers   = "certifiers"
	CollectionCertificates = "certificates"
)

// DocumentStore is the narrow set of operations the services need.
// Lookups that match nothing return common.ErrNotFound; so do malformed ids.
type DocumentStore interface {
	FindByID(ctx context.Context, collection, id string, out interface{}) error
	FindByField(ctx context.Context, collection, field string, value interface{}, out interface{}) error
	// FindAllByField decodes every match into out, which must point to a slice.
	FindAllByField(ctx context.Context, collection, field string, value interface{}, out interface{}) error
	Insert(ctx context.Context, collection string, doc interface{}) (string, error)
	// Update sets the given top-level fields on one document.
	Update(ctx context.Context, collection, id string, fields map[string]interface{}) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
