package certificates

import (
	"time"

	"certificate-automation/certifier-portal/certifier-portal-backend/internal/accounts"
)

// Certificate binds a recipient and a title to the certifier that issued it.
// It is never modified after creation.
type Certificate struct {
	ID          string `bson:"_id,omitempty" json:"id"`
	Name        string `bson:"name" json:"name"`
	Title       string `bson:"title" json:"title"`
	CertifierID string `bson:"certifier_id" json:"certifier_id"`
	// SettingsURL optionally points at a JSON render settings document.
	SettingsURL string    `bson:"settings_url,omitempty" json:"settings_url,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

type CreateRequest struct {
	Name        string
	Title       string
	SettingsURL string
}

// Details is a certificate together with its issuer.
type Details struct {
	Certificate *Certificate
	Certifier   *accounts.Certifier
}
