package accounts

import "time"

// Certifier is an account that may issue certificates.
type Certifier struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Password    string    `bson:"password" json:"-"`
	VerifiedURL string    `bson:"verified_url,omitempty" json:"verified_url,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	VerifiedAt  time.Time `bson:"verified_at,omitempty" json:"verified_at,omitempty"`
}

// IsVerified reports whether the certifier proved ownership of a website.
func (c *Certifier) IsVerified() bool {
	return c.VerifiedURL != ""
}
