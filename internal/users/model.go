package users

import (
	"time"

	"github.com/google/uuid"
)

// User is the sole identity record. A record is reachable by a local
// password, a linked Google subject, or both; PasswordHash and GoogleID are
// pointers so that absent credentials are stored as NULL (empty strings
// would collide on the unique google_id index).
type User struct {
	ID           string    `gorm:"column:id;primaryKey;size:190;not null"`
	Email        string    `gorm:"column:email;size:320;not null;uniqueIndex"`
	Name         string    `gorm:"column:name;size:320;not null"`
	PasswordHash *string   `gorm:"column:password_hash;size:190"`
	GoogleID     *string   `gorm:"column:google_id;size:190;uniqueIndex"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName exposes the table backing user records.
func (User) TableName() string {
	return "users"
}

// sanitized returns a copy safe to hand outside the package. The stored
// password hash never leaves the auth core.
func (u User) sanitized() User {
	u.PasswordHash = nil
	return u
}

// IDProvider abstracts record identifier generation.
type IDProvider interface {
	NewID() (string, error)
}

type uuidProvider struct{}

// NewUUIDProvider constructs an IDProvider that issues UUIDv7 identifiers.
func NewUUIDProvider() IDProvider {
	return &uuidProvider{}
}

func (p *uuidProvider) NewID() (string, error) {
	value, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return value.String(), nil
}
