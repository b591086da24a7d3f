package users

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNotFound indicates no record matched the lookup.
	ErrNotFound = errors.New("users: record not found")
	// ErrEmailTaken indicates the email unique index rejected a write.
	ErrEmailTaken = errors.New("users: email already registered")
	// ErrGoogleIDTaken indicates the google_id unique index rejected a write.
	ErrGoogleIDTaken = errors.New("users: google id already linked")
	// ErrUnavailable indicates a transient store failure; callers may retry.
	ErrUnavailable = errors.New("users: store unavailable")

	errMissingStoreDatabase = errors.New("users: database handle is required")
)

// Store persists user records in the relational store. Uniqueness of email
// and google_id is enforced by the engine's unique indexes, so a
// check-then-insert race resolves to exactly one winner.
type Store struct {
	db *gorm.DB
}

// NewStore constructs a Store over an open database handle. The handle must
// have TranslateError enabled so duplicate-key violations surface as
// gorm.ErrDuplicatedKey.
func NewStore(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, errMissingStoreDatabase
	}
	return &Store{db: db}, nil
}

// Create inserts a new record. Conflicting email or google_id values are
// reported as ErrEmailTaken / ErrGoogleIDTaken.
func (s *Store) Create(ctx context.Context, user User) (User, error) {
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return User{}, s.classifyDuplicate(ctx, user)
		}
		return User{}, mapStoreError(err)
	}
	return user.sanitized(), nil
}

// FindByID returns the record with the given id, hash stripped.
func (s *Store) FindByID(ctx context.Context, id string) (User, error) {
	user, err := s.takeWhere(ctx, "id = ?", id)
	if err != nil {
		return User{}, err
	}
	return user.sanitized(), nil
}

// FindByEmail returns the record with the given email, hash stripped. The
// match is exact string equality on the stored value; no normalization is
// performed.
func (s *Store) FindByEmail(ctx context.Context, email string) (User, error) {
	user, err := s.takeWhere(ctx, "email = ?", email)
	if err != nil {
		return User{}, err
	}
	return user.sanitized(), nil
}

// FindByGoogleID returns the record linked to the given Google subject,
// hash stripped.
func (s *Store) FindByGoogleID(ctx context.Context, googleID string) (User, error) {
	user, err := s.takeWhere(ctx, "google_id = ?", googleID)
	if err != nil {
		return User{}, err
	}
	return user.sanitized(), nil
}

// findByEmailWithHash is the one lookup that returns the stored password
// hash. It backs password verification inside this package and must not be
// exposed further.
func (s *Store) findByEmailWithHash(ctx context.Context, email string) (User, error) {
	return s.takeWhere(ctx, "email = ?", email)
}

// Update applies the given column values to the record and refreshes
// updated_at. Returns the updated record, hash stripped.
func (s *Store) Update(ctx context.Context, id string, fields map[string]interface{}) (User, error) {
	result := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return User{}, ErrGoogleIDTaken
		}
		return User{}, mapStoreError(result.Error)
	}
	if result.RowsAffected == 0 {
		return User{}, ErrNotFound
	}
	return s.FindByID(ctx, id)
}

// Delete removes the record. Reserved administrative capability; no handler
// currently calls it.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&User{})
	if result.Error != nil {
		return false, mapStoreError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (s *Store) takeWhere(ctx context.Context, query string, arg interface{}) (User, error) {
	var user User
	if err := s.db.WithContext(ctx).Where(query, arg).Take(&user).Error; err != nil {
		return User{}, mapStoreError(err)
	}
	return user, nil
}

// classifyDuplicate decides which unique index rejected the insert. The
// engine only reports a duplicated key; a follow-up lookup on the google_id
// disambiguates.
func (s *Store) classifyDuplicate(ctx context.Context, user User) error {
	if user.GoogleID != nil {
		if _, err := s.FindByGoogleID(ctx, *user.GoogleID); err == nil {
			return ErrGoogleIDTaken
		}
	}
	return ErrEmailTaken
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		return err
	}
}
