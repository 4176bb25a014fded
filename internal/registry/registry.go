// Package registry persists identities and their face enrollments.
package registry

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrDuplicateUsername is returned when the username unique index
	// rejects a create, including the check-then-create race between
	// concurrent enrollments.
	ErrDuplicateUsername = errors.New("username already registered")

	// ErrNotFound is returned when no enrollment matches a login id.
	ErrNotFound = errors.New("enrollment not found")
)

// Identity is a registered person. Usernames are unique and immutable
// once set.
type Identity struct {
	ID       uint   `gorm:"primaryKey"`
	Username string `gorm:"column:username;uniqueIndex;size:150;not null"`
}

// TableName overrides the default table name.
func (Identity) TableName() string {
	return "identities"
}

// Enrollment binds exactly one face credential to an identity. The
// login id is derived from the row id, which is only known after the
// insert, so it is written by a second statement inside the creating
// transaction and stays immutable afterwards.
type Enrollment struct {
	ID         uint     `gorm:"primaryKey"`
	IdentityID uint     `gorm:"column:identity_id;uniqueIndex;not null"`
	Identity   Identity `gorm:"foreignKey:IdentityID;constraint:OnDelete:CASCADE"`
	// default:null keeps the freshly inserted row out of the unique
	// index until the derived id is written, so concurrent enrollments
	// cannot collide on a placeholder value.
	LoginID string `gorm:"column:login_id;uniqueIndex;size:20;default:null"`
	BlobKey string `gorm:"column:blob_key;size:64;not null"`
}

// TableName overrides the default table name.
func (Enrollment) TableName() string {
	return "enrollments"
}

// FormatLoginID derives the public login identifier from an enrollment
// row id: "U" followed by the id zero-padded to four digits.
func FormatLoginID(id uint) string {
	return fmt.Sprintf("U%04d", id)
}

// Registry provides the persistence APIs for identities and
// enrollments. The database must be opened with TranslateError so
// unique-constraint violations surface as gorm.ErrDuplicatedKey.
type Registry struct {
	db     *gorm.DB
	logger *zap.Logger
}

// New creates a registry backed by the given database handle.
func New(db *gorm.DB, logger *zap.Logger) *Registry {
	return &Registry{db: db, logger: logger.Named("registry")}
}

// AutoMigrate ensures the schema and its unique indexes exist.
func (r *Registry) AutoMigrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&Identity{}, &Enrollment{})
}

// UsernameTaken is the fast-path duplicate check used to fail early
// with a friendly message. The unique index on identities.username
// remains the authority under concurrent writes.
func (r *Registry) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Identity{}).
		Where("username = ?", username).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateEnrollment creates the identity, its enrollment and the
// derived login id as one atomic unit. A failure anywhere rolls the
// whole transaction back, so no orphaned identity or enrollment can
// remain and no enrollment is ever visible without its login id.
func (r *Registry) CreateEnrollment(ctx context.Context, username, blobKey string) (*Enrollment, error) {
	var enrollment Enrollment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		identity := Identity{Username: username}
		if err := tx.Create(&identity).Error; err != nil {
			return err
		}

		enrollment = Enrollment{IdentityID: identity.ID, BlobKey: blobKey}
		if err := tx.Create(&enrollment).Error; err != nil {
			return err
		}

		loginID := FormatLoginID(enrollment.ID)
		if err := tx.Model(&Enrollment{}).
			Where("id = ?", enrollment.ID).
			Update("login_id", loginID).Error; err != nil {
			return err
		}

		enrollment.LoginID = loginID
		enrollment.Identity = identity
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateUsername
		}
		r.logger.Error("enrollment create failed", zap.String("username", username), zap.Error(err))
		return nil, err
	}
	return &enrollment, nil
}

// FindByLoginID loads an enrollment and its owning identity.
func (r *Registry) FindByLoginID(ctx context.Context, loginID string) (*Enrollment, error) {
	var enrollment Enrollment
	err := r.db.WithContext(ctx).
		Preload("Identity").
		First(&enrollment, "login_id = ?", loginID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// DeleteIdentity removes an identity together with its enrollment.
func (r *Registry) DeleteIdentity(ctx context.Context, identityID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("identity_id = ?", identityID).Delete(&Enrollment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Identity{}, identityID).Error
	})
}

// CountEnrollments reports the number of enrolled identities, exposed
// on the health endpoint.
func (r *Registry) CountEnrollments(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Enrollment{}).Count(&count).Error
	return count, err
}
