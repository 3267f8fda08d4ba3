//internals/profile/models.go

package profile

import (
	"time"

	"github.com/google/uuid"
)

// ContactPreference selects the channel used for notifications.
type ContactPreference string

const (
	ContactEmail ContactPreference = "email"
	ContactSMS   ContactPreference = "sms"
	ContactNone  ContactPreference = "none"
)

// User is a participant as stored in the directory. Accounts are
// provisioned by the identity service; this service only reads them and
// edits the profile fields.
type User struct {
	ID                uuid.UUID         `json:"id" db:"id"`
	Email             string            `json:"email" db:"email"`
	FirstName         string            `json:"firstName" db:"first_name"`
	LastName          string            `json:"lastName" db:"last_name"`
	Program           string            `json:"program" db:"program"`
	YearLevel         int               `json:"yearLevel" db:"year_level"`
	Bio               string            `json:"bio" db:"bio"`
	InstagramHandle   string            `json:"instagramHandle" db:"instagram_handle"`
	PhoneNumber       string            `json:"phoneNumber,omitempty" db:"phone_number"`
	ContactPreference ContactPreference `json:"contactPreference" db:"contact_preference"`
	IsActive          bool              `json:"isActive" db:"is_active"`
	CreatedAt         time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time         `json:"updatedAt" db:"updated_at"`
}

// DisplayName is the first name, falling back to the email's local part.
func (u *User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	for i, c := range u.Email {
		if c == '@' {
			return u.Email[:i]
		}
	}
	return u.Email
}

// UpdateProfileRequest represents a profile update request. Nil fields are
// left unchanged.
type UpdateProfileRequest struct {
	Bio               *string            `json:"bio" validate:"omitempty,max=500"`
	Program           *string            `json:"program" validate:"omitempty,min=2,max=100"`
	YearLevel         *int               `json:"yearLevel" validate:"omitempty,min=1,max=6"`
	InstagramHandle   *string            `json:"instagramHandle" validate:"omitempty,max=100"`
	PhoneNumber       *string            `json:"phoneNumber" validate:"omitempty,e164"`
	ContactPreference *ContactPreference `json:"contactPreference" validate:"omitempty,oneof=email sms none"`
}

// apply copies the set fields onto u.
func (r *UpdateProfileRequest) apply(u *User) {
	if r.Bio != nil {
		u.Bio = *r.Bio
	}
	if r.Program != nil {
		u.Program = *r.Program
	}
	if r.YearLevel != nil {
		u.YearLevel = *r.YearLevel
	}
	if r.InstagramHandle != nil {
		u.InstagramHandle = *r.InstagramHandle
	}
	if r.PhoneNumber != nil {
		u.PhoneNumber = *r.PhoneNumber
	}
	if r.ContactPreference != nil {
		u.ContactPreference = *r.ContactPreference
	}
}
