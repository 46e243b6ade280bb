package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a registered participant. Sub is the identity-provider subject.
type User struct {
	ID             string         `gorm:"primaryKey;size:36" json:"id"`
	Sub            string         `gorm:"uniqueIndex;size:255;not null" json:"sub"`
	Role           UserRole       `gorm:"size:20;not null;index" json:"role"`
	Name           string         `gorm:"size:50;not null" json:"name"`
	Email          string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Description    string         `gorm:"size:300" json:"description,omitempty"`
	ApprovalStatus ApprovalStatus `gorm:"size:20;not null;index" json:"approval_status"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Public is the subset of a user exposed next to feedback entries.
func (u *User) Public() *PublicUser {
	return &PublicUser{ID: u.ID, Name: u.Name, Role: u.Role}
}

// Principal is the immutable view of u used for authorization.
func (u *User) Principal() Principal {
	return Principal{ID: u.ID, Role: u.Role, ApprovalStatus: u.ApprovalStatus}
}

func (u *User) IsApproved() bool { return u.ApprovalStatus == ApprovalApproved }

// FirstName returns the capitalized first word of the user's name.
func (u *User) FirstName() string {
	fields := strings.Fields(u.Name)
	if len(fields) == 0 {
		return ""
	}
	first := []rune(strings.ToLower(fields[0]))
	first[0] = []rune(strings.ToUpper(string(first[0])))[0]
	return string(first)
}

type PublicUser struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Role UserRole `json:"role"`
}

// UserDraft is the input for registering a user. Sub and Email come from the
// authenticated identity, never from the request body.
type UserDraft struct {
	Sub         string   `json:"sub" validate:"required,max=255"`
	Email       string   `json:"email" validate:"required,email,max=255"`
	Name        string   `json:"name" validate:"required,min=1,max=50"`
	Role        UserRole `json:"role" validate:"required,oneof=company dev mentor"`
	Description string   `json:"description" validate:"max=300"`
}

// NewUser validates d and returns a pending user.
func NewUser(d UserDraft) (*User, error) {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.TrimSpace(d.Email)
	if err := validateStruct(d); err != nil {
		return nil, err
	}
	return &User{
		ID:             uuid.NewString(),
		Sub:            d.Sub,
		Role:           d.Role,
		Name:           d.Name,
		Email:          d.Email,
		Description:    d.Description,
		ApprovalStatus: ApprovalPending,
	}, nil
}

// UserPatch holds optional user changes. Nil fields are left untouched.
type UserPatch struct {
	Name           *string         `json:"name"`
	Description    *string         `json:"description"`
	Role           *UserRole       `json:"role"`
	ApprovalStatus *ApprovalStatus `json:"approval_status"`
}

// Apply validates and applies p to u.
func (u *User) Apply(p UserPatch) error {
	next := *u
	if p.Name != nil {
		next.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		next.Description = *p.Description
	}
	if p.Role != nil {
		if !p.Role.Valid() {
			return &ValidationError{Field: "role", Message: "must be one of [admin company dev mentor]"}
		}
		next.Role = *p.Role
	}
	if p.ApprovalStatus != nil {
		if !p.ApprovalStatus.ValidForUser() {
			return &ValidationError{Field: "approval_status", Message: "must be one of [pending approved rejected suspended]"}
		}
		next.ApprovalStatus = *p.ApprovalStatus
	}
	if err := validateStruct(userFields{Name: next.Name, Description: next.Description}); err != nil {
		return err
	}
	*u = next
	return nil
}

type userFields struct {
	Name        string `json:"name" validate:"required,min=1,max=50"`
	Description string `json:"description" validate:"max=300"`
}
