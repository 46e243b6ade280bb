package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Project is a team-formation project published by a company (or admin).
//
// MentorSlot records whether the project was created wanting a mentor; it
// reserves one of MaxParticipants for that mentor so dev capacity stays
// fixed after the mentor joins.
type Project struct {
	ID              string                      `gorm:"primaryKey;size:36" json:"id"`
	Name            string                      `gorm:"size:50;not null;index" json:"name"`
	Description     string                      `gorm:"size:300;not null" json:"description"`
	CreatorID       string                      `gorm:"size:36;not null;index" json:"creator_id"`
	Tags            datatypes.JSONSlice[string] `json:"tags"`
	NeedsMentors    bool                        `gorm:"not null" json:"needs_mentors"`
	NeedsDevs       bool                        `gorm:"not null" json:"needs_devs"`
	MentorSlot      bool                        `gorm:"not null" json:"-"`
	MaxParticipants int                         `gorm:"not null" json:"max_participants"`
	Status          ProjectStatus               `gorm:"size:20;not null;index" json:"status"`
	ApprovalStatus  ApprovalStatus              `gorm:"size:20;not null;index" json:"approval_status"`
	CreatedAt       time.Time                   `json:"created_at"`
	UpdatedAt       time.Time                   `json:"updated_at"`

	// Members are the users with an active participation, in join order.
	Members []User `gorm:"-" json:"members"`
}

func (Project) TableName() string { return "projects" }

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// ProjectDraft is the validated input for creating a project.
type ProjectDraft struct {
	Name            string   `json:"name" validate:"required,min=3,max=50"`
	Description     string   `json:"description" validate:"required,min=10,max=300"`
	CreatorID       string   `json:"creator_id" validate:"required"`
	Tags            []string `json:"tags" validate:"omitempty,dive,min=1,max=30"`
	NeedsMentors    bool     `json:"needs_mentors"`
	NeedsDevs       bool     `json:"needs_devs"`
	MaxParticipants int      `json:"max_participants" validate:"gte=1,lte=5"`
}

// NewProject validates d and returns an active project awaiting approval.
func NewProject(d ProjectDraft) (*Project, error) {
	d.Name = strings.TrimSpace(d.Name)
	d.Description = strings.TrimSpace(d.Description)
	if err := validateStruct(d); err != nil {
		return nil, err
	}
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	p := &Project{
		ID:              uuid.NewString(),
		Name:            d.Name,
		Description:     d.Description,
		CreatorID:       d.CreatorID,
		Tags:            datatypes.JSONSlice[string](tags),
		NeedsMentors:    d.NeedsMentors,
		NeedsDevs:       d.NeedsDevs,
		MentorSlot:      d.NeedsMentors,
		MaxParticipants: d.MaxParticipants,
		Status:          StatusActive,
		ApprovalStatus:  ApprovalPending,
		Members:         []User{},
	}
	p.closeFilledSlots()
	return p, nil
}

// DevCapacity is the number of dev seats: MaxParticipants minus the mentor seat.
func (p *Project) DevCapacity() int {
	if p.MentorSlot {
		return p.MaxParticipants - 1
	}
	return p.MaxParticipants
}

func (p *Project) HasMember(userID string) bool {
	for _, m := range p.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}

func (p *Project) CountMembers(role UserRole) int {
	n := 0
	for _, m := range p.Members {
		if m.Role == role {
			n++
		}
	}
	return n
}

// AddMember appends u unless already present.
func (p *Project) AddMember(u User) {
	if p.HasMember(u.ID) {
		return
	}
	p.Members = append(p.Members, u)
}

func (p *Project) RemoveMember(userID string) {
	members := p.Members[:0]
	for _, m := range p.Members {
		if m.ID != userID {
			members = append(members, m)
		}
	}
	p.Members = members
}

// IsGroupComplete reports whether neither mentors nor devs are sought.
func (p *Project) IsGroupComplete() bool {
	return !p.NeedsMentors && !p.NeedsDevs
}

// Seat closes the needs flag that admitting a member with role fills, and
// reports whether any flag changed. Call it before the member is added.
func (p *Project) Seat(role UserRole) bool {
	switch role {
	case RoleMentor:
		if p.NeedsMentors {
			p.NeedsMentors = false
			return true
		}
	case RoleDev:
		if p.NeedsDevs && p.CountMembers(RoleDev)+1 >= p.DevCapacity() {
			p.NeedsDevs = false
			return true
		}
	}
	return false
}

func (p *Project) closeFilledSlots() {
	if p.NeedsDevs && p.CountMembers(RoleDev) >= p.DevCapacity() {
		p.NeedsDevs = false
	}
}

// ProjectPatch holds optional project changes. Nil fields are left untouched.
type ProjectPatch struct {
	Name            *string         `json:"name"`
	Description     *string         `json:"description"`
	Tags            *[]string       `json:"tags"`
	MaxParticipants *int            `json:"max_participants"`
	Status          *ProjectStatus  `json:"status"`
	ApprovalStatus  *ApprovalStatus `json:"approval_status"`
}

// Apply validates and applies patch to p. p is unchanged on error.
func (p *Project) Apply(patch ProjectPatch) error {
	next := *p
	if patch.Name != nil {
		next.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		next.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Tags != nil {
		next.Tags = datatypes.JSONSlice[string](append([]string{}, (*patch.Tags)...))
	}
	if patch.MaxParticipants != nil {
		next.MaxParticipants = *patch.MaxParticipants
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return &ValidationError{Field: "status", Message: "must be one of [draft active closed cancelled]"}
		}
		next.Status = *patch.Status
	}
	if patch.ApprovalStatus != nil {
		if !patch.ApprovalStatus.ValidForProject() {
			return &ValidationError{Field: "approval_status", Message: "must be one of [pending approved rejected]"}
		}
		next.ApprovalStatus = *patch.ApprovalStatus
	}

	if err := validateStruct(ProjectDraft{
		Name:            next.Name,
		Description:     next.Description,
		CreatorID:       next.CreatorID,
		Tags:            []string(next.Tags),
		MaxParticipants: next.MaxParticipants,
	}); err != nil {
		return err
	}
	if next.MaxParticipants < len(next.Members) {
		return &ValidationError{Field: "max_participants", Message: "must not be below the current member count"}
	}

	next.closeFilledSlots()
	*p = next
	return nil
}
