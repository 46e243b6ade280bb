package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Participation links a member to a project. Leaving soft-deletes the row, so
// the history stays available for feedback eligibility.
type Participation struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	UserID    string         `gorm:"size:36;not null;index:idx_participant_user_project" json:"user_id"`
	ProjectID string         `gorm:"size:36;not null;index:idx_participant_user_project;index" json:"project_id"`
	Message   string         `gorm:"size:300" json:"message,omitempty"`
	JoinedAt  time.Time      `gorm:"not null" json:"joined_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Participation) TableName() string { return "project_participants" }

func (p *Participation) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// NewParticipation validates message and returns a participation joined now.
func NewParticipation(userID, projectID, message string) (*Participation, error) {
	if err := validateStruct(participationFields{Message: message}); err != nil {
		return nil, err
	}
	return &Participation{
		ID:        uuid.NewString(),
		UserID:    userID,
		ProjectID: projectID,
		Message:   message,
		JoinedAt:  time.Now().UTC(),
	}, nil
}

type participationFields struct {
	Message string `json:"message" validate:"max=300"`
}
