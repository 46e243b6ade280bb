package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Feedback is a member's review of a project. One per (user, project).
type Feedback struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	ProjectID string    `gorm:"size:36;not null;uniqueIndex:idx_feedback_user_project" json:"project_id"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_feedback_user_project" json:"user_id"`
	Comment   string    `gorm:"type:text;not null" json:"comment"`
	Link      string    `gorm:"size:500" json:"link,omitempty"`
	Rating    int       `gorm:"not null" json:"rating"`
	CreatedAt time.Time `json:"created_at"`

	User *PublicUser `gorm:"-" json:"user,omitempty"`
}

func (Feedback) TableName() string { return "feedbacks" }

func (f *Feedback) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// FeedbackDraft is the validated input for submitting feedback.
type FeedbackDraft struct {
	ProjectID string `json:"project_id" validate:"required"`
	UserID    string `json:"user_id" validate:"required"`
	Comment   string `json:"comment" validate:"required,min=10,max=1000"`
	Link      string `json:"link" validate:"omitempty,url,max=500"`
	Rating    int    `json:"rating" validate:"gte=1,lte=5"`
}

func NewFeedback(d FeedbackDraft) (*Feedback, error) {
	d.Comment = strings.TrimSpace(d.Comment)
	d.Link = strings.TrimSpace(d.Link)
	if err := validateStruct(d); err != nil {
		return nil, err
	}
	return &Feedback{
		ID:        uuid.NewString(),
		ProjectID: d.ProjectID,
		UserID:    d.UserID,
		Comment:   d.Comment,
		Link:      d.Link,
		Rating:    d.Rating,
		CreatedAt: time.Now().UTC(),
	}, nil
}
