package models

// UserRole is the role a user registers with.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleCompany UserRole = "company"
	RoleDev     UserRole = "dev"
	RoleMentor  UserRole = "mentor"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleCompany, RoleDev, RoleMentor:
		return true
	}
	return false
}

// ApprovalStatus is shared by users and projects. Suspended only applies to users.
type ApprovalStatus string

const (
	ApprovalPending   ApprovalStatus = "pending"
	ApprovalApproved  ApprovalStatus = "approved"
	ApprovalRejected  ApprovalStatus = "rejected"
	ApprovalSuspended ApprovalStatus = "suspended"
)

func (s ApprovalStatus) ValidForUser() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected, ApprovalSuspended:
		return true
	}
	return false
}

func (s ApprovalStatus) ValidForProject() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	StatusDraft     ProjectStatus = "draft"
	StatusActive    ProjectStatus = "active"
	StatusClosed    ProjectStatus = "closed"
	StatusCancelled ProjectStatus = "cancelled"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusClosed, StatusCancelled:
		return true
	}
	return false
}

const (
	// MaxProjectsPerUser is the default cap on active owned projects and on
	// active participations.
	MaxProjectsPerUser = 3

	DefaultMaxParticipants = 3
	MinParticipants        = 1
	MaxParticipants        = 5
)
