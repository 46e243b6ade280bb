package services

import (
	"errors"

	"github.com/projeto-integrador-integra/integra-backend/internal/models"
	"github.com/projeto-integrador-integra/integra-backend/pkg/response"
)

// Domain errors. Codes are part of the API contract.
var (
	ErrProjectNotFound         = response.NewNotFound("PROJECT_NOT_FOUND", "project not found")
	ErrProjectAlreadyExists    = response.NewConflict("PROJECT_ALREADY_EXISTS", "a project with a similar name already exists")
	ErrProjectNotAvailable     = response.NewConflict("PROJECT_NOT_AVAILABLE", "project is not approved")
	ErrProjectNotActive        = response.NewConflict("PROJECT_NOT_ACTIVE", "project is not active")
	ErrProjectNoMentorsNeeded  = response.NewConflict("PROJECT_DOES_NOT_NEED_MENTORS", "project does not need mentors")
	ErrProjectNoDevsNeeded     = response.NewConflict("PROJECT_DOES_NOT_NEED_DEVS", "project does not need developers")
	ErrProjectApplicationError = response.NewServerError("PROJECT_APPLICATION_ERROR", "could not register the application")
	ErrProjectUpdateError      = response.NewServerError("PROJECT_UPDATE_ERROR", "could not update the project")
	ErrProjectCreationError    = response.NewServerError("PROJECT_CREATION_ERROR", "could not create the project")
	ErrProjectForbidden        = response.NewForbidden("FORBIDDEN", "only the project creator or an admin can change this project")

	ErrUserAlreadyParticipating = response.NewConflict("ALREADY_PARTICIPATING", "user already participates in this project")
	ErrUserNotParticipating     = response.NewConflict("NOT_PARTICIPATING", "user does not participate in this project")
	ErrUserProjectLimitReached  = response.NewConflict("USER_PROJECT_LIMIT_REACHED", "user reached the active project limit")
	ErrRoleCannotApply          = response.NewForbidden("ROLE_CANNOT_APPLY", "only developers and mentors can apply to projects")

	ErrFeedbackAlreadySubmitted = response.NewConflict("FEEDBACK_ALREADY_SUBMITTED", "feedback already submitted for this project")
	ErrFeedbackSubmissionFailed = response.NewServerError("FEEDBACK_SUBMISSION_FAILED", "could not submit feedback")

	ErrUserNotFound         = response.NewNotFound("USER_NOT_FOUND", "user not found")
	ErrUserAlreadyExists    = response.NewConflict("USER_ALREADY_EXISTS", "user already exists")
	ErrUserNotAuthenticated = response.NewUnauthorized("USER_NOT_AUTHENTICATED", "user not authenticated")
	ErrUserNotAuthorized    = response.NewForbidden("USER_NOT_AUTHORIZED", "user not authorized")
	ErrUserNotApproved      = response.NewForbidden("USER_NOT_APPROVED", "user not approved")
	ErrUserRoleNotAllowed   = response.NewForbidden("USER_ROLE_NOT_AUTHORIZED", "user role not authorized")
)

// asValidation converts model validation failures into a 422 AppError.
func asValidation(err error) error {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return response.NewValidation(verr.Error())
	}
	return err
}
