package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDraft() ProjectDraft {
	return ProjectDraft{
		Name:            "Integra Portal",
		Description:     "A portal to match students with companies.",
		CreatorID:       "company-1",
		Tags:            []string{"go", "web"},
		NeedsMentors:    true,
		NeedsDevs:       true,
		MaxParticipants: 3,
	}
}

func TestNewProject_Defaults(t *testing.T) {
	p, err := NewProject(validDraft())
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, StatusActive, p.Status)
	assert.Equal(t, ApprovalPending, p.ApprovalStatus)
	assert.True(t, p.MentorSlot)
	assert.Equal(t, 2, p.DevCapacity())
	assert.Empty(t, p.Members)
}

func TestNewProject_MaxParticipantsBoundaries(t *testing.T) {
	tests := []struct {
		max   int
		valid bool
	}{
		{0, false},
		{1, true},
		{5, true},
		{6, false},
	}

	for _, tt := range tests {
		d := validDraft()
		d.MaxParticipants = tt.max
		_, err := NewProject(d)
		if tt.valid {
			assert.NoError(t, err, "max=%d", tt.max)
		} else {
			assert.True(t, IsValidationError(err), "max=%d", tt.max)
		}
	}
}

func TestNewProject_FieldValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *ProjectDraft)
		field  string
	}{
		{"short name", func(d *ProjectDraft) { d.Name = "ab" }, "name"},
		{"long name", func(d *ProjectDraft) { d.Name = strings.Repeat("a", 51) }, "name"},
		{"short description", func(d *ProjectDraft) { d.Description = "too short" }, "description"},
		{"long description", func(d *ProjectDraft) { d.Description = strings.Repeat("a", 301) }, "description"},
		{"missing creator", func(d *ProjectDraft) { d.CreatorID = "" }, "creator_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mutate(&d)
			_, err := NewProject(d)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestNewProject_NoDevSeatClosesDevs(t *testing.T) {
	d := validDraft()
	d.MaxParticipants = 1
	p, err := NewProject(d)
	require.NoError(t, err)

	assert.Equal(t, 0, p.DevCapacity())
	assert.False(t, p.NeedsDevs)
	assert.True(t, p.NeedsMentors)
}

func TestProject_SeatFillsCapacity(t *testing.T) {
	p, err := NewProject(validDraft())
	require.NoError(t, err)

	assert.True(t, p.Seat(RoleMentor))
	p.AddMember(User{ID: "m1", Role: RoleMentor})
	assert.False(t, p.NeedsMentors)
	assert.False(t, p.IsGroupComplete())

	assert.False(t, p.Seat(RoleDev))
	p.AddMember(User{ID: "d1", Role: RoleDev})
	assert.True(t, p.NeedsDevs)

	assert.True(t, p.Seat(RoleDev))
	p.AddMember(User{ID: "d2", Role: RoleDev})
	assert.False(t, p.NeedsDevs)
	assert.True(t, p.IsGroupComplete())
}

func TestProject_SeatWithoutMentorSlot(t *testing.T) {
	d := validDraft()
	d.NeedsMentors = false
	d.MaxParticipants = 2
	p, err := NewProject(d)
	require.NoError(t, err)
	assert.Equal(t, 2, p.DevCapacity())

	assert.False(t, p.Seat(RoleMentor))
	assert.False(t, p.Seat(RoleDev))
	p.AddMember(User{ID: "d1", Role: RoleDev})
	assert.True(t, p.Seat(RoleDev))
}

func TestProject_MembershipHelpers(t *testing.T) {
	p := &Project{}
	p.AddMember(User{ID: "u1", Role: RoleDev})
	p.AddMember(User{ID: "u1", Role: RoleDev})
	p.AddMember(User{ID: "u2", Role: RoleMentor})

	assert.Len(t, p.Members, 2)
	assert.Equal(t, 1, p.CountMembers(RoleDev))
	assert.True(t, p.HasMember("u2"))

	p.RemoveMember("u1")
	assert.False(t, p.HasMember("u1"))
	assert.Len(t, p.Members, 1)
}

func TestProject_Apply(t *testing.T) {
	p, err := NewProject(validDraft())
	require.NoError(t, err)

	name := "Renamed Portal"
	status := StatusClosed
	require.NoError(t, p.Apply(ProjectPatch{Name: &name, Status: &status}))
	assert.Equal(t, "Renamed Portal", p.Name)
	assert.Equal(t, StatusClosed, p.Status)

	bad := "x"
	err = p.Apply(ProjectPatch{Name: &bad})
	assert.True(t, IsValidationError(err))
	assert.Equal(t, "Renamed Portal", p.Name, "failed patch leaves project untouched")

	invalid := ProjectStatus("archived")
	assert.True(t, IsValidationError(p.Apply(ProjectPatch{Status: &invalid})))
}

func TestProject_ApplyShrinkingCapacity(t *testing.T) {
	p, err := NewProject(validDraft())
	require.NoError(t, err)
	p.AddMember(User{ID: "d1", Role: RoleDev})

	two := 2
	require.NoError(t, p.Apply(ProjectPatch{MaxParticipants: &two}))
	assert.False(t, p.NeedsDevs, "one dev fills the single remaining dev seat")

	p.AddMember(User{ID: "d2", Role: RoleDev})
	p.AddMember(User{ID: "m1", Role: RoleMentor})
	assert.True(t, IsValidationError(p.Apply(ProjectPatch{MaxParticipants: &two})))
}
