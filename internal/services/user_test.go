package services

import (
	"context"
	"testing"

	"github.com/projeto-integrador-integra/integra-backend/internal/config"
	"github.com/projeto-integrador-integra/integra-backend/internal/models"
	"github.com/projeto-integrador-integra/integra-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRegister(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	identity := models.Identity{Subject: "sub-ana", Email: "ana@integra.dev"}

	user, err := f.users.Register(ctx, identity, &RegisterUserRequest{Name: "Ana Souza", Role: "dev"})
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalPending, user.ApprovalStatus)
	assert.Equal(t, models.RoleDev, user.Role)
	assert.Equal(t, "sub-ana", user.Sub)

	_, err = f.users.Register(ctx, identity, &RegisterUserRequest{Name: "Ana Souza", Role: "dev"})
	assertCode(t, err, "USER_ALREADY_EXISTS")

	_, err = f.users.Register(ctx, models.Identity{Subject: "other", Email: "ana@integra.dev"}, &RegisterUserRequest{Name: "Ana", Role: "dev"})
	assertCode(t, err, "USER_ALREADY_EXISTS")

	_, err = f.users.Register(ctx, models.Identity{Subject: "sub-x"}, &RegisterUserRequest{Name: "X", Role: "dev"})
	assertCode(t, err, "USER_NOT_AUTHENTICATED")
}

func TestUserRegister_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	tests := []struct {
		name string
		req  RegisterUserRequest
	}{
		{"admin role", RegisterUserRequest{Name: "Root", Role: "admin"}},
		{"unknown role", RegisterUserRequest{Name: "Root", Role: "owner"}},
		{"empty name", RegisterUserRequest{Name: "", Role: "dev"}},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity := models.Identity{Subject: tt.name, Email: string(rune('a'+i)) + "@integra.dev"}
			_, err := f.users.Register(ctx, identity, &tt.req)
			assertCode(t, err, "VALIDATION_ERROR")
		})
	}
}

func TestUserUpdate_Permissions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	self := f.user(t, "bruno", models.RoleDev)
	other := f.user(t, "carla", models.RoleDev)

	name := "Bruno Lima"
	admin := string(models.RoleAdmin)
	user, err := f.users.Update(ctx, self, self.ID, &UpdateUserRequest{Name: &name, Role: &admin})
	require.NoError(t, err)
	assert.Equal(t, name, user.Name)
	assert.Equal(t, models.RoleDev, user.Role, "role changes are reserved to admins")

	_, err = f.users.Update(ctx, self, other.ID, &UpdateUserRequest{Name: &name})
	assertCode(t, err, "USER_NOT_AUTHORIZED")

	mentor := string(models.RoleMentor)
	user, err = f.users.Update(ctx, f.admin, other.ID, &UpdateUserRequest{Role: &mentor})
	require.NoError(t, err)
	assert.Equal(t, models.RoleMentor, user.Role)

	_, err = f.users.Update(ctx, f.admin, "missing", &UpdateUserRequest{Name: &name})
	assertCode(t, err, "USER_NOT_FOUND")
}

func TestUserUpdate_ApprovalSendsWelcome(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user, err := f.users.Register(ctx, models.Identity{Subject: "sub-dani", Email: "dani@integra.dev"}, &RegisterUserRequest{Name: "Dani", Role: "mentor"})
	require.NoError(t, err)

	approved := string(models.ApprovalApproved)
	_, err = f.users.Update(ctx, f.admin, user.ID, &UpdateUserRequest{ApprovalStatus: &approved})
	require.NoError(t, err)

	name := "Daniela"
	_, err = f.users.Update(ctx, f.admin, user.ID, &UpdateUserRequest{Name: &name, ApprovalStatus: &approved})
	require.NoError(t, err)

	assert.Equal(t, []string{"dani@integra.dev"}, f.notifier.welcomed, "welcome is sent on the transition only")
}

func TestUserList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.user(t, "eva", models.RoleDev)
	f.user(t, "fabio", models.RoleMentor)

	page, err := f.users.List(ctx, repository.UserFilter{Role: models.RoleMentor})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "fabio", page.Items[0].Name)
	assert.Equal(t, int64(1), page.Total)
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cfg := &config.AdminConfig{Email: "root@integra.dev", Sub: "sub-root"}

	require.NoError(t, f.users.EnsureAdmin(ctx, cfg))
	require.NoError(t, f.users.EnsureAdmin(ctx, cfg))

	admin, err := f.users.GetBySub(ctx, "sub-root")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.True(t, admin.IsApproved())
	assert.Equal(t, "Integra Admin", admin.Name)

	page, err := f.users.List(ctx, repository.UserFilter{Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	assert.NoError(t, f.users.EnsureAdmin(ctx, &config.AdminConfig{}))
}
