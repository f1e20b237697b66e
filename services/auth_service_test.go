package services

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"lablinc/constants"
	"lablinc/dto"
	apperrors "lablinc/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGoogle struct {
	identity *GoogleIdentity
	err      error
}

func (f fakeGoogle) Verify(context.Context, string) (*GoogleIdentity, error) {
	return f.identity, f.err
}

func newAuthService(t *testing.T, env *testEnv, google GoogleVerifier) (*AuthService, *TokenService) {
	t.Helper()
	tokens := NewTokenService("test-secret", time.Hour)
	return NewAuthService(AuthServiceOptions{DB: env.db, Logger: env.log, Tokens: tokens, Google: google}), tokens
}

func registerInput() dto.RegisterInput {
	return dto.RegisterInput{
		Name:         "Acme Polymers",
		Email:        "Ops@Acme.example",
		Password:     "correct horse",
		PhoneNumber:  "9876543210",
		Role:         constants.RoleMSME,
		Organization: "Acme",
	}
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	auth, tokens := newAuthService(t, env, nil)

	res, err := auth.Register(ctx, registerInput())
	require.NoError(t, err)
	assert.Equal(t, "ops@acme.example", res.User.Email)
	assert.NotEqual(t, "correct horse", res.User.Password)

	id, role, err := tokens.Parse(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, id)
	assert.Equal(t, constants.RoleMSME, role)

	_, err = auth.Register(ctx, registerInput())
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeUserExists))

	admin := registerInput()
	admin.Email, admin.PhoneNumber, admin.Role = "root@acme.example", "9000000000", constants.RoleAdmin
	_, err = auth.Register(ctx, admin)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidRole))

	byEmail, err := auth.Login(ctx, dto.LoginInput{Identifier: "OPS@acme.example", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, byEmail.User.ID)

	_, err = auth.Login(ctx, dto.LoginInput{Identifier: "9876543210", Password: "correct horse"})
	require.NoError(t, err)

	_, err = auth.Login(ctx, dto.LoginInput{Identifier: "9876543210", Password: "wrong"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidLogin))
	_, err = auth.Login(ctx, dto.LoginInput{Identifier: "nobody@acme.example", Password: "wrong"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidLogin))

	require.NoError(t, env.db.Model(res.User).Update("status", constants.UserStatusInactive).Error)
	_, err = auth.Login(ctx, dto.LoginInput{Identifier: "9876543210", Password: "correct horse"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeUserInactive))
}

func TestAuthService_GoogleLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	auth, _ := newAuthService(t, env, nil)
	_, err := auth.GoogleLogin(ctx, dto.GoogleLoginInput{Token: "t"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeUnauthorized))

	auth, _ = newAuthService(t, env, fakeGoogle{err: stderrors.New("bad audience")})
	_, err = auth.GoogleLogin(ctx, dto.GoogleLoginInput{Token: "t"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidToken))

	identity := &GoogleIdentity{Subject: "g-123", Email: "Lab@IISc.example", Name: "IISc Lab"}
	auth, _ = newAuthService(t, env, fakeGoogle{identity: identity})

	first, err := auth.GoogleLogin(ctx, dto.GoogleLoginInput{Token: "t", Role: constants.RoleInstitute})
	require.NoError(t, err)
	assert.Equal(t, constants.RoleInstitute, first.User.Role)
	assert.Equal(t, "lab@iisc.example", first.User.Email)

	again, err := auth.GoogleLogin(ctx, dto.GoogleLoginInput{Token: "t"})
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, again.User.ID)
	assert.Equal(t, constants.RoleInstitute, again.User.Role)
}

func TestAuthService_GoogleLinksExistingAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	auth, _ := newAuthService(t, env, fakeGoogle{identity: &GoogleIdentity{Subject: "g-9", Email: "ops@acme.example"}})

	plain, _ := newAuthService(t, env, nil)
	reg, err := plain.Register(ctx, registerInput())
	require.NoError(t, err)

	res, err := auth.GoogleLogin(ctx, dto.GoogleLoginInput{Token: "t"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, res.User.ID)

	user, err := auth.Profile(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "g-9", user.GoogleID)
}

func TestAuthService_ProfileAndSettings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	auth, _ := newAuthService(t, env, nil)

	reg, err := auth.Register(ctx, registerInput())
	require.NoError(t, err)
	taken := env.user(t, constants.RoleMSME)

	city := " Chennai "
	user, err := auth.UpdateProfile(ctx, reg.User.ID, dto.UpdateProfileInput{City: &city})
	require.NoError(t, err)
	assert.Equal(t, "Chennai", user.City)
	assert.Equal(t, "Acme Polymers", user.Name)

	_, err = auth.UpdateProfile(ctx, reg.User.ID, dto.UpdateProfileInput{PhoneNumber: &taken.PhoneNumber})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeUserExists))

	err = auth.ChangePassword(ctx, reg.User.ID, dto.ChangePasswordInput{OldPassword: "nope", NewPassword: "new password"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidPassword))
	require.NoError(t, auth.ChangePassword(ctx, reg.User.ID, dto.ChangePasswordInput{OldPassword: "correct horse", NewPassword: "new password"}))
	_, err = auth.Login(ctx, dto.LoginInput{Identifier: "ops@acme.example", Password: "new password"})
	require.NoError(t, err)

	on, off := true, false
	user, err = auth.UpdateSettings(ctx, reg.User.ID, dto.SettingsInput{SMSNotifications: &on, EmailNotifications: &off})
	require.NoError(t, err)
	assert.True(t, user.SMSNotifications)
	assert.False(t, user.EmailNotifications)

	_, err = auth.Profile(ctx, 4242)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeUserNotFound))
}
