package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civicfix/internal/config"
	domainUser "civicfix/internal/domain/user"
	appErrors "civicfix/pkg/errors"
	"civicfix/pkg/utils"
)

type fakeUserRepo struct {
	byID     map[uuid.UUID]*domainUser.User
	byHandle map[string]*domainUser.User
	byEmail  map[string]*domainUser.User
	byPhone  map[string]*domainUser.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:     make(map[uuid.UUID]*domainUser.User),
		byHandle: make(map[string]*domainUser.User),
		byEmail:  make(map[string]*domainUser.User),
		byPhone:  make(map[string]*domainUser.User),
	}
}

func (f *fakeUserRepo) Create(_ context.Context, u *domainUser.User) error {
	if _, ok := f.byHandle[u.Handle]; ok {
		return domainUser.ErrDuplicateHandle
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return domainUser.ErrDuplicateEmail
	}
	if _, ok := f.byPhone[u.Phone]; ok {
		return domainUser.ErrDuplicatePhone
	}

	u.ID = uuid.New()
	f.byID[u.ID] = u
	f.byHandle[u.Handle] = u
	f.byEmail[u.Email] = u
	f.byPhone[u.Phone] = u
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, userID uuid.UUID) (*domainUser.User, error) {
	if u, ok := f.byID[userID]; ok {
		return u, nil
	}
	return nil, domainUser.ErrUserNotFound
}

func (f *fakeUserRepo) GetByHandle(_ context.Context, handle string) (*domainUser.User, error) {
	if u, ok := f.byHandle[handle]; ok {
		return u, nil
	}
	return nil, domainUser.ErrUserNotFound
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domainUser.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, domainUser.ErrUserNotFound
}

func (f *fakeUserRepo) GetByPhone(_ context.Context, phone string) (*domainUser.User, error) {
	if u, ok := f.byPhone[phone]; ok {
		return u, nil
	}
	return nil, domainUser.ErrUserNotFound
}

func (f *fakeUserRepo) GetAll(_ context.Context) ([]*domainUser.User, error) {
	out := make([]*domainUser.User, 0, len(f.byID))
	for _, u := range f.byID {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUserRepo) UpdateContact(_ context.Context, userID uuid.UUID, email, phone string) error {
	u, ok := f.byID[userID]
	if !ok {
		return domainUser.ErrUserNotFound
	}
	delete(f.byEmail, u.Email)
	delete(f.byPhone, u.Phone)
	u.Email = email
	u.Phone = phone
	f.byEmail[email] = u
	f.byPhone[phone] = u
	return nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, userID uuid.UUID, passwordHash string) error {
	u, ok := f.byID[userID]
	if !ok {
		return domainUser.ErrUserNotFound
	}
	u.PasswordHashed = passwordHash
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeUserRepo) {
	t.Helper()
	repo := newFakeUserRepo()
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpiryHours = 1
	return NewService(repo, cfg), repo
}

func validRegisterRequest() *RegisterRequest {
	return &RegisterRequest{
		Handle:   "jane_reporter",
		Email:    "jane@example.com",
		Phone:    "+12125550123",
		Password: "Sup3rSecret",
	}
}

func TestRegister_Success(t *testing.T) {
	svc, repo := newTestService(t)

	resp, err := svc.Register(context.Background(), validRegisterRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "jane_reporter", resp.User.Handle)
	assert.Equal(t, string(domainUser.RoleMember), resp.User.Role)

	stored, err := repo.GetByHandle(context.Background(), "jane_reporter")
	require.NoError(t, err)
	assert.NotEqual(t, "Sup3rSecret", stored.PasswordHashed)
	assert.True(t, utils.CheckPassword(stored.PasswordHashed, "Sup3rSecret"))
}

func TestRegister_IssuedTokenCarriesIdentity(t *testing.T) {
	svc, repo := newTestService(t)

	resp, err := svc.Register(context.Background(), validRegisterRequest())
	require.NoError(t, err)

	claims, err := utils.ValidateToken(resp.AccessToken, "test-secret")
	require.NoError(t, err)

	stored, err := repo.GetByHandle(context.Background(), "jane_reporter")
	require.NoError(t, err)
	assert.Equal(t, stored.ID, claims.UserID)
	assert.Equal(t, string(domainUser.RoleMember), claims.Role)
}

func TestRegister_DuplicateFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RegisterRequest)
	}{
		{"duplicate handle", func(r *RegisterRequest) {
			r.Email = "other@example.com"
			r.Phone = "+12125550999"
		}},
		{"duplicate email", func(r *RegisterRequest) {
			r.Handle = "someone_else"
			r.Phone = "+12125550999"
		}},
		{"duplicate phone", func(r *RegisterRequest) {
			r.Handle = "someone_else"
			r.Email = "other@example.com"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t)
			ctx := context.Background()

			_, err := svc.Register(ctx, validRegisterRequest())
			require.NoError(t, err)

			second := validRegisterRequest()
			tt.mutate(second)

			_, err = svc.Register(ctx, second)
			require.Error(t, err)
			assert.Equal(t, appErrors.CodeConflict, appErrors.CodeOf(err))
		})
	}
}

func TestRegister_WeakPassword(t *testing.T) {
	svc, _ := newTestService(t)

	req := validRegisterRequest()
	req.Password = "alllowercase"

	_, err := svc.Register(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.CodeValidation, appErrors.CodeOf(err))
}

func TestLogin_ByHandleAndByEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegisterRequest())
	require.NoError(t, err)

	resp, err := svc.Login(ctx, &LoginRequest{Handle: "jane_reporter", Password: "Sup3rSecret"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	resp, err = svc.Login(ctx, &LoginRequest{Handle: "jane@example.com", Password: "Sup3rSecret"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegisterRequest())
	require.NoError(t, err)

	// Unknown handle and wrong password are indistinguishable to the caller.
	_, err = svc.Login(ctx, &LoginRequest{Handle: "nobody", Password: "Sup3rSecret"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, &LoginRequest{Handle: "jane_reporter", Password: "WrongPass1"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, validRegisterRequest())
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, resp.User.ID, &ChangePasswordRequest{
		OldPassword:     "Sup3rSecret",
		NewPassword:     "N3wSecretPass",
		ConfirmPassword: "N3wSecretPass",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &LoginRequest{Handle: "jane_reporter", Password: "Sup3rSecret"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, &LoginRequest{Handle: "jane_reporter", Password: "N3wSecretPass"})
	assert.NoError(t, err)
}

func TestChangePassword_WrongOldPassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, validRegisterRequest())
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, resp.User.ID, &ChangePasswordRequest{
		OldPassword:     "NotTheOldOne1",
		NewPassword:     "N3wSecretPass",
		ConfirmPassword: "N3wSecretPass",
	})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, validRegisterRequest())
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, resp.User.ID, &UpdateProfileRequest{
		Email: "jane.new@example.com",
		Phone: "+12125550999",
	})
	require.NoError(t, err)
	assert.Equal(t, "jane.new@example.com", updated.Email)
	assert.Equal(t, "+12125550999", updated.Phone)
	assert.Equal(t, "jane_reporter", updated.Handle)
}

func TestUpdateProfile_KeepingOwnContactIsNotAConflict(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, validRegisterRequest())
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, resp.User.ID, &UpdateProfileRequest{
		Email: "jane@example.com",
		Phone: "+12125550123",
	})
	assert.NoError(t, err)
}

func TestUpdateProfile_TakenContactConflicts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegisterRequest())
	require.NoError(t, err)

	other := validRegisterRequest()
	other.Handle = "john_reporter"
	other.Email = "john@example.com"
	other.Phone = "+12125550456"
	otherResp, err := svc.Register(ctx, other)
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, otherResp.User.ID, &UpdateProfileRequest{
		Email: "jane@example.com",
		Phone: "+12125550456",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.CodeConflict, appErrors.CodeOf(err))
}

func TestGetAllUsers_ModeratorOnly(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegisterRequest())
	require.NoError(t, err)

	_, err = svc.GetAllUsers(ctx, domainUser.Principal{UserID: uuid.New(), Role: domainUser.RoleMember})
	require.Error(t, err)
	assert.Equal(t, appErrors.CodeForbidden, appErrors.CodeOf(err))

	users, err := svc.GetAllUsers(ctx, domainUser.Principal{UserID: uuid.New(), Role: domainUser.RoleModerator})
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
