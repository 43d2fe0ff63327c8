package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labgiga/lending-service/internal/errs"
	"github.com/labgiga/lending-service/internal/model"
	authsvc "github.com/labgiga/lending-service/internal/service/auth"
	"github.com/labgiga/lending-service/pkg/auth"
	"github.com/labgiga/lending-service/pkg/tokenstore"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type fakeUsers struct {
	byEmail map[string]model.User
	byID    map[string]model.User
}

func (f *fakeUsers) CreateUser(ctx context.Context, email, passwordHash, name, nrp string) (model.User, error) {
	if _, ok := f.byEmail[email]; ok {
		return model.User{}, errs.ErrEmailTaken
	}
	u := model.User{ID: "u-" + name, Email: email, PasswordHash: passwordHash, Name: name, Role: model.RoleUser}
	f.byEmail[email] = u
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUsers) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return model.User{}, errs.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetUserByID(ctx context.Context, id string) (model.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return model.User{}, errs.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) UpdateProfile(ctx context.Context, id string, req model.UpdateProfileRequest) (model.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return model.User{}, errs.ErrNotFound
	}
	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Nrp != nil {
		u.Nrp = req.Nrp
	}
	if req.StudentCardURL != nil {
		u.StudentCardURL = req.StudentCardURL
	}
	f.byID[id] = u
	f.byEmail[u.Email] = u
	return u, nil
}

func newAuthService(t *testing.T) (*authsvc.Service, *fakeUsers, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	tokens := tokenstore.New(tokenstore.Config{Addr: mr.Addr()})
	t.Cleanup(func() { _ = tokens.Close() })
	users := &fakeUsers{
		byEmail: make(map[string]model.User),
		byID:    make(map[string]model.User),
	}
	cfg := auth.Config{SigningKey: "test-key", AccessTTL: time.Hour, RefreshTTL: time.Hour}
	return authsvc.NewService(users, tokens, cfg, zap.NewExample().Named("test")), users, mr
}

func TestService_RegisterLogin(t *testing.T) {
	t.Parallel()
	svc, _, _ := newAuthService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, model.RegisterRequest{
		Email:    "budi@labgiga.id",
		Password: "hunter2hunter2",
		Name:     "budi",
	})
	require.NoError(t, err)
	require.NotEmpty(t, reg.AccessToken)
	require.NotEmpty(t, reg.RefreshToken)
	require.Equal(t, model.RoleUser, reg.User.Role)

	login, err := svc.Login(ctx, model.LoginRequest{Email: "budi@labgiga.id", Password: "hunter2hunter2"})
	require.NoError(t, err)
	require.NotEmpty(t, login.AccessToken)

	_, err = svc.Login(ctx, model.LoginRequest{Email: "budi@labgiga.id", Password: "wrong"})
	require.ErrorIs(t, err, errs.ErrInvalidCredentials)

	_, err = svc.Login(ctx, model.LoginRequest{Email: "nobody@labgiga.id", Password: "hunter2hunter2"})
	require.ErrorIs(t, err, errs.ErrInvalidCredentials)
}

func TestService_RefreshRotation(t *testing.T) {
	t.Parallel()
	svc, _, mr := newAuthService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, model.RegisterRequest{
		Email:    "siti@labgiga.id",
		Password: "hunter2hunter2",
		Name:     "siti",
	})
	require.NoError(t, err)
	require.Len(t, mr.Keys(), 1)

	next, err := svc.Refresh(ctx, reg.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, reg.RefreshToken, next.RefreshToken)

	// rotation replaces the token instead of piling up a second one
	require.Len(t, mr.Keys(), 1)

	// the spent token is gone
	_, err = svc.Refresh(ctx, reg.RefreshToken)
	require.ErrorIs(t, err, errs.ErrInvalidCredentials)

	// the handed-back token is the live one in the store
	_, err = svc.Refresh(ctx, next.RefreshToken)
	require.NoError(t, err)
	require.Len(t, mr.Keys(), 1)
}

func TestService_Logout(t *testing.T) {
	t.Parallel()
	svc, _, _ := newAuthService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, model.RegisterRequest{
		Email:    "agus@labgiga.id",
		Password: "hunter2hunter2",
		Name:     "agus",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, reg.RefreshToken))
	_, err = svc.Refresh(ctx, reg.RefreshToken)
	require.ErrorIs(t, err, errs.ErrInvalidCredentials)
}

func TestService_ProfileFailsClosed(t *testing.T) {
	t.Parallel()
	svc, users, _ := newAuthService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, model.RegisterRequest{
		Email:    "dewi@labgiga.id",
		Password: "hunter2hunter2",
		Name:     "dewi",
	})
	require.NoError(t, err)

	u, err := svc.Profile(ctx, reg.User.ID)
	require.NoError(t, err)
	require.Equal(t, "dewi", u.Name)

	delete(users.byID, reg.User.ID)
	_, err = svc.Profile(ctx, reg.User.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestService_UpdateProfile(t *testing.T) {
	t.Parallel()
	svc, _, _ := newAuthService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, model.RegisterRequest{
		Email:    "rina@labgiga.id",
		Password: "hunter2hunter2",
		Name:     "rina",
	})
	require.NoError(t, err)

	name := "Rina S."
	u, err := svc.UpdateProfile(ctx, reg.User.ID, model.UpdateProfileRequest{Name: &name})
	require.NoError(t, err)
	require.Equal(t, name, u.Name)

	// empty patch is a read, not a write
	u, err = svc.UpdateProfile(ctx, reg.User.ID, model.UpdateProfileRequest{})
	require.NoError(t, err)
	require.Equal(t, name, u.Name)
}

func TestBcryptHashRoundTrip(t *testing.T) {
	t.Parallel()
	svc, users, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, model.RegisterRequest{
		Email:    "tono@labgiga.id",
		Password: "hunter2hunter2",
		Name:     "tono",
	})
	require.NoError(t, err)

	stored := users.byEmail["tono@labgiga.id"]
	require.NotEqual(t, "hunter2hunter2", stored.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("hunter2hunter2")))
}
