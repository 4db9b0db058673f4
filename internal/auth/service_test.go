package auth

import (
	"context"
	"testing"
	"time"

	"blog-platform/internal/config"
	"blog-platform/internal/database"
	"blog-platform/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	byUsername map[string]*models.User
	created    []*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byUsername: make(map[string]*models.User)}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, username, passwordHash string) (*models.User, error) {
	stored := &models.User{ID: "u-" + username, Username: username, PasswordHash: passwordHash}
	f.byUsername[username] = stored
	f.created = append(f.created, stored)
	returned := *stored
	return &returned, nil
}

func (f *fakeUserRepo) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	if user, ok := f.byUsername[username]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, database.ErrNotFound
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (*models.User, error) {
	for _, user := range f.byUsername {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, database.ErrNotFound
}

func newTestService(repo database.UserRepository) *Service {
	return NewService(repo, &config.Config{
		JWT: config.JWTConfig{
			Secret:    []byte("test-secret"),
			ExpiresIn: time.Hour,
		},
	})
}

func TestTokenRoundTrip(t *testing.T) {
	svc := newTestService(newFakeUserRepo())

	token, err := svc.GenerateToken(&models.User{ID: "u1", Username: "alice"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "alice", claims.Username)
}

func TestValidateTokenErrors(t *testing.T) {
	svc := newTestService(newFakeUserRepo())

	t.Run("empty", func(t *testing.T) {
		_, err := svc.ValidateToken("")
		assert.ErrorIs(t, err, ErrMissingToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "u1",
			"exp": time.Now().Add(-time.Minute).Unix(),
		}).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "u1",
			"exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte("other-secret"))
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing subject", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"username": "alice",
			"exp":      time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestSignup(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo)

	user, err := svc.Signup(context.Background(), &models.SignupRequest{
		Username: "  Alice  ",
		Password: "correct horse",
	})
	require.NoError(t, err)

	assert.Equal(t, "alice", user.Username, "usernames are normalized")
	assert.Empty(t, user.PasswordHash, "hash never leaves the service")
	require.Len(t, repo.created, 1)
	assert.NotEqual(t, "correct horse", repo.created[0].PasswordHash)
}

func TestSignupValidation(t *testing.T) {
	svc := newTestService(newFakeUserRepo())
	ctx := context.Background()

	_, err := svc.Signup(ctx, &models.SignupRequest{Username: "", Password: "longenough"})
	assert.Error(t, err)

	_, err = svc.Signup(ctx, &models.SignupRequest{Username: "alice", Password: "short"})
	assert.Error(t, err)

	_, err = svc.Signup(ctx, &models.SignupRequest{Username: "al", Password: "longenough"})
	assert.Error(t, err)
}

func TestLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Signup(ctx, &models.SignupRequest{Username: "alice", Password: "correct horse"})
	require.NoError(t, err)

	t.Run("valid credentials yield a working token", func(t *testing.T) {
		resp, err := svc.Login(ctx, &models.LoginRequest{Username: "Alice", Password: "correct horse"})
		require.NoError(t, err)

		claims, err := svc.ValidateToken(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, &models.LoginRequest{Username: "alice", Password: "wrong"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Login(ctx, &models.LoginRequest{Username: "nobody", Password: "whatever"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
