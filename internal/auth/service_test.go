package auth

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/brightkids/activity-booking-backend/config"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&User{}))

	cfg := &config.Config{
		JWTAccessSecret:    "access-secret",
		JWTRefreshSecret:   "refresh-secret",
		JWTAccessTTLHours:  1,
		JWTRefreshTTLHours: 24,
		AdminEmail:         "admin@test.local",
		AdminPassword:      "super-secret-pw",
	}
	return NewService(NewRepository(db), cfg)
}

func TestLoginRoundTrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, CreateUserRequest{
		FullName: "Sam Staff",
		Email:    "sam@test.local",
		Password: "password123",
		Role:     RoleStaff,
	})
	require.NoError(t, err)

	tokens, user, err := svc.Login(ctx, LoginRequest{Email: "sam@test.local", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, RoleStaff, user.Role)

	access, err := svc.Refresh(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, access)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, CreateUserRequest{
		FullName: "Sam Staff",
		Email:    "sam@test.local",
		Password: "password123",
		Role:     RoleStaff,
	})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, LoginRequest{Email: "sam@test.local", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, LoginRequest{Email: "nobody@test.local", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, CreateUserRequest{
		FullName: "Sam Staff",
		Email:    "sam@test.local",
		Password: "password123",
		Role:     RoleStaff,
	})
	require.NoError(t, err)

	tokens, _, err := svc.Login(ctx, LoginRequest{Email: "sam@test.local", Password: "password123"})
	require.NoError(t, err)

	// Access tokens are signed with a different secret.
	_, err = svc.Refresh(ctx, tokens.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSeedAdminUserIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SeedAdminUser(ctx))
	require.NoError(t, svc.SeedAdminUser(ctx))

	_, user, err := svc.Login(ctx, LoginRequest{Email: "admin@test.local", Password: "super-secret-pw"})
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, user.Role)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
