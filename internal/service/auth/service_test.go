package auth_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/OTRONTO-F/Rinsohot/internal/app"
	"github.com/OTRONTO-F/Rinsohot/internal/config"
	"github.com/OTRONTO-F/Rinsohot/internal/db"
	svcErr "github.com/OTRONTO-F/Rinsohot/internal/errors"
	"github.com/OTRONTO-F/Rinsohot/internal/service/auth"
)

func setupService(t *testing.T) (*auth.Service, *gorm.DB) {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))

	cfg := config.New()
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.TTL = time.Hour

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	appCtx := app.New(cfg, gdb, nil, nil, logger)
	return auth.NewService(appCtx), gdb
}

func registerInput() auth.RegisterInput {
	return auth.RegisterInput{
		Email:     "new@test.com",
		Password:  "secret123",
		FirstName: "New",
		LastName:  "User",
		BirthDate: "1998-04-12",
		Gender:    "female",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	res, err := svc.Register(ctx, registerInput())
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.NotZero(t, res.User.ID)
	assert.Equal(t, "new@test.com", res.User.Email)
	assert.False(t, res.HasPreferences)

	// the issued token round-trips through the token manager
	claims, err := svc.Tokens().Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)

	login, err := svc.Login(ctx, "new@test.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)
	assert.False(t, login.HasPreferences)
}

func TestRegisterNormalizesEmail(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	in := registerInput()
	in.Email = "  MiXeD@Test.Com "
	res, err := svc.Register(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "mixed@test.com", res.User.Email)

	_, err = svc.Login(ctx, "MIXED@TEST.COM", "secret123")
	require.NoError(t, err)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, err := svc.Register(ctx, registerInput())
	require.NoError(t, err)

	_, err = svc.Register(ctx, registerInput())
	require.Error(t, err)
	assert.Equal(t, svcErr.KindConflict, svcErr.KindOf(err))
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	cases := []struct {
		name   string
		mutate func(*auth.RegisterInput)
	}{
		{"missing email", func(in *auth.RegisterInput) { in.Email = "" }},
		{"missing password", func(in *auth.RegisterInput) { in.Password = "" }},
		{"missing first name", func(in *auth.RegisterInput) { in.FirstName = "" }},
		{"bad gender", func(in *auth.RegisterInput) { in.Gender = "other" }},
		{"bad birth date", func(in *auth.RegisterInput) { in.BirthDate = "12/04/1998" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := registerInput()
			tc.mutate(&in)
			_, err := svc.Register(ctx, in)
			require.Error(t, err)
			assert.Equal(t, svcErr.KindValidation, svcErr.KindOf(err))
		})
	}
}

func TestLoginWrongCredentials(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, err := svc.Register(ctx, registerInput())
	require.NoError(t, err)

	_, err = svc.Login(ctx, "new@test.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, svcErr.KindUnauthenticated, svcErr.KindOf(err))

	_, err = svc.Login(ctx, "nobody@test.com", "secret123")
	require.Error(t, err)
	assert.Equal(t, svcErr.KindUnauthenticated, svcErr.KindOf(err))
}

func TestLoginReportsPreferences(t *testing.T) {
	ctx := context.Background()
	svc, gdb := setupService(t)

	res, err := svc.Register(ctx, registerInput())
	require.NoError(t, err)

	pref := db.Preference{UserID: res.User.ID, InterestedIn: "both", MinAge: 20, MaxAge: 35}
	require.NoError(t, gdb.Create(&pref).Error)

	login, err := svc.Login(ctx, "new@test.com", "secret123")
	require.NoError(t, err)
	assert.True(t, login.HasPreferences)
}

func TestTokenManagerRejectsGarbage(t *testing.T) {
	tm := auth.NewTokenManager("secret", time.Hour)

	_, err := tm.Parse("not-a-token")
	require.Error(t, err)

	other := auth.NewTokenManager("different-secret", time.Hour)
	token, err := other.Sign(42)
	require.NoError(t, err)

	_, err = tm.Parse(token)
	require.Error(t, err)
}
