package auth

import (
	"context"
	"errors"
	"testing"

	"bagrental/model"
	authrepo "bagrental/repository/auth"
	jwtutil "bagrental/util/jwt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

// memUsers keeps users by email, like the unique lower(email) index.
type memUsers struct {
	users     map[string]*model.User
	createErr error
}

var _ authrepo.Repo = (*memUsers)(nil)

func newMemUsers() *memUsers { return &memUsers{users: map[string]*model.User{}} }

func (m *memUsers) ByEmail(_ context.Context, email string) (*model.User, error) {
	u, ok := m.users[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) Create(_ context.Context, u *model.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	u.ID = uuid.New()
	cp := *u
	m.users[u.Email] = &cp
	return nil
}

const secret = "test-secret"

func TestRegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	svc := New(newMemUsers(), secret)

	u, tok, err := svc.Register(ctx, model.RegisterReq{FullName: " Ana Lopez ", Email: "Ana@Example.COM", Password: "supersecret"})
	require.NoError(t, err)
	require.Equal(t, "ana@example.com", u.Email)
	require.Equal(t, "Ana Lopez", u.FullName)
	require.Equal(t, model.RoleUser, u.Role)
	require.NotEqual(t, "supersecret", u.PasswordHash)

	claims, err := jwtutil.ParseAuth(tok, secret)
	require.NoError(t, err)
	require.Equal(t, u.ID.String(), claims.Subject)
	require.Equal(t, "ana@example.com", claims.Email)

	logged, _, err := svc.Login(ctx, model.LoginReq{Email: " ANA@example.com", Password: "supersecret"})
	require.NoError(t, err)
	require.Equal(t, u.ID, logged.ID)
}

func TestRegister_Errors(t *testing.T) {
	ctx := context.Background()
	users := newMemUsers()
	svc := New(users, secret)
	_, _, err := svc.Register(ctx, model.RegisterReq{Email: "ana@example.com", Password: "supersecret"})
	require.NoError(t, err)

	for name, tc := range map[string]struct {
		req  model.RegisterReq
		want ErrCode
	}{
		"short password": {model.RegisterReq{Email: "bea@example.com", Password: "123"}, ErrBadInput},
		"blank email":    {model.RegisterReq{Email: "  ", Password: "supersecret"}, ErrBadInput},
		"taken":          {model.RegisterReq{Email: "ANA@example.com", Password: "supersecret"}, ErrEmailTaken},
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := svc.Register(ctx, tc.req)
			require.Equal(t, tc.want, Code(err))
		})
	}
}

func TestRegister_RaceOnUniqueIndex(t *testing.T) {
	users := newMemUsers()
	users.createErr = &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"}
	_, _, err := New(users, secret).Register(context.Background(), model.RegisterReq{Email: "ana@example.com", Password: "supersecret"})
	require.Equal(t, ErrEmailTaken, Code(err))

	users.createErr = errors.New("db down")
	_, _, err = New(users, secret).Register(context.Background(), model.RegisterReq{Email: "ana@example.com", Password: "supersecret"})
	require.Error(t, err)
	require.Equal(t, ErrCode(""), Code(err))
}

func TestLogin_Rejects(t *testing.T) {
	ctx := context.Background()
	svc := New(newMemUsers(), secret)
	_, _, err := svc.Register(ctx, model.RegisterReq{Email: "ana@example.com", Password: "supersecret"})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, model.LoginReq{Email: "ana@example.com", Password: "wrong-password"})
	require.Equal(t, ErrInvalidCreds, Code(err))

	_, _, err = svc.Login(ctx, model.LoginReq{Email: "nobody@example.com", Password: "supersecret"})
	require.Equal(t, ErrInvalidCreds, Code(err))

	_, _, err = svc.Login(ctx, model.LoginReq{Email: "ana@example.com"})
	require.Equal(t, ErrBadInput, Code(err))
}

func TestAdminEmails(t *testing.T) {
	ctx := context.Background()
	svc := New(newMemUsers(), secret, WithAdminEmails([]string{" Boss@Example.com "}))

	u, _, err := svc.Register(ctx, model.RegisterReq{Email: "boss@example.com", Password: "supersecret"})
	require.NoError(t, err)
	require.Equal(t, model.RoleAdmin, u.Role)

	_, tok, err := svc.Login(ctx, model.LoginReq{Email: "boss@example.com", Password: "supersecret"})
	require.NoError(t, err)
	claims, err := jwtutil.ParseAuth(tok, secret)
	require.NoError(t, err)
	require.Equal(t, model.RoleAdmin, claims.Role)
}
