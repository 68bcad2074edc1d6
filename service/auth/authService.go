package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"bagrental/model"
	authrepo "bagrental/repository/auth"
	"bagrental/util/database"
	"bagrental/util/hash"
	jwtutil "bagrental/util/jwt"
)

type ErrCode string

const (
	ErrEmailTaken   ErrCode = "EMAIL_TAKEN"
	ErrBadInput     ErrCode = "BAD_INPUT"
	ErrInvalidCreds ErrCode = "INVALID_CREDENTIALS"
)

type codedError struct {
	code ErrCode
	msg  string
}

func (e codedError) Error() string {
	if e.msg != "" {
		return e.msg
	}
	return string(e.code)
}
func (e codedError) Code() ErrCode { return e.code }

func wrap(c ErrCode, msg string) error { return codedError{code: c, msg: msg} }

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

const tokenTTL = 24 * time.Hour

type Service interface {
	Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error)
	Login(ctx context.Context, req model.LoginReq) (*model.User, string, error)
}

type Option func(*service)

// WithAdminEmails grants the admin role to these addresses at register and login.
func WithAdminEmails(emails []string) Option {
	return func(s *service) {
		for _, e := range emails {
			if e = normalizeEmail(e); e != "" {
				s.admins[e] = struct{}{}
			}
		}
	}
}

type service struct {
	r      authrepo.Repo
	secret string
	admins map[string]struct{}
	now    func() time.Time
}

func New(r authrepo.Repo, secret string, opts ...Option) Service {
	s := &service{r: r, secret: secret, admins: map[string]struct{}{}, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

func normalizeEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }

func (s *service) roleFor(u *model.User) string {
	if _, ok := s.admins[normalizeEmail(u.Email)]; ok {
		return model.RoleAdmin
	}
	if u.Role == "" {
		return model.RoleUser
	}
	return u.Role
}

func (s *service) lookup(ctx context.Context, email string) (*model.User, error) {
	u, err := s.r.ByEmail(ctx, email)
	if database.IsNoRows(err) {
		return nil, nil
	}
	return u, err
}

func (s *service) Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error) {
	email := normalizeEmail(req.Email)
	if email == "" || len(req.Password) < 8 {
		return nil, "", wrap(ErrBadInput, "email and a password of at least 8 characters are required")
	}

	existing, err := s.lookup(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", wrap(ErrEmailTaken, "email already registered")
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}
	u := &model.User{
		FullName:     strings.TrimSpace(req.FullName),
		Email:        email,
		PasswordHash: hashed,
	}
	u.Role = s.roleFor(u)

	if err := s.r.Create(ctx, u); err != nil {
		if _, dup := database.UniqueViolation(err); dup {
			return nil, "", wrap(ErrEmailTaken, "email already registered")
		}
		return nil, "", err
	}

	token, err := jwtutil.Issue(s.secret, u.ID.String(), u.Email, u.Role, tokenTTL, s.now())
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *service) Login(ctx context.Context, req model.LoginReq) (*model.User, string, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, "", wrap(ErrBadInput, "email and password are required")
	}
	u, err := s.lookup(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if u == nil || !hash.Check(u.PasswordHash, req.Password) {
		return nil, "", wrap(ErrInvalidCreds, "invalid email or password")
	}
	u.Role = s.roleFor(u)

	token, err := jwtutil.Issue(s.secret, u.ID.String(), u.Email, u.Role, tokenTTL, s.now())
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}
