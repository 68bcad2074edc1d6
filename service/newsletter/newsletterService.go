package newslettersvc

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"bagrental/model"
)

var ErrInvalidEmail = errors.New("invalid email")

type Repo interface {
	Subscribe(ctx context.Context, email string) (*model.NewsletterSubscription, error)
	Unsubscribe(ctx context.Context, email string) (bool, error)
}

type Service interface {
	Subscribe(ctx context.Context, email string) (*model.NewsletterSubscription, error)
	Unsubscribe(ctx context.Context, email string) (bool, error)
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func normalize(email string) (string, error) {
	e := strings.ToLower(strings.TrimSpace(email))
	if a, err := mail.ParseAddress(e); err != nil || a.Address != e {
		return "", ErrInvalidEmail
	}
	return e, nil
}

func (s *service) Subscribe(ctx context.Context, email string) (*model.NewsletterSubscription, error) {
	e, err := normalize(email)
	if err != nil {
		return nil, err
	}
	return s.r.Subscribe(ctx, e)
}

func (s *service) Unsubscribe(ctx context.Context, email string) (bool, error) {
	e, err := normalize(email)
	if err != nil {
		return false, err
	}
	return s.r.Unsubscribe(ctx, e)
}
