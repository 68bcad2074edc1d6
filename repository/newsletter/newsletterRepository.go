package newsletterrepo

import (
	"context"

	"bagrental/model"
	"bagrental/util/database"
)

type Repo interface {
	Subscribe(ctx context.Context, email string) (*model.NewsletterSubscription, error)
	Unsubscribe(ctx context.Context, email string) (bool, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db: db} }

// Subscribe is idempotent; subscribing again clears unsubscribed_at.
func (r *repo) Subscribe(ctx context.Context, email string) (*model.NewsletterSubscription, error) {
	const q = `
		INSERT INTO newsletter_subscriptions (email)
		VALUES ($1)
		ON CONFLICT ((lower(email))) DO UPDATE
		SET unsubscribed_at = NULL
		RETURNING id, email, subscribed_at, unsubscribed_at`
	var s model.NewsletterSubscription
	if err := r.db.Q(ctx).QueryRow(ctx, q, email).Scan(&s.ID, &s.Email, &s.SubscribedAt, &s.UnsubscribedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repo) Unsubscribe(ctx context.Context, email string) (bool, error) {
	tag, err := r.db.Q(ctx).Exec(ctx, `
		UPDATE newsletter_subscriptions
		SET unsubscribed_at = NOW()
		WHERE lower(email) = lower($1) AND unsubscribed_at IS NULL`, email)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
