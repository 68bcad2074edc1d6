package auth

import (
	"context"

	"bagrental/model"
	"bagrental/util/database"
)

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByEmail(ctx context.Context, email string) (*model.User, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db: db} }

// Create inserts the user and its profile row together.
func (r *repo) Create(ctx context.Context, u *model.User) error {
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	return r.db.WithTx(ctx, func(ctx context.Context) error {
		q := r.db.Q(ctx)
		if err := q.QueryRow(ctx, `
			INSERT INTO users (email, password_hash)
			VALUES ($1, $2)
			RETURNING id, created_at`,
			u.Email, u.PasswordHash,
		).Scan(&u.ID, &u.CreatedAt); err != nil {
			return err
		}
		_, err := q.Exec(ctx, `
			INSERT INTO profiles (user_id, full_name, role)
			VALUES ($1, $2, $3)`,
			u.ID, u.FullName, u.Role,
		)
		return err
	})
}

func (r *repo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	u := &model.User{}
	err := r.db.Q(ctx).QueryRow(ctx, `
		SELECT u.id, COALESCE(p.full_name, ''), u.email, u.password_hash, COALESCE(p.role, 'user'), u.created_at
		FROM users u
		LEFT JOIN profiles p ON p.user_id = u.id
		WHERE lower(u.email) = lower($1)`,
		email,
	).Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}
