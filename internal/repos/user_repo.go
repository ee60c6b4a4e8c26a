package repos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"storelaunch/internal/domain"
)

const userCols = `id, email, phone, password_hash, role, full_name, preferred_language, is_active, created_at`

// sqliteTime matches datetime('now') so stored times compare as text.
const sqliteTime = "2006-01-02 15:04:05"

type UserRepo struct{ q sqlx.ExtContext }

func NewUserRepo(q sqlx.ExtContext) *UserRepo { return &UserRepo{q: q} }

// ProfilePatch holds optional profile fields; nil fields are left untouched.
type ProfilePatch struct {
	FullName          *string
	Phone             *string
	PreferredLanguage *string
}

func (r *UserRepo) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := sqlx.GetContext(ctx, r.q, &u, `SELECT `+userCols+` FROM users WHERE LOWER(email)=LOWER(?)`, email)
	if err != nil {
		return nil, noRows(err, "user")
	}
	return &u, nil
}

func (r *UserRepo) ByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := sqlx.GetContext(ctx, r.q, &u, `SELECT `+userCols+` FROM users WHERE id=?`, id)
	if err != nil {
		return nil, noRows(err, "user")
	}
	return &u, nil
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) error {
	_, err := r.q.ExecContext(ctx, `
	  INSERT INTO users(id, email, phone, password_hash, role, full_name, preferred_language)
	  VALUES(?,?,?,?,?,?,?)`, u.ID, u.Email, u.Phone, u.Hash, u.Role, u.FullName, u.PreferredLanguage)
	return err
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	out := []domain.User{}
	err := sqlx.SelectContext(ctx, r.q, &out, `SELECT `+userCols+` FROM users ORDER BY created_at DESC, email`)
	return out, err
}

func (r *UserRepo) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE users SET is_active=?, updated_at=datetime('now') WHERE id=?`, active, id)
	if err != nil {
		return err
	}
	return mustAffect(res, "user")
}

func (r *UserRepo) UpdateProfile(ctx context.Context, id string, p ProfilePatch) error {
	res, err := r.q.ExecContext(ctx, `
	  UPDATE users SET
	    full_name          = COALESCE(?, full_name),
	    phone              = COALESCE(?, phone),
	    preferred_language = COALESCE(?, preferred_language),
	    updated_at         = datetime('now')
	  WHERE id=?`, p.FullName, p.Phone, p.PreferredLanguage, id)
	if err != nil {
		return err
	}
	return mustAffect(res, "user")
}

func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.q, &n, `SELECT COUNT(*) FROM users`)
	return n, err
}

// BindSession stores a bearer token for the user until expires.
func (r *UserRepo) BindSession(ctx context.Context, token, userID string, expires time.Time) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO sessions(token, user_id, expires_at) VALUES(?,?,?)`,
		token, userID, expires.UTC().Format(sqliteTime))
	return err
}

// SessionUser resolves an unexpired token to its user.
func (r *UserRepo) SessionUser(ctx context.Context, token string) (*domain.User, error) {
	var u domain.User
	err := sqlx.GetContext(ctx, r.q, &u, `
	  SELECT u.id, u.email, u.phone, u.password_hash, u.role, u.full_name, u.preferred_language, u.is_active, u.created_at
	  FROM sessions s JOIN users u ON u.id = s.user_id
	  WHERE s.token=? AND s.expires_at > datetime('now')`, token)
	if err != nil {
		return nil, noRows(err, "session")
	}
	return &u, nil
}

func (r *UserRepo) UnbindSession(ctx context.Context, token string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM sessions WHERE token=?`, token)
	return err
}

// UnbindAll drops every session of the user, e.g. on deactivation.
func (r *UserRepo) UnbindAll(ctx context.Context, userID string) ([]string, error) {
	var tokens []string
	if err := sqlx.SelectContext(ctx, r.q, &tokens, `SELECT token FROM sessions WHERE user_id=?`, userID); err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`DELETE FROM sessions WHERE token IN (?)`, tokens)
	if err != nil {
		return nil, err
	}
	_, err = r.q.ExecContext(ctx, r.q.Rebind(query), args...)
	return tokens, err
}
