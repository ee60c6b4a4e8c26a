package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"storelaunch/internal/domain"
	"storelaunch/internal/repos"
)

var ErrBadCreds = fmt.Errorf("invalid email or password: %w", domain.ErrUnauthorized)

// SessionCache fronts the sessions table. Implementations must be safe for
// concurrent use; a miss falls back to the database.
type SessionCache interface {
	Get(ctx context.Context, token string) (userID string, ok bool)
	Set(ctx context.Context, token, userID string, ttl time.Duration)
	Delete(ctx context.Context, tokens ...string)
}

type AuthService struct {
	DB    *sqlx.DB
	TTL   time.Duration
	Cache SessionCache // optional
}

func NewAuthService(db *sqlx.DB, ttl time.Duration, cache SessionCache) *AuthService {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &AuthService{DB: db, TTL: ttl, Cache: cache}
}

type Registration struct {
	Email             string
	Password          string
	FullName          string
	Phone             string
	Role              string
	PreferredLanguage string
}

var reSlugStrip = regexp.MustCompile(`[^a-z0-9]`)

// Register creates the account and signs it in. A store owner also gets an
// empty store on the basic plan.
func (s *AuthService) Register(ctx context.Context, r Registration) (*domain.User, string, error) {
	if r.Role != domain.RoleStoreOwner && r.Role != domain.RoleCustomer {
		return nil, "", domain.Invalid("role must be store_owner or customer")
	}
	if r.PreferredLanguage == "" {
		r.PreferredLanguage = "en"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(r.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}
	u := domain.User{
		ID:                uuid.NewString(),
		Email:             strings.ToLower(strings.TrimSpace(r.Email)),
		Phone:             r.Phone,
		Hash:              string(hash),
		Role:              r.Role,
		FullName:          r.FullName,
		PreferredLanguage: r.PreferredLanguage,
		Active:            true,
	}
	token := uuid.NewString()
	err = repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		users := repos.NewUserRepo(tx)
		if _, err := users.ByEmail(ctx, u.Email); err == nil {
			return domain.Invalid("email already registered")
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if err := users.Create(ctx, u); err != nil {
			if repos.IsUniqueViolation(err) {
				return domain.Invalid("email already registered")
			}
			return err
		}
		if u.Role == domain.RoleStoreOwner {
			name := u.FullName
			if name == "" {
				name = "My Store"
			}
			local, _, _ := strings.Cut(u.Email, "@")
			st := domain.Store{
				ID:               uuid.NewString(),
				OwnerID:          u.ID,
				Name:             name,
				Slug:             reSlugStrip.ReplaceAllString(local, "") + "-" + u.ID[:8],
				SubscriptionPlan: "basic",
			}
			if err := repos.NewStoreRepo(tx).Create(ctx, st); err != nil {
				return err
			}
		}
		return users.BindSession(ctx, token, u.ID, time.Now().Add(s.TTL))
	})
	if err != nil {
		return nil, "", err
	}
	created, err := repos.NewUserRepo(s.DB).ByID(ctx, u.ID)
	if err != nil {
		return nil, "", err
	}
	return created, token, nil
}

// Login checks the credentials and issues a bearer token. When the caller
// was browsing anonymously, its carts are carried over to the account.
func (s *AuthService) Login(ctx context.Context, email, password, anonSession string) (*domain.User, string, error) {
	users := repos.NewUserRepo(s.DB)
	u, err := users.ByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", ErrBadCreds
		}
		return nil, "", err
	}
	if !u.Active {
		return nil, "", ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, "", ErrBadCreds
	}
	token := uuid.NewString()
	err = repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		if err := repos.NewUserRepo(tx).BindSession(ctx, token, u.ID, time.Now().Add(s.TTL)); err != nil {
			return err
		}
		if anonSession == "" {
			return nil
		}
		return repos.NewCartRepo(tx).AdoptSession(ctx, anonSession, u.ID)
	})
	if err != nil {
		return nil, "", err
	}
	if s.Cache != nil {
		s.Cache.Set(ctx, token, u.ID, s.TTL)
	}
	return u, token, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	if s.Cache != nil {
		s.Cache.Delete(ctx, token)
	}
	return repos.NewUserRepo(s.DB).UnbindSession(ctx, token)
}

// CurrentUser resolves a bearer token. Unknown, expired or deactivated
// accounts are ErrUnauthorized.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}
	users := repos.NewUserRepo(s.DB)
	var (
		u   *domain.User
		err error
	)
	if s.Cache != nil {
		if uid, ok := s.Cache.Get(ctx, token); ok {
			u, err = users.ByID(ctx, uid)
		}
	}
	if u == nil {
		u, err = users.SessionUser(ctx, token)
		if err == nil && s.Cache != nil {
			s.Cache.Set(ctx, token, u.ID, s.TTL)
		}
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if !u.Active {
		return nil, domain.ErrUnauthorized
	}
	return u, nil
}

type ProfileUpdate struct {
	FullName          *string
	Phone             *string
	PreferredLanguage *string
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, p ProfileUpdate) (*domain.User, error) {
	if p.PreferredLanguage != nil && *p.PreferredLanguage != "en" && *p.PreferredLanguage != "ar" {
		return nil, domain.Invalid("preferredLanguage must be en or ar")
	}
	users := repos.NewUserRepo(s.DB)
	if err := users.UpdateProfile(ctx, userID, repos.ProfilePatch{
		FullName:          p.FullName,
		Phone:             p.Phone,
		PreferredLanguage: p.PreferredLanguage,
	}); err != nil {
		return nil, err
	}
	return users.ByID(ctx, userID)
}

// Revoke drops every session of the user, cache included.
func (s *AuthService) Revoke(ctx context.Context, userID string) error {
	tokens, err := repos.NewUserRepo(s.DB).UnbindAll(ctx, userID)
	if err != nil {
		return err
	}
	if s.Cache != nil && len(tokens) > 0 {
		s.Cache.Delete(ctx, tokens...)
	}
	return nil
}
