package services

import (
	"context"

	"github.com/jmoiron/sqlx"

	"storelaunch/internal/domain"
	"storelaunch/internal/repos"
)

type AccessService struct {
	DB *sqlx.DB
}

func NewAccessService(db *sqlx.DB) *AccessService { return &AccessService{DB: db} }

// Capability resolves what the user may do with the store.
func (s *AccessService) Capability(ctx context.Context, u *domain.User, storeID string) (domain.Capability, domain.Store, error) {
	st, err := repos.NewStoreRepo(s.DB).ByID(ctx, storeID)
	if err != nil {
		return domain.CapNone, domain.Store{}, err
	}
	return capabilityFor(u, st), st, nil
}

func capabilityFor(u *domain.User, st domain.Store) domain.Capability {
	switch {
	case u == nil || !u.Active:
		return domain.CapNone
	case u.IsAdmin():
		return domain.CapAdmin
	case u.ID == st.OwnerID:
		return domain.CapOwner
	default:
		return domain.CapNone
	}
}

// RequireManager returns the store when the user owns it or is an admin.
func (s *AccessService) RequireManager(ctx context.Context, u *domain.User, storeID string) (domain.Store, error) {
	if u == nil {
		return domain.Store{}, domain.ErrUnauthorized
	}
	cp, st, err := s.Capability(ctx, u, storeID)
	if err != nil {
		return domain.Store{}, err
	}
	if !cp.CanManage() {
		return domain.Store{}, domain.ErrForbidden
	}
	return st, nil
}

// RequireOwner is RequireManager without the admin override; used for
// settings and plan changes.
func (s *AccessService) RequireOwner(ctx context.Context, u *domain.User, storeID string) (domain.Store, error) {
	if u == nil {
		return domain.Store{}, domain.ErrUnauthorized
	}
	cp, st, err := s.Capability(ctx, u, storeID)
	if err != nil {
		return domain.Store{}, err
	}
	if cp != domain.CapOwner {
		return domain.Store{}, domain.ErrForbidden
	}
	return st, nil
}
