package services

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"storelaunch/internal/domain"
	"storelaunch/internal/repos"
)

// AdminService backs the platform console. Callers must already hold the
// admin role; every mutation is written to the audit log in the same
// transaction.
type AdminService struct {
	DB   *sqlx.DB
	Auth *AuthService
}

func NewAdminService(db *sqlx.DB, auth *AuthService) *AdminService {
	return &AdminService{DB: db, Auth: auth}
}

type Stats struct {
	Users   int             `json:"users"`
	Stores  int             `json:"stores"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

func (s *AdminService) Users(ctx context.Context) ([]domain.User, error) {
	return repos.NewUserRepo(s.DB).List(ctx)
}

// SetUserActive toggles an account. Deactivation also ends its sessions.
func (s *AdminService) SetUserActive(ctx context.Context, admin *domain.User, userID string, active bool) (*domain.User, error) {
	err := repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		if err := repos.NewUserRepo(tx).SetActive(ctx, userID, active); err != nil {
			return err
		}
		return repos.NewAuditRepo(tx).Record(ctx, admin.ID, "user_update", "user", userID,
			map[string]any{"isActive": active})
	})
	if err != nil {
		return nil, err
	}
	if !active && s.Auth != nil {
		if err := s.Auth.Revoke(ctx, userID); err != nil {
			return nil, err
		}
	}
	return repos.NewUserRepo(s.DB).ByID(ctx, userID)
}

func (s *AdminService) Stores(ctx context.Context) ([]repos.StoreWithOwner, error) {
	return repos.NewStoreRepo(s.DB).ListWithOwners(ctx)
}

// SetStoreSuspended hides or restores a storefront.
func (s *AdminService) SetStoreSuspended(ctx context.Context, admin *domain.User, storeID string, suspended bool) (domain.Store, error) {
	action := "store_restore"
	if suspended {
		action = "store_suspend"
	}
	err := repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		if err := repos.NewStoreRepo(tx).SetSuspended(ctx, storeID, suspended); err != nil {
			return err
		}
		return repos.NewAuditRepo(tx).Record(ctx, admin.ID, action, "store", storeID, nil)
	})
	if err != nil {
		return domain.Store{}, err
	}
	return repos.NewStoreRepo(s.DB).ByID(ctx, storeID)
}

func (s *AdminService) AuditLog(ctx context.Context) ([]domain.AuditEntry, error) {
	return repos.NewAuditRepo(s.DB).Latest(ctx, 200)
}

func (s *AdminService) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	var err error
	if st.Users, err = repos.NewUserRepo(s.DB).Count(ctx); err != nil {
		return st, err
	}
	if st.Stores, err = repos.NewStoreRepo(s.DB).Count(ctx); err != nil {
		return st, err
	}
	st.Orders, st.Revenue, err = repos.NewOrderRepo(s.DB).PaidTotals(ctx)
	return st, err
}
