package services

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"storelaunch/internal/domain"
	"storelaunch/internal/repos"
)

type SubscriptionService struct {
	DB     *sqlx.DB
	Access *AccessService
	Now    func() time.Time
}

func NewSubscriptionService(db *sqlx.DB, access *AccessService) *SubscriptionService {
	return &SubscriptionService{DB: db, Access: access, Now: time.Now}
}

// CurrentPlan is a store's plan with its subscription, when one exists.
type CurrentPlan struct {
	Plan         domain.Plan          `json:"plan"`
	Subscription *domain.Subscription `json:"subscription,omitempty"`
}

func (s *SubscriptionService) Plans(ctx context.Context) ([]domain.Plan, error) {
	return repos.NewSubscriptionRepo(s.DB).Plans(ctx)
}

// Current falls back to the plan recorded on the store when it never had
// an explicit subscription.
func (s *SubscriptionService) Current(ctx context.Context, u *domain.User, storeID string) (CurrentPlan, error) {
	st, err := s.Access.RequireManager(ctx, u, storeID)
	if err != nil {
		return CurrentPlan{}, err
	}
	subs := repos.NewSubscriptionRepo(s.DB)
	var out CurrentPlan
	planID := st.SubscriptionPlan
	sub, err := subs.Active(ctx, storeID)
	switch {
	case err == nil:
		out.Subscription = &sub
		planID = sub.PlanID
	case !errors.Is(err, domain.ErrNotFound):
		return CurrentPlan{}, err
	}
	if planID == "" {
		planID = "basic"
	}
	out.Plan, err = subs.Plan(ctx, planID)
	return out, err
}

// ChangePlan switches the store to planID for one month; owners only.
func (s *SubscriptionService) ChangePlan(ctx context.Context, u *domain.User, storeID, planID string) (domain.Subscription, error) {
	if _, err := s.Access.RequireOwner(ctx, u, storeID); err != nil {
		return domain.Subscription{}, err
	}
	var sub domain.Subscription
	err := repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		subs := repos.NewSubscriptionRepo(tx)
		if _, err := subs.Plan(ctx, planID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.Invalid("unknown plan %q", planID)
			}
			return err
		}
		var err error
		sub, err = subs.Replace(ctx, storeID, planID, s.Now().AddDate(0, 1, 0))
		if err != nil {
			return err
		}
		return repos.NewStoreRepo(tx).SetPlan(ctx, storeID, planID)
	})
	return sub, err
}
