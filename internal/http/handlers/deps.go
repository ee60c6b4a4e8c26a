package handlers

import (
	"github.com/jmoiron/sqlx"

	"storelaunch/internal/config"
	"storelaunch/internal/services"
)

type Deps struct {
	Auth *services.AuthService

	AuthHandler         *AuthHandler
	StoreHandler        *StoreHandler
	ProductHandler      *ProductHandler
	CartHandler         *CartHandler
	OrderHandler        *OrderHandler
	SubscriptionHandler *SubscriptionHandler
	AdminHandler        *AdminHandler
}

// NewDeps builds the service graph. cache may be nil.
func NewDeps(db *sqlx.DB, cfg config.Config, cache services.SessionCache) *Deps {
	access := services.NewAccessService(db)
	authSvc := services.NewAuthService(db, cfg.SessionTTL, cache)
	catalogSvc := services.NewCatalogService(db, access)
	cartSvc := services.NewCartService(db)
	checkoutSvc := services.NewCheckoutService(db,
		services.StoreShipping{},
		services.PercentTax{Rate: cfg.TaxRate},
		cfg.CheckoutMaxAttempts, cfg.CheckoutBackoff)
	orderSvc := services.NewOrderService(db, access)
	subSvc := services.NewSubscriptionService(db, access)
	adminSvc := services.NewAdminService(db, authSvc)

	return &Deps{
		Auth:                authSvc,
		AuthHandler:         &AuthHandler{Auth: authSvc},
		StoreHandler:        &StoreHandler{Catalog: catalogSvc},
		ProductHandler:      &ProductHandler{Catalog: catalogSvc},
		CartHandler:         &CartHandler{Cart: cartSvc, Checkout: checkoutSvc},
		OrderHandler:        &OrderHandler{Orders: orderSvc},
		SubscriptionHandler: &SubscriptionHandler{Subs: subSvc},
		AdminHandler:        &AdminHandler{Admin: adminSvc},
	}
}
