package domain

import "github.com/shopspring/decimal"

type Store struct {
	ID               string `db:"id" json:"id"`
	OwnerID          string `db:"owner_id" json:"ownerId"`
	Name             string `db:"name" json:"name"`
	Slug             string `db:"slug" json:"slug"`
	Description      string `db:"description" json:"description"`
	LogoURL          string `db:"logo_url" json:"logoUrl"`
	Theme            string `db:"theme" json:"theme"`
	ThemeColors      string `db:"theme_colors" json:"themeColors,omitempty"` // raw JSON
	SubscriptionPlan string `db:"subscription_plan" json:"subscriptionPlan"`
	Active           bool   `db:"is_active" json:"isActive"`
	Suspended        bool   `db:"is_suspended" json:"isSuspended"`
	CreatedAt        string `db:"created_at" json:"createdAt"`
	UpdatedAt        string `db:"updated_at" json:"updatedAt"`
}

// Open reports whether the storefront accepts browsing and purchases.
func (s Store) Open() bool { return s.Active && !s.Suspended }

type Category struct {
	ID        string `db:"id" json:"id"`
	StoreID   string `db:"store_id" json:"storeId"`
	NameEn    string `db:"name_en" json:"nameEn"`
	NameAr    string `db:"name_ar" json:"nameAr"`
	ParentID  string `db:"parent_id" json:"parentId,omitempty"`
	CreatedAt string `db:"created_at" json:"createdAt"`
}

type Product struct {
	ID             string          `db:"id" json:"id"`
	StoreID        string          `db:"store_id" json:"storeId"`
	CategoryID     string          `db:"category_id" json:"categoryId,omitempty"`
	NameEn         string          `db:"name_en" json:"nameEn"`
	NameAr         string          `db:"name_ar" json:"nameAr"`
	DescriptionEn  string          `db:"description_en" json:"descriptionEn"`
	DescriptionAr  string          `db:"description_ar" json:"descriptionAr"`
	Price          decimal.Decimal `db:"price" json:"price"`
	CompareAtPrice decimal.Decimal `db:"compare_at_price" json:"compareAtPrice"`
	SKU            string          `db:"sku" json:"sku"`
	StockQuantity  int             `db:"stock_quantity" json:"stockQuantity"`
	ImageURL       string          `db:"image_url" json:"imageUrl"`
	Active         bool            `db:"is_active" json:"isActive"`
	CreatedAt      string          `db:"created_at" json:"createdAt"`
	UpdatedAt      string          `db:"updated_at" json:"updatedAt"`
}

type ShippingOption struct {
	ID        string          `db:"id" json:"id"`
	StoreID   string          `db:"store_id" json:"storeId"`
	Name      string          `db:"name" json:"name"`
	Regions   string          `db:"regions" json:"regions"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Active    bool            `db:"is_active" json:"isActive"`
	CreatedAt string          `db:"created_at" json:"createdAt"`
}

type Cart struct {
	ID         string `db:"id" json:"id"`
	StoreID    string `db:"store_id" json:"storeId"`
	CustomerID string `db:"customer_id" json:"customerId,omitempty"`
	SessionID  string `db:"session_id" json:"sessionId,omitempty"`
	CreatedAt  string `db:"created_at" json:"createdAt"`
	UpdatedAt  string `db:"updated_at" json:"updatedAt"`
}

// CartLine is a cart item joined with the live product it references.
type CartLine struct {
	ID            string          `db:"id" json:"id"`
	CartID        string          `db:"cart_id" json:"cartId"`
	ProductID     string          `db:"product_id" json:"productId"`
	Quantity      int             `db:"quantity" json:"quantity"`
	NameEn        string          `db:"name_en" json:"nameEn"`
	NameAr        string          `db:"name_ar" json:"nameAr"`
	Price         decimal.Decimal `db:"price" json:"price"`
	ImageURL      string          `db:"image_url" json:"imageUrl"`
	StockQuantity int             `db:"stock_quantity" json:"stockQuantity"`
	Active        bool            `db:"is_active" json:"-"`
}

func (l CartLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Order struct {
	ID              string          `db:"id" json:"id"`
	StoreID         string          `db:"store_id" json:"storeId"`
	CustomerID      string          `db:"customer_id" json:"customerId"`
	Status          OrderStatus     `db:"status" json:"status"`
	Subtotal        decimal.Decimal `db:"subtotal" json:"subtotal"`
	ShippingCost    decimal.Decimal `db:"shipping_cost" json:"shippingCost"`
	Tax             decimal.Decimal `db:"tax" json:"tax"`
	Total           decimal.Decimal `db:"total" json:"total"`
	Currency        string          `db:"currency" json:"currency"`
	ShippingAddress string          `db:"shipping_address" json:"shippingAddress"`
	ShippingMethod  string          `db:"shipping_method" json:"shippingMethod"`
	TrackingNumber  string          `db:"tracking_number" json:"trackingNumber"`
	PaymentStatus   PaymentStatus   `db:"payment_status" json:"paymentStatus"`
	CreatedAt       string          `db:"created_at" json:"createdAt"`
	UpdatedAt       string          `db:"updated_at" json:"updatedAt"`

	StoreName string `db:"store_name" json:"storeName,omitempty"`
	StoreSlug string `db:"store_slug" json:"storeSlug,omitempty"`
}

// OrderItem is the purchase-time snapshot of a cart line. It is never
// updated after insertion.
type OrderItem struct {
	ID          string          `db:"id" json:"id"`
	OrderID     string          `db:"order_id" json:"orderId"`
	ProductID   string          `db:"product_id" json:"productId"`
	ProductName string          `db:"product_name" json:"productName"`
	Quantity    int             `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unitPrice"`
	CreatedAt   string          `db:"created_at" json:"createdAt"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Receipt is what checkout hands back: the order plus its frozen lines.
type Receipt struct {
	Order Order       `json:"order"`
	Items []OrderItem `json:"items"`
}

type Plan struct {
	ID           string          `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	PriceMonthly decimal.Decimal `db:"price_monthly" json:"priceMonthly"`
	MaxProducts  int             `db:"max_products" json:"maxProducts"` // -1 = unlimited
	CustomDomain bool            `db:"custom_domain" json:"customDomain"`
}

type Subscription struct {
	ID               string `db:"id" json:"id"`
	StoreID          string `db:"store_id" json:"storeId"`
	PlanID           string `db:"plan_id" json:"planId"`
	Status           string `db:"status" json:"status"`
	CurrentPeriodEnd string `db:"current_period_end" json:"currentPeriodEnd"`
	CreatedAt        string `db:"created_at" json:"createdAt"`
}

type AuditEntry struct {
	ID         int64  `db:"id" json:"id"`
	UserID     string `db:"user_id" json:"userId"`
	Action     string `db:"action" json:"action"`
	EntityType string `db:"entity_type" json:"entityType"`
	EntityID   string `db:"entity_id" json:"entityId"`
	Details    string `db:"details" json:"details,omitempty"`
	CreatedAt  string `db:"created_at" json:"createdAt"`
}
