package storefront

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Account struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type AuthResult struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	Account      Account   `json:"account"`
}

type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
}

type ProductImage struct {
	URL      string `json:"url"`
	Position int    `json:"position"`
}

type Product struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Material    string          `json:"material"`
	Dimensions  string          `json:"dimensions"`
	Active      bool            `json:"active"`
	Images      []ProductImage  `json:"images"`
}

type ProductQuery struct {
	Category string
	Material string
	MinPrice string
	MaxPrice string
	Text     string
	Page     int
	Size     int
}

type Meta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

type Page[T any] struct {
	Data []T  `json:"data"`
	Meta Meta `json:"meta"`
}

// CartLine is one cart entry. Lines that only exist in the local cart have
// no ID and no product details.
type CartLine struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Category    string          `json:"category"`
	Material    string          `json:"material"`
	ImageURL    string          `json:"image_url,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Available   bool            `json:"available"`
	Quantity    uint            `json:"quantity"`
	Note        string          `json:"note"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type Cart struct {
	Items     []CartLine      `json:"items"`
	ItemCount uint            `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Line returns the line for the product, if any.
func (c *Cart) Line(productID uuid.UUID) (CartLine, bool) {
	for _, l := range c.Items {
		if l.ProductID == productID {
			return l, true
		}
	}
	return CartLine{}, false
}

type AddResult struct {
	Applied bool      `json:"applied"`
	Item    *CartLine `json:"item,omitempty"`
	Cart    Cart      `json:"cart"`
}

type CheckoutInput struct {
	ShipRecipient  string `json:"ship_recipient"`
	ShipPhone      string `json:"ship_phone"`
	ShipAddress    string `json:"ship_address"`
	ShipCity       string `json:"ship_city"`
	ShipPostalCode string `json:"ship_postal_code,omitempty"`
	// PaymentMethod is one of cash, bank_transfer, card.
	PaymentMethod string `json:"payment_method"`
	Note          string `json:"note,omitempty"`
}

type Placed struct {
	OrderID     uuid.UUID       `json:"order_id"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	ShippingFee decimal.Decimal `json:"shipping_fee"`
	Total       decimal.Decimal `json:"total"`
	Status      string          `json:"status"`
}

type OrderItem struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    uint            `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type Order struct {
	ID            uuid.UUID       `json:"id"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	PaymentMethod string          `json:"payment_method"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	ShippingFee   decimal.Decimal `json:"shipping_fee"`
	Total         decimal.Decimal `json:"total"`
	Items         []OrderItem     `json:"items"`
	CreatedAt     time.Time       `json:"created_at"`
}
