package transport

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/furniture_shop/internal/models"
	"github.com/Skotchmaster/furniture_shop/internal/util"
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type UpdateProfileRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type AuthResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	ExpiresAt    time.Time       `json:"expires_at"`
	Account      *models.Account `json:"account"`
}

type CreateProductRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    models.Category `json:"category"`
	Material    string          `json:"material"`
	Dimensions  string          `json:"dimensions"`
	Images      []string        `json:"images"`
}

type PatchProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Category    *models.Category `json:"category"`
	Material    *string          `json:"material"`
	Dimensions  *string          `json:"dimensions"`
	Active      *bool            `json:"active"`
	Images      *[]string        `json:"images"`
}

type AddToCartRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  uint      `json:"quantity"`
	Note      string    `json:"note"`
}

type UpdateCartItemRequest struct {
	Quantity *uint   `json:"quantity"`
	Note     *string `json:"note"`
}

// CartLine is a cart item with the product fields a client renders.
type CartLine struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Category    models.Category `json:"category"`
	Material    string          `json:"material"`
	ImageURL    string          `json:"image_url,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Available   bool            `json:"available"`
	Quantity    uint            `json:"quantity"`
	Note        string          `json:"note"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type CartResponse struct {
	Items     []CartLine      `json:"items"`
	ItemCount uint            `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

func NewCartLine(it models.CartItem) CartLine {
	line := CartLine{
		ID:        it.ID,
		ProductID: it.ProductID,
		Quantity:  it.Quantity,
		Note:      it.Note,
		UnitPrice: decimal.Zero,
		LineTotal: decimal.Zero,
	}
	if p := it.Product; p != nil {
		line.ProductName = p.Name
		line.Category = p.Category
		line.Material = p.Material
		line.UnitPrice = p.Price
		line.Available = p.Active
		line.LineTotal = p.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		if len(p.Images) > 0 {
			line.ImageURL = p.Images[0].URL
		}
	}
	return line
}

func NewCartResponse(items []models.CartItem) CartResponse {
	resp := CartResponse{Items: make([]CartLine, 0, len(items)), Subtotal: decimal.Zero}
	for _, it := range items {
		line := NewCartLine(it)
		resp.Items = append(resp.Items, line)
		resp.ItemCount += line.Quantity
		resp.Subtotal = resp.Subtotal.Add(line.LineTotal)
	}
	return resp
}

// AddToCartResponse reports whether the add was applied or replayed from an
// earlier request with the same idempotency key.
type AddToCartResponse struct {
	Applied bool         `json:"applied"`
	Item    *CartLine    `json:"item,omitempty"`
	Cart    CartResponse `json:"cart"`
}

type CheckoutRequest struct {
	ShipRecipient  string               `json:"ship_recipient"`
	ShipPhone      string               `json:"ship_phone"`
	ShipAddress    string               `json:"ship_address"`
	ShipCity       string               `json:"ship_city"`
	ShipPostalCode string               `json:"ship_postal_code"`
	PaymentMethod  models.PaymentMethod `json:"payment_method"`
	Note           string               `json:"note"`
}

type CheckoutResponse struct {
	OrderID     uuid.UUID       `json:"order_id"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	ShippingFee decimal.Decimal `json:"shipping_fee"`
	Total       decimal.Decimal `json:"total"`
	Status      string          `json:"status"`
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus models.PaymentStatus `json:"payment_status"`
}

type DeliveryRequest struct {
	Carrier        string                `json:"carrier"`
	TrackingNumber string                `json:"tracking_number"`
	ScheduledFor   *time.Time            `json:"scheduled_for"`
	DeliveredAt    *time.Time            `json:"delivered_at"`
	Status         models.DeliveryStatus `json:"status"`
}

type SetInventoryRequest struct {
	Quantity     int  `json:"quantity"`
	ReorderLevel *int `json:"reorder_level"`
}

type AdjustInventoryRequest struct {
	Delta int `json:"delta"`
}

type InquiryRequest struct {
	ProductID *uuid.UUID `json:"product_id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Subject   string     `json:"subject"`
	Message   string     `json:"message"`
}

type UpdateInquiryRequest struct {
	Status   *models.InquiryStatus `json:"status"`
	Response *string               `json:"response"`
}

type DesignRequestRequest struct {
	ProductID     *uuid.UUID       `json:"product_id"`
	Name          string           `json:"name"`
	Email         string           `json:"email"`
	Phone         string           `json:"phone"`
	FurnitureType string           `json:"furniture_type"`
	Dimensions    string           `json:"dimensions"`
	Material      string           `json:"material"`
	Budget        *decimal.Decimal `json:"budget"`
	Description   string           `json:"description"`
}

type ReindexResponse struct {
	Indexed int `json:"indexed"`
}

type UpdateDesignRequestRequest struct {
	Status      *models.DesignStatus `json:"status"`
	QuotedPrice *decimal.Decimal     `json:"quoted_price"`
	AdminNotes  *string              `json:"admin_notes"`
}

type CustomerDetail struct {
	Account    *models.Account `json:"account"`
	OrderCount int64           `json:"order_count"`
	TotalSpent decimal.Decimal `json:"total_spent"`
}

type ListResponse[T any] struct {
	Data []T       `json:"data"`
	Meta util.Meta `json:"meta"`
}

func NewList[T any](items []T, page, offset, limit int, total int64) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Data: items, Meta: util.NewMeta(page, offset, limit, total)}
}
