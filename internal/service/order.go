package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/furniture_shop/internal/events"
	"github.com/Skotchmaster/furniture_shop/internal/models"
	"github.com/Skotchmaster/furniture_shop/internal/repo"
	"github.com/Skotchmaster/furniture_shop/internal/transport"
)

type OrderService struct {
	Repo                  *repo.GormRepo
	Events                events.Publisher
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
	Policy                StatusPolicy
}

// Shipping is free once the subtotal reaches the threshold.
func (s *OrderService) Shipping(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(s.FreeShippingThreshold) {
		return decimal.Zero
	}
	return s.ShippingFee
}

func validateCheckout(req transport.CheckoutRequest) error {
	if strings.TrimSpace(req.ShipRecipient) == "" {
		return fmt.Errorf("ship_recipient required: %w", ErrValidation)
	}
	if strings.TrimSpace(req.ShipPhone) == "" {
		return fmt.Errorf("ship_phone required: %w", ErrValidation)
	}
	if strings.TrimSpace(req.ShipAddress) == "" {
		return fmt.Errorf("ship_address required: %w", ErrValidation)
	}
	if strings.TrimSpace(req.ShipCity) == "" {
		return fmt.Errorf("ship_city required: %w", ErrValidation)
	}
	if !req.PaymentMethod.Valid() {
		return fmt.Errorf("unknown payment method %q: %w", req.PaymentMethod, ErrValidation)
	}
	return nil
}

// Checkout turns the account's cart into a pending order. The order and its
// lines are written and the cart is emptied in one transaction, so a failure
// leaves no order behind and the cart untouched.
func (s *OrderService) Checkout(ctx context.Context, accountID uuid.UUID, req transport.CheckoutRequest) (*models.Order, error) {
	if err := validateCheckout(req); err != nil {
		return nil, err
	}

	var order *models.Order
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		cart, err := tx.GetCart(ctx, accountID)
		if err != nil {
			return err
		}
		if len(cart) == 0 {
			return ErrEmptyCart
		}

		subtotal := decimal.Zero
		items := make([]models.OrderItem, 0, len(cart))
		for _, line := range cart {
			p := line.Product
			if p == nil {
				return fmt.Errorf("product %s no longer exists: %w", line.ProductID, ErrConflict)
			}
			if !p.Active {
				return fmt.Errorf("product %q is no longer available: %w", p.Name, ErrConflict)
			}
			lineTotal := p.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			subtotal = subtotal.Add(lineTotal)
			items = append(items, models.OrderItem{
				ProductID:   p.ID,
				ProductName: p.Name,
				Quantity:    line.Quantity,
				UnitPrice:   p.Price,
				LineTotal:   lineTotal,
				Note:        line.Note,
			})
		}
		shipping := s.Shipping(subtotal)

		order = &models.Order{
			AccountID:      accountID,
			ShipRecipient:  strings.TrimSpace(req.ShipRecipient),
			ShipPhone:      strings.TrimSpace(req.ShipPhone),
			ShipAddress:    strings.TrimSpace(req.ShipAddress),
			ShipCity:       strings.TrimSpace(req.ShipCity),
			ShipPostalCode: strings.TrimSpace(req.ShipPostalCode),
			PaymentMethod:  req.PaymentMethod,
			Subtotal:       subtotal,
			ShippingFee:    shipping,
			Total:          subtotal.Add(shipping),
			Status:         models.OrderStatusPending,
			PaymentStatus:  models.PaymentPending,
			Note:           strings.TrimSpace(req.Note),
			Items:          items,
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}
		return tx.ClearCart(ctx, accountID)
	})
	if err != nil {
		return nil, err
	}

	events.Emit(ctx, s.Events, events.TopicOrders, order.ID.String(), "order_created", map[string]any{
		"order_id":   order.ID,
		"account_id": accountID,
		"total":      order.Total,
		"items":      len(order.Items),
	})
	return order, nil
}

// GetOrder returns the order to its owner or to an admin.
func (s *OrderService) GetOrder(ctx context.Context, id, requester uuid.UUID, isAdmin bool) (*models.Order, error) {
	o, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, notFound(err, "order")
	}
	if !isAdmin && o.AccountID != requester {
		// hide other customers' orders
		return nil, fmt.Errorf("order not found: %w", ErrNotFound)
	}
	return o, nil
}

func (s *OrderService) ListMine(ctx context.Context, accountID uuid.UUID, offset, limit int) (int64, []models.Order, error) {
	return s.Repo.ListOrders(ctx, repo.OrderFilter{AccountID: &accountID}, offset, limit)
}

func (s *OrderService) ListAll(ctx context.Context, f repo.OrderFilter, offset, limit int) (int64, []models.Order, error) {
	if f.Status != "" && !f.Status.Valid() {
		return 0, nil, fmt.Errorf("unknown status %q: %w", f.Status, ErrValidation)
	}
	return s.Repo.ListOrders(ctx, f, offset, limit)
}

func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, to models.OrderStatus) (*models.Order, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", to, ErrValidation)
	}
	return s.transition(ctx, id, func(o *models.Order) (bool, error) {
		if o.Status == to {
			return false, nil
		}
		if !s.Policy.CanMoveOrder(o.Status, to) {
			return false, fmt.Errorf("cannot move order from %s to %s: %w", o.Status, to, ErrInvalidTransition)
		}
		return true, nil
	}, map[string]any{"status": to}, "order_status_changed")
}

func (s *OrderService) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, to models.PaymentStatus) (*models.Order, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("unknown payment status %q: %w", to, ErrValidation)
	}
	return s.transition(ctx, id, func(o *models.Order) (bool, error) {
		if o.PaymentStatus == to {
			return false, nil
		}
		if !s.Policy.CanMovePayment(o.PaymentStatus, to) {
			return false, fmt.Errorf("cannot move payment from %s to %s: %w", o.PaymentStatus, to, ErrInvalidTransition)
		}
		return true, nil
	}, map[string]any{"payment_status": to}, "order_payment_changed")
}

// Cancel lets a customer cancel their own order while it is still pending.
func (s *OrderService) Cancel(ctx context.Context, accountID, id uuid.UUID) (*models.Order, error) {
	return s.transition(ctx, id, func(o *models.Order) (bool, error) {
		if o.AccountID != accountID {
			return false, fmt.Errorf("order not found: %w", ErrNotFound)
		}
		if o.Status != models.OrderStatusPending {
			return false, fmt.Errorf("only pending orders can be cancelled: %w", ErrInvalidTransition)
		}
		return true, nil
	}, map[string]any{"status": models.OrderStatusCancelled}, "order_cancelled")
}

// transition loads the order and, when check reports a change, applies
// fields in the same transaction. Setting the current value is a no-op.
func (s *OrderService) transition(ctx context.Context, id uuid.UUID, check func(*models.Order) (bool, error), fields map[string]any, eventType string) (*models.Order, error) {
	var (
		out     *models.Order
		changed bool
	)
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		o, err := tx.GetOrder(ctx, id)
		if err != nil {
			return notFound(err, "order")
		}
		if changed, err = check(o); err != nil {
			return err
		}
		if changed {
			if err := tx.UpdateOrder(ctx, id, fields); err != nil {
				return err
			}
		}
		out, err = tx.GetOrder(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if changed {
		events.Emit(ctx, s.Events, events.TopicOrders, out.ID.String(), eventType, map[string]any{
			"order_id":       out.ID,
			"status":         out.Status,
			"payment_status": out.PaymentStatus,
		})
	}
	return out, nil
}

func (s *OrderService) UpsertDelivery(ctx context.Context, orderID uuid.UUID, req transport.DeliveryRequest) (*models.Delivery, error) {
	if req.Status == "" {
		req.Status = models.DeliveryScheduled
	}
	if !req.Status.Valid() {
		return nil, fmt.Errorf("unknown delivery status %q: %w", req.Status, ErrValidation)
	}
	if req.Status == models.DeliveryDelivered && req.DeliveredAt == nil {
		now := time.Now().UTC()
		req.DeliveredAt = &now
	}

	var out *models.Delivery
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		o, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			return notFound(err, "order")
		}
		if o.Status == models.OrderStatusCancelled {
			return fmt.Errorf("order is cancelled: %w", ErrInvalidTransition)
		}
		if err := tx.UpsertDelivery(ctx, &models.Delivery{
			OrderID:        orderID,
			Carrier:        strings.TrimSpace(req.Carrier),
			TrackingNumber: strings.TrimSpace(req.TrackingNumber),
			ScheduledFor:   req.ScheduledFor,
			DeliveredAt:    req.DeliveredAt,
			Status:         req.Status,
		}); err != nil {
			return err
		}
		out, err = tx.GetDelivery(ctx, orderID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("delivery not stored: %w", ErrConflict)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	events.Emit(ctx, s.Events, events.TopicOrders, orderID.String(), "delivery_updated", out)
	return out, nil
}
