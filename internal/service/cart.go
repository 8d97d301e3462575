package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/furniture_shop/internal/models"
	"github.com/Skotchmaster/furniture_shop/internal/repo"
	"github.com/Skotchmaster/furniture_shop/internal/transport"
)

const (
	maxIdempotencyKeyLen = 128
	maxLineQuantity      = 999
)

type CartService struct {
	Repo *repo.GormRepo
}

func (s *CartService) GetCart(ctx context.Context, accountID uuid.UUID) ([]models.CartItem, error) {
	return s.Repo.GetCart(ctx, accountID)
}

// AddToCart adds quantity to the account's line for the product. When key
// is set the add is applied at most once per account and key; a replay
// returns the current line and applied=false.
func (s *CartService) AddToCart(ctx context.Context, accountID uuid.UUID, req transport.AddToCartRequest, key string) (item *models.CartItem, applied bool, err error) {
	if req.ProductID == uuid.Nil {
		return nil, false, fmt.Errorf("product_id required: %w", ErrValidation)
	}
	if req.Quantity == 0 {
		return nil, false, fmt.Errorf("quantity must be more than zero: %w", ErrValidation)
	}
	if req.Quantity > maxLineQuantity {
		return nil, false, fmt.Errorf("quantity must be at most %d: %w", maxLineQuantity, ErrValidation)
	}
	key = strings.TrimSpace(key)
	if len(key) > maxIdempotencyKeyLen {
		return nil, false, fmt.Errorf("idempotency key too long: %w", ErrValidation)
	}

	err = s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		if key != "" {
			rec, err := tx.FindCartReceipt(ctx, accountID, key)
			switch {
			case err == nil:
				if rec.ProductID != req.ProductID || rec.Quantity != req.Quantity {
					return fmt.Errorf("idempotency key reused with a different request: %w", ErrConflict)
				}
				item, err = tx.GetCartItemByProduct(ctx, accountID, req.ProductID)
				if errors.Is(err, gorm.ErrRecordNotFound) {
					// applied earlier, line removed since
					item, err = nil, nil
				}
				return err
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return err
			}
		}

		p, err := tx.GetProduct(ctx, req.ProductID, true)
		if err != nil {
			return notFound(err, "product")
		}
		if !p.Active {
			return fmt.Errorf("product is not available: %w", ErrConflict)
		}

		line := &models.CartItem{
			AccountID: accountID,
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
			Note:      strings.TrimSpace(req.Note),
		}
		if err := tx.AddToCart(ctx, line); err != nil {
			return err
		}
		if line.Quantity > maxLineQuantity {
			return fmt.Errorf("quantity must be at most %d: %w", maxLineQuantity, ErrValidation)
		}
		if key != "" {
			if err := tx.CreateCartReceipt(ctx, &models.CartAddReceipt{
				AccountID: accountID,
				Key:       key,
				ProductID: req.ProductID,
				Quantity:  req.Quantity,
			}); err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return fmt.Errorf("concurrent request with the same idempotency key: %w", ErrConflict)
				}
				return err
			}
		}
		line.Product = p
		item = line
		applied = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return item, applied, nil
}

func (s *CartService) UpdateItem(ctx context.Context, accountID, itemID uuid.UUID, req transport.UpdateCartItemRequest) (*models.CartItem, error) {
	fields := map[string]any{}
	if req.Quantity != nil {
		if *req.Quantity == 0 {
			return nil, fmt.Errorf("quantity must be more than zero: %w", ErrValidation)
		}
		if *req.Quantity > maxLineQuantity {
			return nil, fmt.Errorf("quantity must be at most %d: %w", maxLineQuantity, ErrValidation)
		}
		fields["quantity"] = *req.Quantity
	}
	if req.Note != nil {
		fields["note"] = strings.TrimSpace(*req.Note)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("nothing to update: %w", ErrValidation)
	}

	if err := s.Repo.UpdateCartItem(ctx, accountID, itemID, fields); err != nil {
		return nil, notFound(err, "cart item")
	}
	item, err := s.Repo.GetCartItem(ctx, accountID, itemID)
	if err != nil {
		return nil, notFound(err, "cart item")
	}
	return item, nil
}

func (s *CartService) RemoveItem(ctx context.Context, accountID, itemID uuid.UUID) error {
	if err := s.Repo.DeleteCartItem(ctx, accountID, itemID); err != nil {
		return notFound(err, "cart item")
	}
	return nil
}

func (s *CartService) Clear(ctx context.Context, accountID uuid.UUID) error {
	return s.Repo.ClearCart(ctx, accountID)
}
