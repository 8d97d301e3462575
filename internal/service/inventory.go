package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Skotchmaster/furniture_shop/internal/models"
	"github.com/Skotchmaster/furniture_shop/internal/repo"
	"github.com/Skotchmaster/furniture_shop/internal/transport"
)

// InventoryService manages admin stock counters. Checkout does not touch
// them and nothing is reserved.
type InventoryService struct {
	Repo *repo.GormRepo
}

func (s *InventoryService) List(ctx context.Context, lowOnly bool, offset, limit int) (int64, []models.InventoryRecord, error) {
	return s.Repo.ListInventory(ctx, lowOnly, offset, limit)
}

func (s *InventoryService) Get(ctx context.Context, productID uuid.UUID) (*models.InventoryRecord, error) {
	rec, err := s.Repo.GetInventory(ctx, productID)
	if err != nil {
		return nil, notFound(err, "inventory record")
	}
	return rec, nil
}

func (s *InventoryService) Set(ctx context.Context, productID uuid.UUID, req transport.SetInventoryRequest) (*models.InventoryRecord, error) {
	if req.Quantity < 0 {
		return nil, fmt.Errorf("quantity cannot be negative: %w", ErrValidation)
	}
	if req.ReorderLevel != nil && *req.ReorderLevel < 0 {
		return nil, fmt.Errorf("reorder_level cannot be negative: %w", ErrValidation)
	}
	if _, err := s.Repo.GetProduct(ctx, productID, true); err != nil {
		return nil, notFound(err, "product")
	}

	rec := &models.InventoryRecord{ProductID: productID, Quantity: req.Quantity}
	if req.ReorderLevel != nil {
		rec.ReorderLevel = *req.ReorderLevel
	} else if cur, err := s.Repo.GetInventory(ctx, productID); err == nil {
		rec.ReorderLevel = cur.ReorderLevel
	}
	if err := s.Repo.UpsertInventory(ctx, rec); err != nil {
		return nil, err
	}
	return s.Get(ctx, productID)
}

// Adjust applies a signed delta. The counter never goes below zero.
func (s *InventoryService) Adjust(ctx context.Context, productID uuid.UUID, delta int) (*models.InventoryRecord, error) {
	if delta == 0 {
		return nil, fmt.Errorf("delta must not be zero: %w", ErrValidation)
	}
	var out *models.InventoryRecord
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		if _, err := tx.GetProduct(ctx, productID, true); err != nil {
			return notFound(err, "product")
		}
		rec, err := tx.AdjustInventory(ctx, productID, delta)
		if err != nil {
			return err
		}
		if rec.Quantity < 0 {
			return fmt.Errorf("stock would drop below zero: %w", ErrValidation)
		}
		out = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
