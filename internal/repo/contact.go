package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/furniture_shop/internal/models"
)

type ContactFilter struct {
	AccountID *uuid.UUID
	Status    string
}

func applyContactFilter(q *gorm.DB, f ContactFilter) *gorm.DB {
	if f.AccountID != nil {
		q = q.Where("account_id = ?", *f.AccountID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	return q
}

func (r *GormRepo) CreateInquiry(ctx context.Context, in *models.Inquiry) error {
	return r.DB.WithContext(ctx).Create(in).Error
}

func (r *GormRepo) GetInquiry(ctx context.Context, id uuid.UUID) (*models.Inquiry, error) {
	var in models.Inquiry
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&in).Error; err != nil {
		return nil, err
	}
	return &in, nil
}

func (r *GormRepo) ListInquiries(ctx context.Context, f ContactFilter, offset, limit int) (int64, []models.Inquiry, error) {
	base := applyContactFilter(r.DB.WithContext(ctx).Model(&models.Inquiry{}), f)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return 0, nil, err
	}
	var items []models.Inquiry
	if err := paginate(base.Order("created_at DESC"), offset, limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) UpdateInquiry(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	res := r.DB.WithContext(ctx).Model(&models.Inquiry{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) CreateDesignRequest(ctx context.Context, d *models.DesignRequest) error {
	return r.DB.WithContext(ctx).Create(d).Error
}

func (r *GormRepo) GetDesignRequest(ctx context.Context, id uuid.UUID) (*models.DesignRequest, error) {
	var d models.DesignRequest
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *GormRepo) ListDesignRequests(ctx context.Context, f ContactFilter, offset, limit int) (int64, []models.DesignRequest, error) {
	base := applyContactFilter(r.DB.WithContext(ctx).Model(&models.DesignRequest{}), f)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return 0, nil, err
	}
	var items []models.DesignRequest
	if err := paginate(base.Order("created_at DESC"), offset, limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) UpdateDesignRequest(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	res := r.DB.WithContext(ctx).Model(&models.DesignRequest{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
