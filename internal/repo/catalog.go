package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/furniture_shop/internal/models"
)

type ProductFilter struct {
	Category        models.Category
	Material        string
	MinPrice        *decimal.Decimal
	MaxPrice        *decimal.Decimal
	Text            string
	IncludeInactive bool
}

type CategoryCount struct {
	Category models.Category `json:"category"`
	Count    int64           `json:"count"`
}

func preloadImages(db *gorm.DB) *gorm.DB {
	return db.Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC, id ASC")
	})
}

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID, includeInactive bool) (*models.Product, error) {
	q := preloadImages(r.DB.WithContext(ctx)).Where("id = ?", id)
	if !includeInactive {
		q = q.Where("active = ?", true)
	}
	var p models.Product
	if err := q.First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) ListProducts(ctx context.Context, f ProductFilter, offset, limit int) (int64, []models.Product, error) {
	base := r.DB.WithContext(ctx).Model(&models.Product{})
	if !f.IncludeInactive {
		base = base.Where("active = ?", true)
	}
	if f.Category != "" {
		base = base.Where("category = ?", f.Category)
	}
	if m := strings.TrimSpace(f.Material); m != "" {
		base = base.Where("LOWER(material) LIKE ?", "%"+strings.ToLower(m)+"%")
	}
	if f.MinPrice != nil {
		base = base.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		base = base.Where("price <= ?", *f.MaxPrice)
	}
	if t := strings.TrimSpace(f.Text); t != "" {
		like := "%" + strings.ToLower(t) + "%"
		base = base.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Product
	q := paginate(preloadImages(base).Order("created_at DESC, id ASC"), offset, limit)
	if err := q.Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

// ProductsByIDs returns active products in the order of ids, skipping missing ones.
func (r *GormRepo) ProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var found []models.Product
	if err := preloadImages(r.DB.WithContext(ctx)).
		Where("id IN ? AND active = ?", ids, true).
		Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]models.Product, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

// SaveProduct writes the product columns. When images is non-nil the
// product's image list is replaced.
func (r *GormRepo) SaveProduct(ctx context.Context, p *models.Product, images []models.ProductImage) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(p).Omit("Images").Select("name", "description", "price", "category", "material", "dimensions", "active").Updates(p).Error; err != nil {
			return err
		}
		if images == nil {
			return nil
		}
		if err := tx.Where("product_id = ?", p.ID).Delete(&models.ProductImage{}).Error; err != nil {
			return err
		}
		for i := range images {
			images[i].ProductID = p.ID
		}
		if len(images) > 0 {
			if err := tx.Create(&images).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormRepo) SetProductActive(ctx context.Context, id uuid.UUID, active bool) error {
	res := r.DB.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Update("active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) CategoryCounts(ctx context.Context) ([]CategoryCount, error) {
	var out []CategoryCount
	err := r.DB.WithContext(ctx).Model(&models.Product{}).
		Select("category, COUNT(*) AS count").
		Where("active = ?", true).
		Group("category").
		Order("category ASC").
		Scan(&out).Error
	return out, err
}
