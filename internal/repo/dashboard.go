package repo

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/furniture_shop/internal/models"
)

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type DashboardStats struct {
	ActiveProducts     int64           `json:"active_products"`
	Customers          int64           `json:"customers"`
	Orders             int64           `json:"orders"`
	OrdersByStatus     []StatusCount   `json:"orders_by_status"`
	PaidRevenue        decimal.Decimal `json:"paid_revenue"`
	OpenInquiries      int64           `json:"open_inquiries"`
	OpenDesignRequests int64           `json:"open_design_requests"`
	LowStockProducts   int64           `json:"low_stock_products"`
}

func (r *GormRepo) Dashboard(ctx context.Context) (*DashboardStats, error) {
	db := r.DB.WithContext(ctx)
	var s DashboardStats

	if err := db.Model(&models.Product{}).Where("active = ?", true).Count(&s.ActiveProducts).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Account{}).Where("role = ?", models.RoleCustomer).Count(&s.Customers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Order{}).Count(&s.Orders).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("status ASC").
		Scan(&s.OrdersByStatus).Error; err != nil {
		return nil, err
	}
	revenue, err := sumTotals(db.Model(&models.Order{}).Where("payment_status = ?", models.PaymentPaid))
	if err != nil {
		return nil, err
	}
	s.PaidRevenue = revenue
	if err := db.Model(&models.Inquiry{}).Where("status = ?", models.InquiryNew).Count(&s.OpenInquiries).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.DesignRequest{}).
		Where("status IN ?", []models.DesignStatus{models.DesignSubmitted, models.DesignUnderReview, models.DesignQuoted}).
		Count(&s.OpenDesignRequests).Error; err != nil {
		return nil, err
	}
	n, err := r.CountLowStock(ctx)
	if err != nil {
		return nil, err
	}
	s.LowStockProducts = n
	return &s, nil
}
