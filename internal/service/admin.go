package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/furniture_shop/internal/models"
	"github.com/Skotchmaster/furniture_shop/internal/repo"
	"github.com/Skotchmaster/furniture_shop/internal/transport"
)

type AdminService struct {
	Repo *repo.GormRepo
}

func (s *AdminService) ListCustomers(ctx context.Context, q string, offset, limit int) (int64, []models.Account, error) {
	return s.Repo.ListAccounts(ctx, models.RoleCustomer, q, offset, limit)
}

func (s *AdminService) Customer(ctx context.Context, id uuid.UUID) (*transport.CustomerDetail, error) {
	acc, err := s.Repo.GetAccountByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "customer")
	}
	totals, err := s.Repo.AccountOrderTotals(ctx, id)
	if err != nil {
		return nil, err
	}
	return &transport.CustomerDetail{
		Account:    acc,
		OrderCount: totals.Count,
		TotalSpent: totals.Spent,
	}, nil
}

func (s *AdminService) Dashboard(ctx context.Context) (*repo.DashboardStats, error) {
	return s.Repo.Dashboard(ctx)
}
