package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/yigit/skillmart/internal/app/models"
)

// DashboardService aggregates the profile page
type DashboardService struct {
	api AccountAPI
}

// NewDashboardService creates a new dashboard service instance
func NewDashboardService(api AccountAPI) *DashboardService {
	return &DashboardService{api: api}
}

// Get fetches the profile, the wallet and one page of transactions concurrently.
// The first failure cancels the other calls.
func (s *DashboardService) Get(ctx context.Context, page, size int) (*models.Dashboard, error) {
	var (
		dashboard models.Dashboard
		g, gctx   = errgroup.WithContext(ctx)
	)

	g.Go(func() error {
		profile, err := s.api.Me(gctx)
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		dashboard.Profile = *profile
		return nil
	})
	g.Go(func() error {
		wallet, err := s.api.Wallet(gctx)
		if err != nil {
			return fmt.Errorf("load wallet: %w", err)
		}
		dashboard.Wallet = *wallet
		return nil
	})
	g.Go(func() error {
		txs, err := s.api.Transactions(gctx, page, size)
		if err != nil {
			return fmt.Errorf("load transactions: %w", err)
		}
		if txs.Items == nil {
			txs.Items = []models.Transaction{}
		}
		dashboard.Transactions = txs
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &dashboard, nil
}
