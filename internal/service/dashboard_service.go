package service

import (
	"context"

	"github.com/examina/examina-backend/internal/repository"
)

// DashboardService serves aggregate counts for the supervisor dashboard.
type DashboardService struct {
	dashboardRepo *repository.DashboardRepository
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(dashboardRepo *repository.DashboardRepository) *DashboardService {
	return &DashboardService{dashboardRepo: dashboardRepo}
}

// GetCounts returns the headline dashboard numbers.
func (s *DashboardService) GetCounts(ctx context.Context) (*repository.DashboardCounts, error) {
	return s.dashboardRepo.GetCounts(ctx)
}
