package service

import (
	"context"
	"fmt"

	"github.com/Dhrubajit-says/FormForge/internal/model"
	"github.com/Dhrubajit-says/FormForge/internal/repository"
)

// recentResponsesLimit caps the latest-submissions list on the dashboard.
const recentResponsesLimit = 5

// DashboardData consolidates the caller's dashboard.
type DashboardData struct {
	model.DashboardStats
	RecentResponses []repository.DashboardRecentResponse `json:"recent_responses"`
}

// DashboardService handles dashboard business logic.
type DashboardService struct {
	repo DashboardRepository
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(repo DashboardRepository) *DashboardService {
	return &DashboardService{repo: repo}
}

// GetDashboardData returns the stat cards and latest submissions.
func (s *DashboardService) GetDashboardData(ctx context.Context, actor Actor) (*DashboardData, error) {
	stats, err := s.repo.GetOwnerCounts(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("dashboard counts: %w", err)
	}

	recent, err := s.repo.GetRecentResponses(ctx, actor.UserID, recentResponsesLimit)
	if err != nil {
		return nil, fmt.Errorf("recent responses: %w", err)
	}

	return &DashboardData{DashboardStats: stats, RecentResponses: recent}, nil
}
