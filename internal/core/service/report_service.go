package service

import (
	"context"

	"github.com/rl1809/stockroom/internal/core/domain"
	"github.com/rl1809/stockroom/internal/port"
)

type ReportService struct {
	reports port.ReportRepository
}

func NewReportService(reports port.ReportRepository) *ReportService {
	return &ReportService{reports: reports}
}

// Summary returns per-item totals. Sales of items deleted since are kept
// under domain.DeletedItemName.
func (s *ReportService) Summary(ctx context.Context, ownerID string) ([]domain.SummaryEntry, error) {
	summary, err := s.reports.SalesSummary(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return []domain.SummaryEntry{}, nil
	}

	for i := range summary {
		if summary[i].ItemName == "" {
			summary[i].ItemName = domain.DeletedItemName
		}
	}
	return summary, nil
}

func (s *ReportService) Trend(ctx context.Context, ownerID string) ([]domain.TrendPoint, error) {
	trend, err := s.reports.SalesTrend(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if trend == nil {
		return []domain.TrendPoint{}, nil
	}
	return trend, nil
}
