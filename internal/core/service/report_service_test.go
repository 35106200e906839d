package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/stockroom/internal/core/domain"
	"github.com/rl1809/stockroom/internal/port/mocks"
)

func TestSummary_LabelsDeletedItems(t *testing.T) {
	db := new(mocks.MockDatabaseRepository)
	svc := NewReportService(db)

	db.On("SalesSummary", mock.Anything, "owner-1").Return([]domain.SummaryEntry{
		{ItemID: "a", ItemName: "Widget", TotalQuantity: 3, TotalAmount: decimal.NewFromInt(30)},
		{ItemID: "b", ItemName: "", TotalQuantity: 1, TotalAmount: decimal.NewFromInt(5)},
	}, nil)

	summary, err := svc.Summary(context.Background(), "owner-1")

	require.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, "Widget", summary[0].ItemName)
	assert.Equal(t, domain.DeletedItemName, summary[1].ItemName)
}

func TestSummary_EmptyIsNotNil(t *testing.T) {
	db := new(mocks.MockDatabaseRepository)
	svc := NewReportService(db)

	db.On("SalesSummary", mock.Anything, "owner-1").Return(nil, nil)

	summary, err := svc.Summary(context.Background(), "owner-1")

	require.NoError(t, err)
	assert.NotNil(t, summary)
	assert.Empty(t, summary)
}

func TestTrend(t *testing.T) {
	db := new(mocks.MockDatabaseRepository)
	svc := NewReportService(db)

	points := []domain.TrendPoint{
		{Date: "2024-01-01", TotalSales: decimal.NewFromInt(10)},
		{Date: "2024-01-02", TotalSales: decimal.NewFromInt(4)},
	}
	db.On("SalesTrend", mock.Anything, "owner-1").Return(points, nil)

	trend, err := svc.Trend(context.Background(), "owner-1")

	require.NoError(t, err)
	assert.Equal(t, points, trend)
}

func TestTrend_Error(t *testing.T) {
	db := new(mocks.MockDatabaseRepository)
	svc := NewReportService(db)

	db.On("SalesTrend", mock.Anything, "owner-1").Return(nil, errors.New("timeout"))

	_, err := svc.Trend(context.Background(), "owner-1")

	assert.Error(t, err)
}
