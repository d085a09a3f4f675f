package forecast

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func months(revenues ...float64) []Point {
	points := make([]Point, len(revenues))
	year, month := 2025, 1
	for i, r := range revenues {
		points[i] = Point{
			Month:       fmt.Sprintf("%04d-%02d", year, month),
			Revenue:     decimal.NewFromFloat(r),
			Costs:       decimal.NewFromFloat(r * 0.4),
			Profit:      decimal.NewFromFloat(r * 0.6),
			NumProjects: 2,
		}
		month++
		if month > 12 {
			month = 1
			year++
		}
	}
	return points
}

func TestForecastRevenueLinearGrowth(t *testing.T) {
	// A perfectly linear series survives smoothing unchanged in slope, so
	// the projection continues the line exactly.
	history := months(100, 200, 300, 400, 500)

	fc, err := ForecastRevenue(history, 2)
	require.NoError(t, err)

	require.Len(t, fc.Predictions, 2)
	assert.Equal(t, "600", fc.Predictions[0].Revenue.String())
	assert.Equal(t, "700", fc.Predictions[1].Revenue.String())
	assert.Equal(t, "June 2025", fc.Predictions[0].Month)
	assert.Equal(t, "July 2025", fc.Predictions[1].Month)
	assert.InDelta(t, 1.0, fc.R2, 1e-9)
	assert.Equal(t, "High", fc.Confidence)
	assert.Equal(t, "Linear (straight trend)", fc.ModelType)
	assert.Equal(t, "Growing", fc.Trend)
}

func TestForecastRevenueTwoMonthsMinimum(t *testing.T) {
	fc, err := ForecastRevenue(months(100, 200), 1)
	require.NoError(t, err)
	require.Len(t, fc.Predictions, 1)
	assert.Equal(t, "300", fc.Predictions[0].Revenue.String())
}

func TestForecastRevenueInsufficientData(t *testing.T) {
	_, err := ForecastRevenue(months(100), 3)
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = ForecastRevenue(nil, 3)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestForecastRevenueUsesQuadraticWithEnoughData(t *testing.T) {
	history := months(100, 140, 200, 280, 380, 500, 640)
	fc, err := ForecastRevenue(history, 3)
	require.NoError(t, err)

	assert.Equal(t, "Polynomial (curved trend)", fc.ModelType)
	require.Len(t, fc.Predictions, 3)
	for _, p := range fc.Predictions {
		assert.False(t, p.Revenue.IsNegative())
		assert.True(t, p.UpperBound.GreaterThanOrEqual(p.LowerBound))
	}
	assert.Equal(t, "Good", fc.DataQuality)
}

func TestForecastRevenueClampsNegativePredictions(t *testing.T) {
	fc, err := ForecastRevenue(months(500, 300, 100), 2)
	require.NoError(t, err)
	for _, p := range fc.Predictions {
		assert.False(t, p.Revenue.IsNegative(), "prediction went negative: %s", p.Revenue)
		assert.False(t, p.LowerBound.IsNegative())
	}
	assert.Equal(t, "Declining", fc.Trend)
}

func TestForecastRevenueFlatSeries(t *testing.T) {
	fc, err := ForecastRevenue(months(250, 250, 250, 250, 250), 1)
	require.NoError(t, err)
	assert.Equal(t, "250", fc.Predictions[0].Revenue.String())
	assert.Equal(t, "Stable", fc.Trend)
}

func TestAnalyzeTrends(t *testing.T) {
	t.Run("growth", func(t *testing.T) {
		report, err := AnalyzeTrends(months(100, 150, 220, 310, 400, 410))
		require.NoError(t, err)

		assert.Equal(t, 6, report.MonthsAnalyzed)
		assert.Equal(t, "increasing", report.RevenueTrend)
		assert.Equal(t, "increasing", report.ProfitTrend)
		assert.InDelta(t, 310.0, report.RevenueGrowthPct, 1e-9)
		assert.InDelta(t, 2.0, report.AvgProjectsPerMonth, 1e-9)
		assert.NotEmpty(t, report.Insights)
	})

	t.Run("decline", func(t *testing.T) {
		report, err := AnalyzeTrends(months(400, 300, 200))
		require.NoError(t, err)
		assert.Equal(t, "decreasing", report.RevenueTrend)
		assert.Equal(t, "Insufficient data", report.Seasonality)
	})

	t.Run("too little history", func(t *testing.T) {
		_, err := AnalyzeTrends(months(100, 200))
		assert.ErrorIs(t, err, ErrInsufficientData)
	})
}

func TestSeasonalityDetection(t *testing.T) {
	volatile := months(100, 500, 120, 480, 90, 520)
	report, err := AnalyzeTrends(volatile)
	require.NoError(t, err)
	assert.Equal(t, "High seasonality detected", report.Seasonality)

	steady := months(300, 302, 299, 301, 300, 298)
	report, err = AnalyzeTrends(steady)
	require.NoError(t, err)
	assert.Equal(t, "Stable", report.Seasonality)
}

func TestBreakEven(t *testing.T) {
	report := BreakEven(decimal.NewFromInt(100000), decimal.NewFromInt(20000))

	assert.Equal(t, "80000", report.Profit.String())
	assert.Equal(t, "20000", report.BreakEvenRevenue.String())
	assert.Equal(t, "80000", report.MarginOfSafety.String())
	assert.Equal(t, "80", report.ProfitMarginPct.String())
}

func TestBreakEvenZeroRevenue(t *testing.T) {
	report := BreakEven(decimal.Zero, decimal.NewFromInt(5000))
	assert.Equal(t, "-5000", report.Profit.String())
	assert.True(t, report.ProfitMarginPct.IsZero())
}
