// Package forecast projects revenue from monthly history and derives trend
// and break-even insights. Regression runs in float64; money values cross
// the package boundary as decimals.
package forecast

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInsufficientData reports too little history for the requested
// analysis.
var ErrInsufficientData = errors.New("not enough historical data")

// Point is one month of aggregated history.
type Point struct {
	Month       string          `json:"month"` // YYYY-MM
	Revenue     decimal.Decimal `json:"revenue"`
	Costs       decimal.Decimal `json:"costs"`
	Profit      decimal.Decimal `json:"profit"`
	NumProjects int             `json:"num_projects"`
}

// Prediction is one forecast month.
type Prediction struct {
	Month      string          `json:"month"` // e.g. "November 2025"
	Revenue    decimal.Decimal `json:"revenue"`
	LowerBound decimal.Decimal `json:"lower_bound"`
	UpperBound decimal.Decimal `json:"upper_bound"`
	Confidence string          `json:"confidence"`
}

// RevenueForecast is the full forecasting result.
type RevenueForecast struct {
	Predictions           []Prediction    `json:"predictions"`
	Trend                 string          `json:"trend"`
	TrendStrength         float64         `json:"trend_strength"`
	R2                    float64         `json:"r2_score"`
	Confidence            string          `json:"confidence"`
	ConfidenceDescription string          `json:"confidence_description"`
	ModelType             string          `json:"model_type"`
	DataQuality           string          `json:"data_quality"`
	HistoricalAvg         decimal.Decimal `json:"historical_avg"`
	GrowthRatePct         float64         `json:"growth_rate"`
}

const (
	quadraticMinMonths = 6
	smoothingMinMonths = 4
)

// ForecastRevenue fits a trend model to monthly revenue and projects it
// forward. Quadratic fitting needs six months of history; below that a
// straight line is used. With four or more months a trailing 3-point
// moving average smooths noise first (trailing so no future month leaks
// into the fit).
func ForecastRevenue(history []Point, monthsAhead int) (*RevenueForecast, error) {
	if len(history) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 months, have %d", ErrInsufficientData, len(history))
	}
	if monthsAhead < 1 {
		monthsAhead = 1
	}

	revenues := make([]float64, len(history))
	for i, p := range history {
		revenues[i] = p.Revenue.InexactFloat64()
	}

	// Smoothed series starts at index 1 of the original timeline.
	y := revenues
	offset := 0.0
	if len(revenues) >= smoothingMinMonths {
		y = movingAverage(revenues, 3)
		offset = 1.0
	}
	x := make([]float64, len(y))
	for i := range x {
		x[i] = float64(i) + offset
	}

	var model polynomial
	modelType := "Linear (straight trend)"
	if len(history) >= quadraticMinMonths {
		model = fitQuadratic(x, y)
		modelType = "Polynomial (curved trend)"
	} else {
		model = fitLinear(x, y)
	}

	r2 := rSquared(x, y, model)
	confidence, confidenceDesc := confidenceLabel(r2)
	stdErr := residualStdDev(x, y, model)

	lastMonth, err := time.Parse("2006-01", history[len(history)-1].Month)
	if err != nil {
		return nil, fmt.Errorf("bad month label %q: %w", history[len(history)-1].Month, err)
	}

	predictions := make([]Prediction, 0, monthsAhead)
	for i := 1; i <= monthsAhead; i++ {
		futureX := float64(len(history) + i - 1)
		predicted := math.Max(0, model.at(futureX))
		lower := math.Max(0, predicted-1.96*stdErr)
		upper := predicted + 1.96*stdErr

		predictions = append(predictions, Prediction{
			Month:      lastMonth.AddDate(0, i, 0).Format("January 2006"),
			Revenue:    decimal.NewFromFloat(predicted).Round(2),
			LowerBound: decimal.NewFromFloat(lower).Round(2),
			UpperBound: decimal.NewFromFloat(upper).Round(2),
			Confidence: confidence,
		})
	}

	var slope float64
	if len(history) >= quadraticMinMonths {
		slope = revenues[len(revenues)-1] - revenues[0]
	} else {
		slope = model.b
	}

	avg := mean(revenues)
	growth := 0.0
	if revenues[0] > 0 {
		growth = (revenues[len(revenues)-1] - revenues[0]) / revenues[0] * 100
	}

	return &RevenueForecast{
		Predictions:           predictions,
		Trend:                 trendLabel(slope),
		TrendStrength:         math.Abs(slope / float64(len(history))),
		R2:                    r2,
		Confidence:            confidence,
		ConfidenceDescription: confidenceDesc,
		ModelType:             modelType,
		DataQuality:           dataQuality(len(history)),
		HistoricalAvg:         decimal.NewFromFloat(avg).Round(2),
		GrowthRatePct:         growth,
	}, nil
}

// polynomial is a + b*x + c*x^2; linear fits leave c zero.
type polynomial struct {
	a, b, c float64
}

func (p polynomial) at(x float64) float64 {
	return p.a + p.b*x + p.c*x*x
}

func fitLinear(x, y []float64) polynomial {
	n := float64(len(x))
	var sx, sy, sxx, sxy float64
	for i := range x {
		sx += x[i]
		sy += y[i]
		sxx += x[i] * x[i]
		sxy += x[i] * y[i]
	}
	denom := n*sxx - sx*sx
	if denom == 0 {
		return polynomial{a: mean(y)}
	}
	b := (n*sxy - sx*sy) / denom
	a := (sy - b*sx) / n
	return polynomial{a: a, b: b}
}

// fitQuadratic solves the 3x3 normal equations by Gaussian elimination.
func fitQuadratic(x, y []float64) polynomial {
	var s [5]float64 // sums of x^0 .. x^4
	var t [3]float64 // sums of y*x^0 .. y*x^2
	for i := range x {
		xp := 1.0
		for k := 0; k < 5; k++ {
			s[k] += xp
			if k < 3 {
				t[k] += y[i] * xp
			}
			xp *= x[i]
		}
	}

	m := [3][4]float64{
		{s[0], s[1], s[2], t[0]},
		{s[1], s[2], s[3], t[1]},
		{s[2], s[3], s[4], t[2]},
	}
	for col := 0; col < 3; col++ {
		pivot := col
		for row := col + 1; row < 3; row++ {
			if math.Abs(m[row][col]) > math.Abs(m[pivot][col]) {
				pivot = row
			}
		}
		m[col], m[pivot] = m[pivot], m[col]
		if m[col][col] == 0 {
			return fitLinear(x, y)
		}
		for row := 0; row < 3; row++ {
			if row == col {
				continue
			}
			f := m[row][col] / m[col][col]
			for k := col; k < 4; k++ {
				m[row][k] -= f * m[col][k]
			}
		}
	}
	return polynomial{
		a: m[0][3] / m[0][0],
		b: m[1][3] / m[1][1],
		c: m[2][3] / m[2][2],
	}
}

func rSquared(x, y []float64, p polynomial) float64 {
	avg := mean(y)
	var ssRes, ssTot float64
	for i := range y {
		d := y[i] - p.at(x[i])
		ssRes += d * d
		dt := y[i] - avg
		ssTot += dt * dt
	}
	if ssTot == 0 {
		return 1
	}
	return 1 - ssRes/ssTot
}

func residualStdDev(x, y []float64, p polynomial) float64 {
	var sum, sumSq float64
	for i := range y {
		d := y[i] - p.at(x[i])
		sum += d
		sumSq += d * d
	}
	n := float64(len(y))
	variance := sumSq/n - (sum/n)*(sum/n)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

func movingAverage(values []float64, window int) []float64 {
	if len(values) < window {
		return values
	}
	out := make([]float64, 0, len(values)-window+1)
	for i := window - 1; i < len(values); i++ {
		sum := 0.0
		for k := i - window + 1; k <= i; k++ {
			sum += values[k]
		}
		out = append(out, sum/float64(window))
	}
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	avg := mean(values)
	var sumSq float64
	for _, v := range values {
		d := v - avg
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

func confidenceLabel(r2 float64) (string, string) {
	switch {
	case r2 > 0.8:
		return "High", "Very reliable - strong pattern detected"
	case r2 > 0.6:
		return "Medium-High", "Reliable - clear pattern with minor variation"
	case r2 > 0.4:
		return "Medium", "Moderate - pattern exists but with some variability"
	case r2 > 0.2:
		return "Low-Medium", "Less reliable - high variability in data"
	default:
		return "Low", "Unreliable - very inconsistent data"
	}
}

func trendLabel(slope float64) string {
	switch {
	case slope > 100:
		return "Strongly Increasing"
	case slope > 0:
		return "Growing"
	case slope < -100:
		return "Declining"
	default:
		return "Stable"
	}
}

func dataQuality(months int) string {
	switch {
	case months >= 10:
		return "Excellent"
	case months >= 6:
		return "Good"
	default:
		return "Fair"
	}
}
