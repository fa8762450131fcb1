package services

import (
	"fmt"
	"math"
	"sort"
	"time"

	"supertube/internal/models"
)

// GrowthPredictor fits a least-squares line through a history series and
// extrapolates it. Confidence blends sample size and fit quality so a
// perfect line through three points still reads as tentative.
type GrowthPredictor struct {
	history []models.StatsPoint
}

// NewGrowthPredictor copies and sorts the series ascending by timestamp.
func NewGrowthPredictor(history []models.StatsPoint) *GrowthPredictor {
	sorted := make([]models.StatsPoint, len(history))
	copy(sorted, history)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return &GrowthPredictor{history: sorted}
}

// linearRegression fits y = slope*x + intercept and returns the fit's
// coefficient of determination. Requires len(x) == len(y) >= 2.
func linearRegression(x, y []float64) (slope, intercept, r2 float64) {
	n := float64(len(x))

	var sumX, sumY, sumXY, sumXX float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumXX += x[i] * x[i]
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n, 0
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n

	meanY := sumY / n
	var ssTot, ssRes float64
	for i := range x {
		fit := slope*x[i] + intercept
		ssTot += (y[i] - meanY) * (y[i] - meanY)
		ssRes += (y[i] - fit) * (y[i] - fit)
	}
	if ssTot == 0 {
		// No variance to explain: treat the fit as uninformative.
		return slope, intercept, 0
	}
	return slope, intercept, 1 - ssRes/ssTot
}

// series converts history into regression inputs: x in fractional days
// since the first sample, y the metric's counter.
func (g *GrowthPredictor) series(metric models.Metric) (x, y []float64) {
	if len(g.history) == 0 {
		return nil, nil
	}
	origin := g.history[0].Timestamp
	x = make([]float64, len(g.history))
	y = make([]float64, len(g.history))
	for i := range g.history {
		x[i] = g.history[i].Timestamp.Sub(origin).Hours() / 24
		y[i] = float64(g.history[i].Counter(metric))
	}
	return x, y
}

// confidence blends sample depth (saturating at 30 points) with the
// regression's R².
func confidence(n int, r2 float64) float64 {
	depth := float64(n) / 30
	if depth > 1 {
		depth = 1
	}
	c := 0.4*depth + 0.6*r2
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// Project produces a 30/60/90 day forecast for a metric. At least two
// samples are required.
func (g *GrowthPredictor) Project(metric models.Metric) (*models.GrowthProjection, error) {
	x, y := g.series(metric)
	if len(x) < 2 {
		return nil, fmt.Errorf("projection for %s needs at least 2 samples, have %d", metric, len(x))
	}

	slope, intercept, r2 := linearRegression(x, y)
	lastX := x[len(x)-1]
	current := g.history[len(g.history)-1].Counter(metric)

	// A declining fit never projects below where the channel already is.
	project := func(days float64) int64 {
		v := int64(math.Round(slope*(lastX+days) + intercept))
		if v < current {
			return current
		}
		return v
	}

	return &models.GrowthProjection{
		Metric:          metric,
		CurrentValue:    current,
		Projected30d:    project(30),
		Projected60d:    project(60),
		Projected90d:    project(90),
		DailyGrowthRate: slope,
		Confidence:      confidence(len(x), r2),
	}, nil
}

// ProjectValue evaluates the fitted line at daysAhead days past the
// first sample of the series.
func (g *GrowthPredictor) ProjectValue(metric models.Metric, daysAhead float64) (float64, error) {
	x, y := g.series(metric)
	if len(x) < 2 {
		return 0, fmt.Errorf("projection for %s needs at least 2 samples, have %d", metric, len(x))
	}
	slope, intercept, _ := linearRegression(x, y)
	return slope*daysAhead + intercept, nil
}

// MilestoneETA estimates when a metric crosses a threshold. An already
// met milestone reports the last sample's date with full confidence. A
// flat or declining trend reports the milestone as unachievable.
func (g *GrowthPredictor) MilestoneETA(metric models.Metric, threshold int64) (*models.MilestoneProjection, error) {
	x, y := g.series(metric)
	if len(x) < 2 {
		return nil, fmt.Errorf("milestone for %s needs at least 2 samples, have %d", metric, len(x))
	}

	last := g.history[len(g.history)-1]
	current := last.Counter(metric)

	mp := &models.MilestoneProjection{
		Metric:       metric,
		Threshold:    threshold,
		CurrentValue: current,
	}

	if current >= threshold {
		date := last.Timestamp
		days := 0
		mp.EstimatedDate = &date
		mp.DaysUntil = &days
		mp.Confidence = 1
		mp.Achievable = true
		return mp, nil
	}

	slope, intercept, r2 := linearRegression(x, y)
	if slope <= 0 {
		mp.Achievable = false
		return mp, nil
	}

	// Solve the fitted line for the crossing, not the raw last sample,
	// so a noisy final point does not skew the ETA.
	fitted := slope*x[len(x)-1] + intercept
	daysUntil := int(math.Ceil((float64(threshold) - fitted) / slope))
	if daysUntil < 0 {
		daysUntil = 0
	}
	date := last.Timestamp.Add(time.Duration(daysUntil) * 24 * time.Hour)

	mp.EstimatedDate = &date
	mp.DaysUntil = &daysUntil
	mp.Confidence = confidence(len(x), r2)
	mp.Achievable = true
	return mp, nil
}

var subscriberMilestones = []int64{1_000, 5_000, 10_000, 50_000, 100_000, 500_000, 1_000_000}
var viewMilestones = []int64{10_000, 50_000, 100_000, 500_000, 1_000_000, 5_000_000, 10_000_000}

// CommonMilestones projects the next three standard milestones above the
// current value for subscribers and views.
func (g *GrowthPredictor) CommonMilestones() ([]models.MilestoneProjection, error) {
	if len(g.history) < 2 {
		return nil, fmt.Errorf("milestones need at least 2 samples, have %d", len(g.history))
	}

	var projections []models.MilestoneProjection
	for _, target := range []struct {
		metric     models.Metric
		thresholds []int64
	}{
		{models.MetricSubscribers, subscriberMilestones},
		{models.MetricViews, viewMilestones},
	} {
		current := g.history[len(g.history)-1].Counter(target.metric)
		added := 0
		for _, threshold := range target.thresholds {
			if threshold <= current {
				continue
			}
			mp, err := g.MilestoneETA(target.metric, threshold)
			if err != nil {
				return nil, err
			}
			projections = append(projections, *mp)
			if added++; added == 3 {
				break
			}
		}
	}
	return projections, nil
}
