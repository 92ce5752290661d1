// internal/metrics/types.go
// Package metrics accumulates running statistics over Monte Carlo draws.
package metrics

import "math"

// RunningStat holds the values needed for an online mean and variance.
// It uses Welford's online algorithm.
type RunningStat struct {
	Count int64   `json:"count"`
	Mean  float64 `json:"mean"`
	M2    float64 `json:"-"` // Sum of squares of differences from the current mean
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Add folds value into the running statistic.
func (rs *RunningStat) Add(value float64) {
	rs.Count++
	if rs.Count == 1 {
		rs.Min = value
		rs.Max = value
	} else {
		if value < rs.Min {
			rs.Min = value
		}
		if value > rs.Max {
			rs.Max = value
		}
	}

	delta := value - rs.Mean
	rs.Mean += delta / float64(rs.Count)
	delta2 := value - rs.Mean
	rs.M2 += delta * delta2
}

// Variance returns the sample variance, or 0 with fewer than two values.
func (rs RunningStat) Variance() float64 {
	if rs.Count < 2 {
		return 0
	}
	return rs.M2 / float64(rs.Count-1)
}

// StdDev returns the sample standard deviation.
func (rs RunningStat) StdDev() float64 {
	return math.Sqrt(rs.Variance())
}

// StandardError returns the standard error of the mean.
func (rs RunningStat) StandardError() float64 {
	if rs.Count < 2 {
		return 0
	}
	return rs.StdDev() / math.Sqrt(float64(rs.Count))
}

// Counter tallies how often an event occurs among observations.
type Counter struct {
	Hits  int64 `json:"hits"`
	Total int64 `json:"total"`
}

// Observe records one observation.
func (c *Counter) Observe(hit bool) {
	c.Total++
	if hit {
		c.Hits++
	}
}

// Rate returns Hits/Total, or 0 before any observation.
func (c Counter) Rate() float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(c.Hits) / float64(c.Total)
}
