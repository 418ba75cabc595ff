package forecast

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Forecast runs the full pipeline on one specification's series: clean,
// split, fit, predict with confidence bounds, validate against the holdout.
//
// Values at or below zero are dropped before modeling; under the log
// transform the series must be strictly positive, and a municipal revenue
// of zero is a reporting gap rather than a measurement. A series with fewer
// than MinObservations remaining is rejected with *InsufficientDataError.
func Forecast(series []Observation, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	obs := prepare(series)
	if len(obs) < MinObservations {
		return nil, &InsufficientDataError{Observations: len(obs), Minimum: MinObservations}
	}

	train, test := split(obs, cfg.SplitPolicy)

	values := make([]float64, len(train))
	for i, o := range train {
		if cfg.Transform == TransformLog {
			values[i] = math.Log1p(o.Value)
		} else {
			values[i] = o.Value
		}
	}

	model, err := fitSeasonal(train, values, cfg.FourierOrder)
	if err != nil {
		return nil, err
	}

	z := distuv.Normal{Mu: 0, Sigma: 1}.Quantile(0.5 + cfg.IntervalWidth/2)
	halfWidth := z * model.residStd

	// Predict the full monthly range, history plus horizon, so holdout
	// months have predictions to join against.
	first := obs[0].Date
	last := obs[len(obs)-1].Date
	end := last.AddDate(0, cfg.HorizonMonths, 0)

	var points []Point
	for d := first; !d.After(end); d = d.AddDate(0, 1, 0) {
		yhat := model.predict(d)
		lower := yhat - halfWidth
		upper := yhat + halfWidth
		if cfg.Transform == TransformLog {
			yhat = math.Expm1(yhat)
			lower = math.Expm1(lower)
			upper = math.Expm1(upper)
		}
		// Revenue cannot be negative.
		points = append(points, Point{
			Date:  d,
			Value: clampZero(yhat),
			Lower: clampZero(lower),
			Upper: clampZero(upper),
		})
	}

	metrics := holdoutMetrics(points, test)

	var future []Point
	for _, p := range points {
		if p.Date.After(last) {
			future = append(future, p)
		}
	}

	return &Result{
		Forecast:        future,
		Metrics:         metrics,
		Summary:         summarize(future),
		TrainMonths:     len(train),
		TestMonths:      len(test),
		LastObserved:    last,
		SeasonalityMode: cfg.SeasonalityMode,
	}, nil
}

// prepare copies the series, normalizes dates to first-of-month UTC, sorts
// chronologically and drops non-positive values.
func prepare(series []Observation) []Observation {
	obs := make([]Observation, 0, len(series))
	for _, o := range series {
		if o.Value <= 0 {
			continue
		}
		obs = append(obs, Observation{Date: monthStart(o.Date), Value: o.Value})
	}
	sort.SliceStable(obs, func(i, j int) bool { return obs[i].Date.Before(obs[j].Date) })
	return obs
}

// split divides the cleaned series at a cutoff counted back from the last
// observation: 12 months for the trailing-year policy, half the series for
// the 50/50 policy.
func split(obs []Observation, policy SplitPolicy) (train, test []Observation) {
	holdout := 12
	if policy == SplitHalf {
		holdout = len(obs) / 2
	}
	cutoff := obs[len(obs)-1].Date.AddDate(0, -holdout, 0)
	for _, o := range obs {
		if o.Date.After(cutoff) {
			test = append(test, o)
		} else {
			train = append(train, o)
		}
	}
	return train, test
}

func summarize(future []Point) Summary {
	if len(future) == 0 {
		return Summary{}
	}
	values := make([]float64, len(future))
	var total float64
	for i, p := range future {
		values[i] = p.Value
		total += p.Value
	}
	growth := math.NaN()
	if first := values[0]; first > 0 {
		growth = (values[len(values)-1]/first - 1) * 100
	}
	return Summary{
		MeanMonthly:   stat.Mean(values, nil),
		GrowthPercent: growth,
		Total:         total,
	}
}

func monthStart(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func clampZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
