package forecast

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// MinObservations is the smallest usable series: two full seasonal cycles.
const MinObservations = 24

// Transform selects how series values are treated before fitting.
type Transform int

const (
	// TransformLog fits log1p-transformed values and inverts predictions
	// with expm1, correcting variance growth for exponential series.
	TransformLog Transform = iota
	// TransformLinear fits untransformed values.
	TransformLinear
)

func (t Transform) String() string {
	switch t {
	case TransformLog:
		return "log"
	case TransformLinear:
		return "linear"
	default:
		return "unknown"
	}
}

// ParseTransform resolves a configuration string to a Transform.
func ParseTransform(s string) (Transform, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "log", "":
		return TransformLog, true
	case "linear":
		return TransformLinear, true
	default:
		return TransformLog, false
	}
}

// SplitPolicy selects how the series is divided into train and test.
type SplitPolicy int

const (
	// SplitTrailingYear holds out the final 12 months.
	SplitTrailingYear SplitPolicy = iota
	// SplitHalf holds out the trailing half of the series by month count.
	SplitHalf
)

func (p SplitPolicy) String() string {
	switch p {
	case SplitTrailingYear:
		return "trailing-year"
	case SplitHalf:
		return "half"
	default:
		return "unknown"
	}
}

// ParseSplitPolicy resolves a configuration string to a SplitPolicy.
func ParseSplitPolicy(s string) (SplitPolicy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trailing-year", "":
		return SplitTrailingYear, true
	case "half":
		return SplitHalf, true
	default:
		return SplitTrailingYear, false
	}
}

// Config parameterizes one forecast run.
type Config struct {
	// HorizonMonths is how many months past the last observation to
	// project.
	HorizonMonths int
	Transform     Transform
	SplitPolicy   SplitPolicy
	// SeasonalityMode is the declared seasonality mode. It is recorded on
	// the result as-is: under the log transform, multiplicative real-world
	// seasonality is what the additive fit captures.
	SeasonalityMode string
	// IntervalWidth is the confidence interval mass, e.g. 0.95.
	IntervalWidth float64
	// FourierOrder is the number of yearly harmonics (1..5).
	FourierOrder int
}

// DefaultConfig mirrors the dashboard's production settings: three-year
// horizon, log transform, trailing-year holdout, 95% intervals.
func DefaultConfig() Config {
	return Config{
		HorizonMonths:   36,
		Transform:       TransformLog,
		SplitPolicy:     SplitTrailingYear,
		SeasonalityMode: "multiplicative",
		IntervalWidth:   0.95,
		FourierOrder:    3,
	}
}

// Validate checks the configuration ranges.
func (c Config) Validate() error {
	if c.HorizonMonths < 1 {
		return fmt.Errorf("horizon must be at least 1 month, got %d", c.HorizonMonths)
	}
	if c.IntervalWidth <= 0 || c.IntervalWidth >= 1 {
		return fmt.Errorf("interval width must be in (0, 1), got %g", c.IntervalWidth)
	}
	if c.FourierOrder < 1 || c.FourierOrder > 5 {
		return fmt.Errorf("fourier order must be in [1, 5], got %d", c.FourierOrder)
	}
	return nil
}

// Observation is one (month, value) input point.
type Observation struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Point is one forecast month: point estimate plus confidence bounds, all
// clipped at zero.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"predicted_value"`
	Lower float64   `json:"lower_bound"`
	Upper float64   `json:"upper_bound"`
}

// Metrics are holdout validation errors. Percent fields are relative to the
// mean actual value and are NaN when that mean is not positive; MAPE is NaN
// when every holdout actual is zero.
type Metrics struct {
	MAE          float64
	RMSE         float64
	MAPE         float64
	MAEPercent   float64
	RMSEPercent  float64
	Bias         float64
	BiasPercent  float64
	Observations int
}

// MarshalJSON renders NaN metric fields as null so results survive JSON
// encoding.
func (m Metrics) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		MAE          float64  `json:"mae"`
		RMSE         float64  `json:"rmse"`
		MAPE         *float64 `json:"mape"`
		MAEPercent   *float64 `json:"mae_percent"`
		RMSEPercent  *float64 `json:"rmse_percent"`
		Bias         float64  `json:"bias"`
		BiasPercent  *float64 `json:"bias_percent"`
		Observations int      `json:"observations"`
	}{
		MAE:          m.MAE,
		RMSE:         m.RMSE,
		MAPE:         nullableNaN(m.MAPE),
		MAEPercent:   nullableNaN(m.MAEPercent),
		RMSEPercent:  nullableNaN(m.RMSEPercent),
		Bias:         m.Bias,
		BiasPercent:  nullableNaN(m.BiasPercent),
		Observations: m.Observations,
	})
}

// Summary aggregates the projected months for the dashboard's headline
// figures.
type Summary struct {
	MeanMonthly   float64
	GrowthPercent float64
	Total         float64
}

// MarshalJSON renders a NaN growth figure as null.
func (s Summary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		MeanMonthly   float64  `json:"mean_monthly"`
		GrowthPercent *float64 `json:"growth_percent"`
		Total         float64  `json:"total"`
	}{
		MeanMonthly:   s.MeanMonthly,
		GrowthPercent: nullableNaN(s.GrowthPercent),
		Total:         s.Total,
	})
}

// Result is the outcome of one forecast run. Forecast covers only dates
// strictly after the last observed month. Metrics is nil when no holdout
// month could be joined to a prediction.
type Result struct {
	Forecast        []Point   `json:"forecast"`
	Metrics         *Metrics  `json:"metrics,omitempty"`
	Summary         Summary   `json:"summary"`
	TrainMonths     int       `json:"train_months"`
	TestMonths      int       `json:"test_months"`
	LastObserved    time.Time `json:"last_observed"`
	SeasonalityMode string    `json:"seasonality_mode"`
}

// InsufficientDataError reports a series too short to model. It is a
// user-correctable condition: pick a specification with a longer history or
// wait for more months of data.
type InsufficientDataError struct {
	Observations int
	Minimum      int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for a reliable forecast: %d valid observations, minimum %d",
		e.Observations, e.Minimum)
}

func nullableNaN(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
