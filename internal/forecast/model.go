package forecast

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// seasonalModel is a least-squares fit of intercept, linear trend and yearly
// Fourier harmonics over monthly observations.
type seasonalModel struct {
	origin   time.Time
	order    int
	coeffs   []float64
	residStd float64
}

// monthIndex is the whole-month offset of d from the model origin.
func monthIndex(origin, d time.Time) int {
	return (d.Year()-origin.Year())*12 + int(d.Month()) - int(origin.Month())
}

// designRow builds one row of the design matrix for the given trend index
// and calendar month.
func designRow(dst []float64, idx int, month time.Month, order int) {
	dst[0] = 1
	dst[1] = float64(idx)
	for k := 1; k <= order; k++ {
		angle := 2 * math.Pi * float64(k) * float64(month) / 12
		dst[2*k] = math.Sin(angle)
		dst[2*k+1] = math.Cos(angle)
	}
}

// fitSeasonal solves the least-squares problem for the training months.
// values carries the (possibly transformed) series aligned with train.
func fitSeasonal(train []Observation, values []float64, order int) (*seasonalModel, error) {
	n := len(train)
	p := 2 + 2*order
	if n <= p {
		return nil, fmt.Errorf("degenerate series: %d training observations for %d parameters", n, p)
	}

	origin := train[0].Date
	x := mat.NewDense(n, p, nil)
	row := make([]float64, p)
	for i, o := range train {
		designRow(row, monthIndex(origin, o.Date), o.Date.Month(), order)
		x.SetRow(i, row)
	}
	y := mat.NewVecDense(n, append([]float64(nil), values...))

	var qr mat.QR
	qr.Factorize(x)
	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, y); err != nil {
		return nil, fmt.Errorf("model fit failed: %w", err)
	}

	m := &seasonalModel{
		origin: origin,
		order:  order,
		coeffs: append([]float64(nil), beta.RawVector().Data...),
	}

	residuals := make([]float64, n)
	for i, o := range train {
		residuals[i] = values[i] - m.predict(o.Date)
	}
	m.residStd = stat.StdDev(residuals, nil)
	if math.IsNaN(m.residStd) {
		m.residStd = 0
	}
	return m, nil
}

// predict evaluates the fitted curve at d, in the fit's value space.
func (m *seasonalModel) predict(d time.Time) float64 {
	row := make([]float64, len(m.coeffs))
	designRow(row, monthIndex(m.origin, d), d.Month(), m.order)
	var sum float64
	for i, c := range m.coeffs {
		sum += c * row[i]
	}
	return sum
}
