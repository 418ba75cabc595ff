package forecast

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

// holdoutMetrics joins predictions to the held-out months by date (inner
// join) and computes the validation errors. Returns nil when the join is
// empty; metrics are then omitted rather than failing the run.
func holdoutMetrics(points []Point, test []Observation) *Metrics {
	pred := make(map[time.Time]float64, len(points))
	for _, p := range points {
		pred[p.Date] = p.Value
	}

	var yTrue, yPred []float64
	for _, o := range test {
		if v, ok := pred[o.Date]; ok {
			yTrue = append(yTrue, o.Value)
			yPred = append(yPred, v)
		}
	}
	if len(yTrue) == 0 {
		return nil
	}

	n := float64(len(yTrue))
	var sumAbs, sumSq, sumErr, mapeSum float64
	mapeN := 0
	for i := range yTrue {
		e := yPred[i] - yTrue[i]
		sumAbs += math.Abs(e)
		sumSq += e * e
		sumErr += e
		// Zero actuals are excluded from MAPE to avoid division by zero.
		if yTrue[i] != 0 {
			mapeSum += math.Abs(e / yTrue[i])
			mapeN++
		}
	}

	mae := sumAbs / n
	rmse := math.Sqrt(sumSq / n)
	bias := sumErr / n
	mape := math.NaN()
	if mapeN > 0 {
		mape = mapeSum / float64(mapeN) * 100
	}

	meanActual := stat.Mean(yTrue, nil)
	pct := func(v float64) float64 {
		if meanActual > 0 {
			return v / meanActual * 100
		}
		return math.NaN()
	}

	return &Metrics{
		MAE:          mae,
		RMSE:         rmse,
		MAPE:         mape,
		MAEPercent:   pct(mae),
		RMSEPercent:  pct(rmse),
		Bias:         bias,
		BiasPercent:  pct(bias),
		Observations: len(yTrue),
	}
}
