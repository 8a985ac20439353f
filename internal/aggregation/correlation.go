package aggregation

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Correlation describes the linear and monotonic association of two
// measures. Coefficients are nil when a measure is constant.
type Correlation struct {
	N        int      `json:"n"`
	Pearson  *float64 `json:"pearson"`
	Spearman *float64 `json:"spearman"`
	// PValue is the two-tailed significance of Pearson's r.
	PValue *float64 `json:"p_value,omitempty"`
}

// Correlate returns nil for fewer than three pairs.
func Correlate(x, y []float64) *Correlation {
	n := len(x)
	if n != len(y) || n < 3 {
		return nil
	}
	c := &Correlation{N: n}
	if r, ok := pearson(x, y); ok {
		c.Pearson = floatPtr(r)
		c.PValue = floatPtr(pearsonPValue(r, n))
	}
	if rho, ok := pearson(ranks(x), ranks(y)); ok {
		c.Spearman = floatPtr(rho)
	}
	return c
}

func pearson(x, y []float64) (float64, bool) {
	if stat.Variance(x, nil) == 0 || stat.Variance(y, nil) == 0 {
		return 0, false
	}
	r := stat.Correlation(x, y, nil)
	return math.Max(-1, math.Min(1, r)), true
}

// pearsonPValue uses t = r*sqrt((n-2)/(1-r²)) with n-2 degrees of freedom.
func pearsonPValue(r float64, n int) float64 {
	if math.Abs(r) >= 1 {
		return 0
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * dist.Survival(math.Abs(t))
}

// ranks assigns 1-based ranks, averaging ties.
func ranks(data []float64) []float64 {
	idx := make([]int, len(data))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return data[idx[a]] < data[idx[b]] })

	out := make([]float64, len(data))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && data[idx[j+1]] == data[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			out[idx[k]] = avg
		}
		i = j + 1
	}
	return out
}
