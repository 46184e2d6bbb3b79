package domain

// ivcurve.go: curva de volatilidad implícita strike → IV.
//
// Interpolante cúbico de Hermite con derivadas PCHIP (Fritsch–Carlson): conserva la
// monotonía entre nodos y no produce overshoot con grids de strikes dispersos, a
// diferencia de un spline cúbico natural. Fuera del rango muestreado se extrapola
// con el polinomio del tramo extremo.

import (
	"fmt"
	"math"
	"sort"
)

// IVCurve es una curva de IV construida a partir de cotizaciones de un vencimiento.
// Inmutable tras BuildIVCurve: se puede evaluar desde varias goroutines.
type IVCurve struct {
	strikes []float64
	ivs     []float64
	slopes  []float64 // derivada en cada nodo
}

// BuildIVCurve ordena las muestras por strike y ajusta el interpolante.
// Con menos de 2 strikes con IV finita devuelve ErrInsufficientSamples.
func BuildIVCurve(samples map[float64]Quote) (*IVCurve, error) {
	strikes := make([]float64, 0, len(samples))
	for k, q := range samples {
		if isFinite(k) && isFinite(q.IV) {
			strikes = append(strikes, k)
		}
	}
	if len(strikes) < 2 {
		return nil, fmt.Errorf("domain.BuildIVCurve: %d usable samples, need 2: %w",
			len(strikes), ErrInsufficientSamples)
	}
	sort.Float64s(strikes)

	ivs := make([]float64, len(strikes))
	for i, k := range strikes {
		ivs[i] = samples[k].IV
	}

	return &IVCurve{
		strikes: strikes,
		ivs:     ivs,
		slopes:  pchipSlopes(strikes, ivs),
	}, nil
}

// At evalúa la curva en un strike arbitrario. En un nodo devuelve exactamente la
// IV muestreada.
func (c *IVCurve) At(strike float64) float64 {
	n := len(c.strikes)
	// i = índice del tramo [x_i, x_i+1] que contiene strike (o el extremo más cercano)
	i := sort.SearchFloat64s(c.strikes, strike)
	if i < n && c.strikes[i] == strike {
		return c.ivs[i]
	}
	i--
	if i < 0 {
		i = 0
	}
	if i > n-2 {
		i = n - 2
	}
	return hermite(strike, c.strikes[i], c.strikes[i+1], c.ivs[i], c.ivs[i+1], c.slopes[i], c.slopes[i+1])
}

// Range devuelve el rango de strikes muestreado.
func (c *IVCurve) Range() (lo, hi float64) {
	return c.strikes[0], c.strikes[len(c.strikes)-1]
}

// Len devuelve el número de nodos.
func (c *IVCurve) Len() int { return len(c.strikes) }

// pchipSlopes calcula las derivadas de Fritsch–Carlson en cada nodo.
func pchipSlopes(x, y []float64) []float64 {
	n := len(x)
	h := make([]float64, n-1)
	delta := make([]float64, n-1)
	for k := 0; k < n-1; k++ {
		h[k] = x[k+1] - x[k]
		delta[k] = (y[k+1] - y[k]) / h[k]
	}

	d := make([]float64, n)
	if n == 2 {
		// dos puntos: recta
		d[0], d[1] = delta[0], delta[0]
		return d
	}

	for k := 1; k < n-1; k++ {
		if delta[k-1] == 0 || delta[k] == 0 || math.Signbit(delta[k-1]) != math.Signbit(delta[k]) {
			d[k] = 0
			continue
		}
		// media armónica ponderada
		w1 := 2*h[k] + h[k-1]
		w2 := h[k] + 2*h[k-1]
		d[k] = (w1 + w2) / (w1/delta[k-1] + w2/delta[k])
	}

	d[0] = pchipEndSlope(h[0], h[1], delta[0], delta[1])
	d[n-1] = pchipEndSlope(h[n-2], h[n-3], delta[n-2], delta[n-3])
	return d
}

// pchipEndSlope es la derivada de tres puntos no centrada en un extremo, recortada
// para conservar la forma.
func pchipEndSlope(h0, h1, m0, m1 float64) float64 {
	d := ((2*h0+h1)*m0 - h0*m1) / (h0 + h1)
	switch {
	case sign(d) != sign(m0):
		return 0
	case sign(m0) != sign(m1) && math.Abs(d) > 3*math.Abs(m0):
		return 3 * m0
	}
	return d
}

// hermite evalúa el cúbico de Hermite del tramo [x0, x1]. Con t fuera de [0, 1]
// es la extrapolación del tramo.
func hermite(x, x0, x1, y0, y1, d0, d1 float64) float64 {
	h := x1 - x0
	t := (x - x0) / h
	t2 := t * t
	t3 := t2 * t
	h00 := 2*t3 - 3*t2 + 1
	h10 := t3 - 2*t2 + t
	h01 := -2*t3 + 3*t2
	h11 := t3 - t2
	return h00*y0 + h10*h*d0 + h01*y1 + h11*h*d1
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
