package domain

import "time"

// Run describe los parámetros de una ejecución del reconciler.
type Run struct {
	ID         string
	Currency   Currency
	Expiry     Expiry
	Strikes    []float64
	Interval   time.Duration
	Iterations int
	StartedAt  time.Time
}
