package reconciler

import (
	"fmt"
	"time"

	"github.com/alejandrodnm/optmark/internal/domain"
)

// Config son los parámetros de una ejecución.
type Config struct {
	Currency domain.Currency
	Expiry   domain.Expiry
	Strikes  []float64
	Duration time.Duration // t1: duración total
	Interval time.Duration // t2: periodo entre ciclos
}

// Iterations devuelve el número de ciclos. Trunca: un ciclo parcial al final no
// se ejecuta.
func (c Config) Iterations() int {
	if c.Interval <= 0 {
		return 0
	}
	return int(c.Duration / c.Interval)
}

// Validate comprueba los parámetros antes de arrancar el loop.
func (c Config) Validate(now time.Time) error {
	if _, err := domain.ParseCurrency(string(c.Currency)); err != nil {
		return fmt.Errorf("reconciler.Validate: %w", err)
	}
	if c.Expiry.Code == "" {
		return fmt.Errorf("reconciler.Validate: missing expiry: %w", domain.ErrInvalidExpiry)
	}
	if _, err := c.Expiry.YearsUntil(now); err != nil {
		return fmt.Errorf("reconciler.Validate: %w: %w", domain.ErrInvalidExpiry, err)
	}
	if len(c.Strikes) == 0 {
		return fmt.Errorf("reconciler.Validate: no strikes requested")
	}
	for _, k := range c.Strikes {
		if !(k > 0) {
			return fmt.Errorf("reconciler.Validate: strike %v must be positive", k)
		}
	}
	if c.Iterations() < 1 {
		return fmt.Errorf("reconciler.Validate: duration %s shorter than interval %s", c.Duration, c.Interval)
	}
	return nil
}
