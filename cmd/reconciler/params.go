package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/alejandrodnm/optmark/config"
	"github.com/alejandrodnm/optmark/internal/application/reconciler"
	"github.com/alejandrodnm/optmark/internal/domain"
)

// flagOverrides son los parámetros del run pasados por línea de comandos.
// Los valores cero no sobreescriben la config.
type flagOverrides struct {
	currency   string
	expiryCode string
	t1, t2     int
	strikes    string
	outputFile string
}

func applyFlags(cfg *config.Config, f flagOverrides) {
	if f.currency != "" {
		cfg.Run.Currency = f.currency
	}
	if f.expiryCode != "" {
		cfg.Run.ExpiryCode = f.expiryCode
	}
	if f.t1 > 0 {
		cfg.Run.DurationSeconds = f.t1
	}
	if f.t2 > 0 {
		cfg.Run.IntervalSeconds = f.t2
	}
	if f.strikes != "" {
		cfg.Run.Strikes = strings.Split(f.strikes, ",")
	}
	if f.outputFile != "" {
		cfg.Run.OutputFile = f.outputFile
	}
}

// buildRunConfig parsea y valida los parámetros del run.
func buildRunConfig(cfg *config.Config) (reconciler.Config, error) {
	currency, err := domain.ParseCurrency(cfg.Run.Currency)
	if err != nil {
		return reconciler.Config{}, err
	}
	expiry, err := domain.ParseExpiry(cfg.Run.ExpiryCode)
	if err != nil {
		return reconciler.Config{}, err
	}

	strikes := make([]float64, 0, len(cfg.Run.Strikes))
	seen := make(map[float64]bool, len(cfg.Run.Strikes))
	for _, s := range cfg.Run.Strikes {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		k, err := domain.ParseStrike(s)
		if err != nil {
			return reconciler.Config{}, fmt.Errorf("strike %q: %w", s, err)
		}
		if !seen[k] {
			seen[k] = true
			strikes = append(strikes, k)
		}
	}

	runCfg := reconciler.Config{
		Currency: currency,
		Expiry:   expiry,
		Strikes:  strikes,
		Duration: cfg.Duration(),
		Interval: cfg.Interval(),
	}
	if err := runCfg.Validate(time.Now()); err != nil {
		return reconciler.Config{}, err
	}
	return runCfg, nil
}
