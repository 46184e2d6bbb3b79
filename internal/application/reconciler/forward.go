package reconciler

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/alejandrodnm/optmark/internal/domain"
	"github.com/alejandrodnm/optmark/internal/ports"
)

// ForwardResolver resuelve el forward de un vencimiento: directo cuando hay un
// instrumento que lo cotiza, sintético sobre la curva de futuros si no.
// No guarda estado entre llamadas; la curva se fija al construirlo.
type ForwardResolver struct {
	market   ports.MarketData
	currency domain.Currency
	curve    domain.FuturesCurve
}

// NewForwardResolver crea un resolver para el subyacente con la curva listada.
func NewForwardResolver(market ports.MarketData, currency domain.Currency, curve domain.FuturesCurve) *ForwardResolver {
	return &ForwardResolver{market: market, currency: currency, curve: curve}
}

// Resolve devuelve el forward en USD (o USDC) para expiry.
func (f *ForwardResolver) Resolve(ctx context.Context, expiry domain.Expiry) (float64, error) {
	if name, ok := f.directInstrument(expiry); ok {
		price, err := f.market.FetchInstrumentPrice(ctx, name)
		if err != nil {
			return 0, fmt.Errorf("reconciler.Resolve %s: direct %s: %w", expiry, name, err)
		}
		return price, nil
	}
	return f.synthetic(ctx, expiry)
}

// directInstrument devuelve el instrumento que cotiza el forward sin interpolar.
func (f *ForwardResolver) directInstrument(expiry domain.Expiry) (string, bool) {
	name := f.currency.ForwardInstrument(expiry)
	if !f.currency.UsesDatedFutures() {
		return name, true
	}
	return name, f.curve.Has(name)
}

// synthetic interpola linealmente entre los dos futuros que rodean a expiry.
// Los dos mark prices se piden en paralelo.
func (f *ForwardResolver) synthetic(ctx context.Context, expiry domain.Expiry) (float64, error) {
	prev, next, err := f.curve.Bracket(expiry)
	if err != nil {
		return 0, fmt.Errorf("reconciler.Resolve %s: %w", expiry, err)
	}

	var prevPrice, nextPrice float64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := f.market.FetchInstrumentPrice(gctx, prev.Name)
		prevPrice = p
		return err
	})
	g.Go(func() error {
		p, err := f.market.FetchInstrumentPrice(gctx, next.Name)
		nextPrice = p
		return err
	})
	if err := g.Wait(); err != nil {
		return 0, fmt.Errorf("reconciler.Resolve %s: bracket %s/%s: %w", expiry, prev.Name, next.Name, err)
	}

	price, err := domain.BlendForward(expiry, prev, next, prevPrice, nextPrice)
	if err != nil {
		return 0, fmt.Errorf("reconciler.Resolve %s: %w", expiry, err)
	}

	slog.Debug("synthetic forward",
		"expiry", expiry.Code,
		"prev", prev.Name,
		"prev_price", prevPrice,
		"next", next.Name,
		"next_price", nextPrice,
		"forward", price,
	)
	return price, nil
}
