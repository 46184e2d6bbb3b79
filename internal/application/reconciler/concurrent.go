package reconciler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/alejandrodnm/optmark/internal/domain"
)

// snapshot son los datos de mercado de un ciclo. Se construye una vez y solo se
// lee desde las goroutines de los strikes.
type snapshot struct {
	currency domain.Currency
	expiry   domain.Expiry
	grid     domain.QuoteGrid
	curves   map[domain.OptionKind]*domain.IVCurve // nil por tipo si no se pudo construir
	onGrid   map[float64]bool
	index    *float64
	years    float64
	yearsErr error
	gridErr  error
	forward  func() (float64, error) // memoizado por ciclo
}

// priceStrikesConcurrent lanza una goroutine por strike. Cada una devuelve su
// resultado por el canal con su posición; el slice final no tiene escritores
// concurrentes.
func priceStrikesConcurrent(ctx context.Context, snap *snapshot, strikes []float64) []domain.StrikeResult {
	type indexed struct {
		i   int
		res domain.StrikeResult
	}

	resultCh := make(chan indexed, len(strikes))
	var wg sync.WaitGroup
	for i, strike := range strikes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resultCh <- indexed{i: i, res: priceStrike(ctx, snap, strike)}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]domain.StrikeResult, len(strikes))
	for r := range resultCh {
		results[r.i] = r.res
	}
	return results
}

// priceStrike calcula call y put del strike en paralelo.
func priceStrike(ctx context.Context, snap *snapshot, strike float64) domain.StrikeResult {
	res := domain.StrikeResult{Strike: strike}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		res.Call = priceLeg(ctx, snap, strike, domain.Call)
	}()
	go func() {
		defer wg.Done()
		res.Put = priceLeg(ctx, snap, strike, domain.Put)
	}()
	wg.Wait()

	return res
}

// priceLeg devuelve el precio cotizado (solo en el standard grid) y el calculado.
// Cualquier fallo deja el calculado ausente y se loguea.
func priceLeg(ctx context.Context, snap *snapshot, strike float64, kind domain.OptionKind) domain.Leg {
	var leg domain.Leg

	quote, quoted := snap.grid.Lookup(kind, strike)
	if snap.onGrid[strike] && quoted {
		leg.Quoted = domain.PriceOf(quote.MarkPrice)
	}

	price, err := computeLeg(ctx, snap, strike, kind, quote, quoted)
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, domain.ErrNoData) || errors.Is(err, domain.ErrExpired) {
			level = slog.LevelDebug
		}
		slog.Log(ctx, level, "cell unresolved",
			"currency", snap.currency,
			"expiry", snap.expiry.Code,
			"strike", strike,
			"kind", kind,
			"err", err,
		)
		return leg
	}

	leg.Computed = domain.PriceOf(price)
	return leg
}

func computeLeg(ctx context.Context, snap *snapshot, strike float64, kind domain.OptionKind, quote domain.Quote, quoted bool) (float64, error) {
	if snap.gridErr != nil {
		return 0, snap.gridErr
	}
	if snap.yearsErr != nil {
		return 0, snap.yearsErr
	}

	var vol float64
	switch {
	case snap.onGrid[strike]:
		if !quoted {
			return 0, fmt.Errorf("no %s quote on grid strike: %w", kind, domain.ErrNoData)
		}
		vol = quote.IV
	case snap.curves[kind] != nil:
		vol = snap.curves[kind].At(strike)
	default:
		return 0, fmt.Errorf("no %s iv curve: %w", kind, domain.ErrResolution)
	}

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	forward, err := snap.forward()
	if err != nil {
		return 0, err
	}

	usd, err := domain.Black76(kind, forward, strike, snap.years, vol)
	if err != nil {
		return 0, err
	}
	return domain.NormalizePrice(snap.currency, usd, snap.index)
}
