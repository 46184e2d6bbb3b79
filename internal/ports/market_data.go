package ports

import (
	"context"

	"github.com/alejandrodnm/optmark/internal/domain"
)

// MarketData es el contrato de datos que el reconciler consume del venue.
// Los reintentos son responsabilidad de la implementación: un dato ausente se
// devuelve como error que envuelve domain.ErrNoData (o domain.ErrUnavailable si
// se agotaron los reintentos), nunca como panic.
type MarketData interface {
	// FetchQuoteGrid devuelve IV (fracción decimal) y mark price por strike de
	// calls y puts de un vencimiento.
	FetchQuoteGrid(ctx context.Context, currency domain.Currency, expiry domain.Expiry) (domain.QuoteGrid, error)

	// FetchIndexPrice devuelve el índice del subyacente en USD.
	FetchIndexPrice(ctx context.Context, currency domain.Currency) (float64, error)

	// FetchInstrumentPrice devuelve el mark price de cualquier instrumento
	// (opción, futuro o perpetuo).
	FetchInstrumentPrice(ctx context.Context, name string) (float64, error)

	// ListFutures devuelve los nombres de los futuros fechados del subyacente,
	// sin perpetuos.
	ListFutures(ctx context.Context, currency domain.Currency) ([]string, error)
}
