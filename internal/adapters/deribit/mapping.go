package deribit

import (
	"strings"

	"github.com/alejandrodnm/optmark/internal/domain"
)

// mapQuoteGrid filtra el book summary por subyacente y vencimiento exactos y lo
// convierte a domain.QuoteGrid. Devuelve cuántos instrumentos se descartaron por
// no tener IV o mark price.
func mapQuoteGrid(raw []bookSummary, currency domain.Currency, expiry domain.Expiry) (domain.QuoteGrid, int) {
	grid := domain.NewQuoteGrid()
	skipped := 0

	for _, r := range raw {
		inst, err := domain.ParseOptionName(r.InstrumentName)
		if err != nil {
			continue
		}
		// el book por "USDC" mezcla todos los pares lineales
		if inst.Currency != currency || inst.Expiry != expiry.Code {
			continue
		}
		if r.MarkIV == nil || r.MarkPrice == nil {
			skipped++
			continue
		}

		grid.Side(inst.Kind)[inst.Strike] = domain.Quote{
			IV:        *r.MarkIV / 100, // Deribit publica la IV en porcentaje
			MarkPrice: domain.RoundPrice(*r.MarkPrice),
		}
	}

	return grid, skipped
}

// mapFutureNames devuelve los futuros fechados activos del subyacente, sin
// perpetuos.
func mapFutureNames(raw []instrument, currency domain.Currency) []string {
	prefix := currency.String() + "-"
	names := make([]string, 0, len(raw))
	for _, r := range raw {
		if !strings.HasPrefix(r.InstrumentName, prefix) || domain.IsPerpetual(r.InstrumentName) {
			continue
		}
		if !r.IsActive {
			continue
		}
		if r.Kind != "" && r.Kind != "future" {
			continue
		}
		names = append(names, r.InstrumentName)
	}
	return names
}
