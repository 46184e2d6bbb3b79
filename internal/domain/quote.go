package domain

import "sort"

// Quote es la cotización de una opción: IV como fracción decimal y mark price.
type Quote struct {
	IV        float64
	MarkPrice float64
}

// QuoteGrid es el snapshot de un vencimiento: calls y puts indexados por strike.
type QuoteGrid struct {
	Calls map[float64]Quote
	Puts  map[float64]Quote
}

// NewQuoteGrid devuelve un grid vacío listo para rellenar.
func NewQuoteGrid() QuoteGrid {
	return QuoteGrid{
		Calls: make(map[float64]Quote),
		Puts:  make(map[float64]Quote),
	}
}

// Side devuelve el lado del grid para el tipo dado.
func (g QuoteGrid) Side(kind OptionKind) map[float64]Quote {
	if kind == Put {
		return g.Puts
	}
	return g.Calls
}

// Lookup busca la cotización de un strike y tipo.
func (g QuoteGrid) Lookup(kind OptionKind, strike float64) (Quote, bool) {
	q, ok := g.Side(kind)[strike]
	return q, ok
}

// Strikes devuelve los strikes cotizados de los calls, ordenados. Es el
// "standard grid" del vencimiento.
func (g QuoteGrid) Strikes() []float64 {
	return sortedStrikes(g.Calls)
}

// IsEmpty indica que no hay ninguna cotización.
func (g QuoteGrid) IsEmpty() bool {
	return len(g.Calls) == 0 && len(g.Puts) == 0
}

func sortedStrikes(side map[float64]Quote) []float64 {
	strikes := make([]float64, 0, len(side))
	for k := range side {
		strikes = append(strikes, k)
	}
	sort.Float64s(strikes)
	return strikes
}
