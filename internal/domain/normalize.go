package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// pricePlaces son los decimales con los que se comparan precios con el venue.
const pricePlaces = 4

// RoundPrice redondea a 4 decimales (mitad lejos de cero).
func RoundPrice(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(pricePlaces).Float64()
	return f
}

// NormalizePrice expresa un precio del modelo (en USD del forward) en la moneda en
// la que se liquida la opción: dividido por el índice para BTC/ETH, tal cual para
// los pares USDC. Sin índice una opción inversa no se puede normalizar.
func NormalizePrice(c Currency, usdPrice float64, indexPrice *float64) (float64, error) {
	if !c.IsInverse() {
		return RoundPrice(usdPrice), nil
	}
	if indexPrice == nil || *indexPrice <= 0 || !isFinite(*indexPrice) {
		return 0, fmt.Errorf("domain.NormalizePrice %s: index price: %w", c, ErrNoData)
	}
	q := decimal.NewFromFloat(usdPrice).Div(decimal.NewFromFloat(*indexPrice))
	f, _ := q.Round(pricePlaces).Float64()
	return f, nil
}
