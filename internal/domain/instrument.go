package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Currency es el subyacente de la cadena de opciones tal como lo nombra Deribit
// (BTC, ETH o pares lineales tipo SOL_USDC).
type Currency string

const (
	BTC      Currency = "BTC"
	ETH      Currency = "ETH"
	SOLUSDC  Currency = "SOL_USDC"
	XRPUSDC  Currency = "XRP_USDC"
	BNBUSDC  Currency = "BNB_USDC"
	PAXGUSDC Currency = "PAXG_USDC"
)

// SupportedCurrencies es el conjunto fijo de subyacentes soportados.
var SupportedCurrencies = []Currency{BTC, ETH, SOLUSDC, XRPUSDC, BNBUSDC, PAXGUSDC}

const perpetualSuffix = "PERPETUAL"

// ParseCurrency normaliza a mayúsculas y valida contra SupportedCurrencies.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	for _, supported := range SupportedCurrencies {
		if c == supported {
			return c, nil
		}
	}
	return "", fmt.Errorf("domain.ParseCurrency %q: %w", s, ErrUnsupportedCurrency)
}

func (c Currency) String() string { return string(c) }

// SettlementCurrency es la moneda con la que Deribit agrupa los instrumentos:
// los pares *_USDC se liquidan en USDC, BTC y ETH en sí mismos.
func (c Currency) SettlementCurrency() string {
	if strings.Contains(string(c), "USDC") {
		return "USDC"
	}
	return string(c)
}

// IndexName devuelve el nombre del índice de precio del subyacente.
func (c Currency) IndexName() string {
	switch c {
	case BTC, ETH:
		return strings.ToLower(string(c)) + "_usd"
	}
	return strings.ToLower(string(c))
}

// IsInverse indica opciones liquidadas en el propio subyacente: su mark price se
// cotiza en unidades del subyacente y hay que dividir por el índice.
func (c Currency) IsInverse() bool {
	return c == BTC || c == ETH
}

// UsesDatedFutures indica si el forward se resuelve con la curva de futuros
// fechados. El resto usa siempre el perpetuo.
func (c Currency) UsesDatedFutures() bool {
	return c == BTC || c == ETH || c == PAXGUSDC
}

// PerpetualName devuelve el nombre del perpetuo, p.ej. "SOL_USDC-PERPETUAL".
func (c Currency) PerpetualName() string {
	return string(c) + "-" + perpetualSuffix
}

// FutureName devuelve el nombre del futuro fechado, p.ej. "BTC-27JUN25".
func (c Currency) FutureName(e Expiry) string {
	return string(c) + "-" + e.Code
}

// ForwardInstrument devuelve el instrumento que cotiza directamente el forward
// para el vencimiento dado cuando existe (perpetuo o futuro del mismo día).
func (c Currency) ForwardInstrument(e Expiry) string {
	if !c.UsesDatedFutures() {
		return c.PerpetualName()
	}
	return c.FutureName(e)
}

// IsPerpetual indica si el nombre corresponde a un contrato perpetuo.
func IsPerpetual(name string) bool {
	return strings.Contains(name, "PERP")
}

// OptionKind distingue call de put.
type OptionKind string

const (
	Call OptionKind = "call"
	Put  OptionKind = "put"
)

// Kinds es el orden canónico de emisión: call antes que put.
var Kinds = [2]OptionKind{Call, Put}

// ParseOptionKind acepta "call"/"put" y los sufijos de Deribit "C"/"P".
func ParseOptionKind(s string) (OptionKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call", "c":
		return Call, nil
	case "put", "p":
		return Put, nil
	}
	return "", fmt.Errorf("domain.ParseOptionKind: unknown kind %q", s)
}

// OptionInstrument es la identidad parseada de una opción de Deribit.
type OptionInstrument struct {
	Currency Currency
	Expiry   string // código tal cual aparece en el nombre, p.ej. "9MAY25"
	Strike   float64
	Kind     OptionKind
}

// ParseOptionName parsea nombres tipo "BTC-9MAY25-95000-C" o "XRP_USDC-9MAY25-2d2-P".
func ParseOptionName(name string) (OptionInstrument, error) {
	parts := strings.Split(name, "-")
	if len(parts) != 4 {
		return OptionInstrument{}, fmt.Errorf("domain.ParseOptionName %q: want 4 segments, got %d", name, len(parts))
	}
	strike, err := ParseStrike(parts[2])
	if err != nil {
		return OptionInstrument{}, fmt.Errorf("domain.ParseOptionName %q: %w", name, err)
	}
	kind, err := ParseOptionKind(parts[3])
	if err != nil {
		return OptionInstrument{}, fmt.Errorf("domain.ParseOptionName %q: %w", name, err)
	}
	return OptionInstrument{
		Currency: Currency(parts[0]),
		Expiry:   parts[1],
		Strike:   strike,
		Kind:     kind,
	}, nil
}

// ParseStrike convierte el strike del nombre. Deribit usa 'd' como separador
// decimal para strikes fraccionarios ("0d625" = 0.625).
func ParseStrike(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, "d", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("parse strike %q: %w", s, err)
	}
	return v, nil
}
