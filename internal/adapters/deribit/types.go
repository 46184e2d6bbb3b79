package deribit

import "encoding/json"

// DTOs raw de la API pública de Deribit. Solo se usan dentro de este paquete; la
// conversión a domain se hace en mapping.go.

// envelope es la respuesta JSON-RPC común a todos los métodos.
type envelope struct {
	Result json.RawMessage `json:"result"`
	Error  *apiError       `json:"error"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// bookSummary es un item de /public/get_book_summary_by_currency.
// mark_iv viene en porcentaje y puede ser null en instrumentos sin mercado.
type bookSummary struct {
	InstrumentName string   `json:"instrument_name"`
	MarkIV         *float64 `json:"mark_iv"`
	MarkPrice      *float64 `json:"mark_price"`
}

// instrument es un item de /public/get_instruments.
type instrument struct {
	InstrumentName string `json:"instrument_name"`
	Kind           string `json:"kind"`
	IsActive       bool   `json:"is_active"`
}

// indexPrice es la respuesta de /public/get_index_price.
type indexPrice struct {
	IndexPrice *float64 `json:"index_price"`
}

// ticker es la respuesta de /public/ticker (solo los campos que usamos).
type ticker struct {
	InstrumentName string   `json:"instrument_name"`
	MarkPrice      *float64 `json:"mark_price"`
}
