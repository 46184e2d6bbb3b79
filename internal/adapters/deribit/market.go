package deribit

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/alejandrodnm/optmark/internal/domain"
)

const (
	bookSummaryPath = "/public/get_book_summary_by_currency"
	instrumentsPath = "/public/get_instruments"
	indexPricePath  = "/public/get_index_price"
	tickerPath      = "/public/ticker"
)

// FetchQuoteGrid devuelve IV y mark price por strike para calls y puts del
// vencimiento. Un grid sin ninguna cotización se trata como dato ausente.
func (c *Client) FetchQuoteGrid(ctx context.Context, currency domain.Currency, expiry domain.Expiry) (domain.QuoteGrid, error) {
	params := url.Values{}
	params.Set("currency", currency.SettlementCurrency())
	params.Set("kind", "option")

	var raw []bookSummary
	if err := c.get(ctx, bookSummaryPath, params, &raw); err != nil {
		return domain.QuoteGrid{}, fmt.Errorf("deribit.FetchQuoteGrid %s %s: %w", currency, expiry, err)
	}

	grid, skipped := mapQuoteGrid(raw, currency, expiry)
	if grid.IsEmpty() {
		return domain.QuoteGrid{}, fmt.Errorf("deribit.FetchQuoteGrid %s %s: no quoted options: %w",
			currency, expiry, domain.ErrNoData)
	}

	slog.Debug("quote grid fetched",
		"currency", currency,
		"expiry", expiry.Code,
		"calls", len(grid.Calls),
		"puts", len(grid.Puts),
		"skipped_no_iv", skipped,
	)
	return grid, nil
}

// ListFutures devuelve los futuros fechados listados del subyacente.
func (c *Client) ListFutures(ctx context.Context, currency domain.Currency) ([]string, error) {
	params := url.Values{}
	params.Set("currency", currency.SettlementCurrency())
	params.Set("kind", "future")

	var raw []instrument
	if err := c.get(ctx, instrumentsPath, params, &raw); err != nil {
		return nil, fmt.Errorf("deribit.ListFutures %s: %w", currency, err)
	}

	names := mapFutureNames(raw, currency)
	slog.Debug("futures listed", "currency", currency, "count", len(names))
	return names, nil
}

// FetchIndexPrice devuelve el índice en USD del subyacente.
func (c *Client) FetchIndexPrice(ctx context.Context, currency domain.Currency) (float64, error) {
	params := url.Values{}
	params.Set("index_name", currency.IndexName())

	var resp indexPrice
	if err := c.get(ctx, indexPricePath, params, &resp); err != nil {
		return 0, fmt.Errorf("deribit.FetchIndexPrice %s: %w", currency, err)
	}
	if resp.IndexPrice == nil {
		return 0, fmt.Errorf("deribit.FetchIndexPrice %s: %w", currency, domain.ErrNoData)
	}
	return *resp.IndexPrice, nil
}

// FetchInstrumentPrice devuelve el mark price de un instrumento.
func (c *Client) FetchInstrumentPrice(ctx context.Context, name string) (float64, error) {
	params := url.Values{}
	params.Set("instrument_name", name)

	var resp ticker
	if err := c.get(ctx, tickerPath, params, &resp); err != nil {
		return 0, fmt.Errorf("deribit.FetchInstrumentPrice %s: %w", name, err)
	}
	if resp.MarkPrice == nil {
		return 0, fmt.Errorf("deribit.FetchInstrumentPrice %s: %w", name, domain.ErrNoData)
	}
	return *resp.MarkPrice, nil
}
