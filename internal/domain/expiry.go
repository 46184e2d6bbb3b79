package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// settlementHour es la hora UTC a la que vencen todos los contratos de Deribit.
const settlementHour = 8

const yearSeconds = 365 * 24 * 3600

var expiryCodeRe = regexp.MustCompile(`^(\d{1,2})([A-Z]{3})(\d{2})$`)

// Expiry es un código de vencimiento DDMMMYY ("9MAY25", "27JUN25").
type Expiry struct {
	Code string    // tal como lo usa Deribit en los nombres, sin cero a la izquierda
	Date time.Time // día de calendario a medianoche UTC
}

// ParseExpiry valida y parsea un código de vencimiento. No comprueba si ya pasó.
func ParseExpiry(code string) (Expiry, error) {
	upper := strings.ToUpper(strings.TrimSpace(code))
	m := expiryCodeRe.FindStringSubmatch(upper)
	if m == nil {
		return Expiry{}, fmt.Errorf("domain.ParseExpiry %q: %w", code, ErrInvalidExpiry)
	}
	day, _ := strconv.Atoi(m[1])
	date, err := time.Parse("02Jan06", fmt.Sprintf("%02d%s%s", day, m[2], m[3]))
	if err != nil {
		return Expiry{}, fmt.Errorf("domain.ParseExpiry %q: %w", code, ErrInvalidExpiry)
	}
	return Expiry{
		Code: fmt.Sprintf("%d%s%s", day, m[2], m[3]),
		Date: date.UTC(),
	}, nil
}

// ExpiryFromDate construye el código Deribit para una fecha.
func ExpiryFromDate(t time.Time) Expiry {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return Expiry{
		Code: fmt.Sprintf("%d%s%s", d.Day(), strings.ToUpper(d.Format("Jan")), d.Format("06")),
		Date: d,
	}
}

// ExpiryFromFutureName extrae el vencimiento del último segmento de un nombre de
// futuro ("BTC-27JUN25" → 27JUN25).
func ExpiryFromFutureName(name string) (Expiry, error) {
	i := strings.LastIndex(name, "-")
	if i < 0 || i == len(name)-1 {
		return Expiry{}, fmt.Errorf("domain.ExpiryFromFutureName %q: %w", name, ErrInvalidExpiry)
	}
	return ParseExpiry(name[i+1:])
}

// SettlesAt devuelve el instante de vencimiento (08:00 UTC del día).
func (e Expiry) SettlesAt() time.Time {
	return e.Date.Add(settlementHour * time.Hour)
}

// YearsUntil devuelve el tiempo a vencimiento en años (ACT/365) desde now.
// Un vencimiento ya alcanzado devuelve ErrExpired: nunca se prica con T <= 0.
func (e Expiry) YearsUntil(now time.Time) (float64, error) {
	secs := e.SettlesAt().Sub(now.UTC()).Seconds()
	if secs <= 0 {
		return 0, fmt.Errorf("domain.YearsUntil %s (settled %s): %w",
			e.Code, e.SettlesAt().Format(time.RFC3339), ErrExpired)
	}
	return secs / yearSeconds, nil
}

// DaysBetween cuenta días de calendario entre dos vencimientos (b - a).
func DaysBetween(a, b Expiry) int {
	return int(b.Date.Sub(a.Date).Hours() / 24)
}

func (e Expiry) String() string { return e.Code }
