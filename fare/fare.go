// Package fare counts tickets for a path under a time-window validity rule.
package fare

import (
	"fmt"
)

// Default tariff of the urban network.
const (
	DefaultValidityMinutes = 45
	DefaultPrice           = 3.5
	DefaultCurrency        = "RON"
)

// ConfigurationError reports invalid fare parameters.
type ConfigurationError struct {
	Field string
	Value any
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("fare: invalid %s: %v", e.Field, e.Value)
}

// Policy is a validated tariff.
type Policy struct {
	ValidityMinutes int
	PricePerTicket  float64
	Currency        string
}

// NewPolicy validates the tariff parameters.
func NewPolicy(validityMinutes int, price float64, currency string) (Policy, error) {
	if validityMinutes <= 0 {
		return Policy{}, &ConfigurationError{Field: "validity window", Value: validityMinutes}
	}
	if price < 0 {
		return Policy{}, &ConfigurationError{Field: "ticket price", Value: price}
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	return Policy{ValidityMinutes: validityMinutes, PricePerTicket: price, Currency: currency}, nil
}

// DefaultPolicy returns the built-in tariff.
func DefaultPolicy() Policy {
	return Policy{ValidityMinutes: DefaultValidityMinutes, PricePerTicket: DefaultPrice, Currency: DefaultCurrency}
}

// Breakdown is the priced result for a path.
type Breakdown struct {
	Tickets int
	Cost    float64
	// TicketOf[i] is the 1-based ticket that covers the start of leg i.
	TicketOf []int
}

// Breakdown prices a sequence of leg durations in minutes.
func (p Policy) Breakdown(minutes []int) Breakdown {
	tickets := 1
	elapsed := 0
	ticketOf := make([]int, len(minutes))
	for i, d := range minutes {
		if elapsed > 0 && elapsed+d > p.ValidityMinutes {
			tickets++
			elapsed = 0
		}
		ticketOf[i] = tickets
		elapsed += d
		// a single leg longer than the window needs several tickets
		for elapsed > p.ValidityMinutes {
			tickets++
			elapsed -= p.ValidityMinutes
		}
	}
	return Breakdown{
		Tickets:  tickets,
		Cost:     float64(tickets) * p.PricePerTicket,
		TicketOf: ticketOf,
	}
}

// Price returns the tickets needed and total cost for the leg durations.
func Price(minutes []int, validityMinutes int, pricePerTicket float64) (int, float64, error) {
	p, err := NewPolicy(validityMinutes, pricePerTicket, "")
	if err != nil {
		return 0, 0, err
	}
	b := p.Breakdown(minutes)
	return b.Tickets, b.Cost, nil
}
