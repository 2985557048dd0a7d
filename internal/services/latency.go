package services

import (
	"context"
	"time"

	"github.com/nimasrn/card-gateway/internal/config"
	"github.com/nimasrn/card-gateway/pkg/prom"
)

type Endpoint string

const (
	EndpointListCards          Endpoint = "list_cards"
	EndpointAddCard            Endpoint = "add_card"
	EndpointToggleFreeze       Endpoint = "toggle_freeze"
	EndpointToggleVisibility   Endpoint = "toggle_visibility"
	EndpointUpdateCard         Endpoint = "update_card"
	EndpointDeleteCard         Endpoint = "delete_card"
	EndpointListTransactions   Endpoint = "list_transactions"
	EndpointTransactionsByCard Endpoint = "transactions_by_card"
)

var endpointDelays = map[Endpoint]time.Duration{
	EndpointListCards:          500 * time.Millisecond,
	EndpointAddCard:            800 * time.Millisecond,
	EndpointToggleFreeze:       600 * time.Millisecond,
	EndpointToggleVisibility:   300 * time.Millisecond,
	EndpointUpdateCard:         600 * time.Millisecond,
	EndpointDeleteCard:         600 * time.Millisecond,
	EndpointListTransactions:   400 * time.Millisecond,
	EndpointTransactionsByCard: 300 * time.Millisecond,
}

// Latency controls the artificial network delay put in front of every
// endpoint.
type Latency struct {
	Enabled bool
	Scale   float64
}

// NoLatency disables the delay; used by tests and the CLI.
var NoLatency = Latency{}

func LatencyFromConfig(c *config.Config) Latency {
	return Latency{Enabled: c.ApiLatencyEnabled, Scale: c.ApiLatencyScale}
}

func (l Latency) delay(e Endpoint) time.Duration {
	if !l.Enabled || l.Scale <= 0 {
		return 0
	}
	return time.Duration(float64(endpointDelays[e]) * l.Scale)
}

// wait sleeps for the endpoint's delay or until ctx is done.
func (l Latency) wait(ctx context.Context, e Endpoint) error {
	d := l.delay(e)
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// begin marks a call to e as in flight. Pair it with observe.
func begin(e Endpoint) time.Time {
	prom.APIRequestStarted(string(e))
	return time.Now()
}

func observe(e Endpoint, start time.Time, err error) {
	prom.APIRequestFinished(string(e))
	prom.ObserveAPIRequest(string(e), StatusOf(err), time.Since(start).Seconds())
}
