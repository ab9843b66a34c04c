package payments

import (
	"context"
	"math/rand"
	"time"

	"github.com/frontand-tech/frontand/pkg/domain"

	"github.com/rs/xid"
)

const (
	defaultSuccessRate = 0.95
	defaultLatency     = time.Second
)

// SimulatedProcessor approximates a payment round-trip for development and
// tests: a fixed latency and a configurable success probability.
type SimulatedProcessor struct {
	successRate float64
	latency     time.Duration
}

type SimulatedProcessorOption func(*SimulatedProcessor)

// WithSuccessRate overrides the 0.95 default. 1 makes every charge
// succeed, 0 makes every charge decline.
func WithSuccessRate(rate float64) SimulatedProcessorOption {
	return func(p *SimulatedProcessor) {
		p.successRate = rate
	}
}

// WithLatency overrides the simulated round-trip delay.
func WithLatency(latency time.Duration) SimulatedProcessorOption {
	return func(p *SimulatedProcessor) {
		p.latency = latency
	}
}

func NewSimulatedProcessor(options ...SimulatedProcessorOption) *SimulatedProcessor {
	processor := &SimulatedProcessor{
		successRate: defaultSuccessRate,
		latency:     defaultLatency,
	}

	for _, option := range options {
		option(processor)
	}

	return processor
}

func (p *SimulatedProcessor) Charge(ctx context.Context, params domain.ChargeParams) (domain.ChargeResult, error) {
	if p.latency > 0 {
		select {
		case <-time.After(p.latency):
		case <-ctx.Done():
			return domain.ChargeResult{}, ctx.Err()
		}
	}

	if rand.Float64() >= p.successRate {
		return domain.ChargeResult{Succeeded: false}, nil
	}

	return domain.ChargeResult{
		PaymentID: "pay_" + xid.New().String(),
		Succeeded: true,
	}, nil
}
