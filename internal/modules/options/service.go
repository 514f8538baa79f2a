// Package options serves the options chain view. Chains and greeks are
// backend-computed; this module only shapes them for display.
package options

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/quantdesk/terminal/internal/clients/platform"
)

// Reader is the slice of the backend client this module needs.
type Reader interface {
	GetOptionsChain(ctx context.Context, symbol, expiry string) (*platform.OptionsChainResponse, error)
	GetGreeks(ctx context.Context, contractSymbol string) (*platform.Greeks, error)
}

// Chain is an options chain split into calls and puts for display.
type Chain struct {
	Underlying string                    `json:"underlying"`
	Expiries   []string                  `json:"expiries"`
	Calls      []platform.OptionContract `json:"calls"`
	Puts       []platform.OptionContract `json:"puts"`
}

// Service serves the options chain view.
type Service struct {
	client Reader
	log    zerolog.Logger
}

// NewService creates a new options service
func NewService(client Reader, log zerolog.Logger) *Service {
	return &Service{
		client: client,
		log:    log.With().Str("service", "options").Logger(),
	}
}

// Chain returns the chain for an underlying, optionally filtered to one
// expiry, with contracts split by right.
func (s *Service) Chain(ctx context.Context, symbol, expiry string) (*Chain, error) {
	response, err := s.client.GetOptionsChain(ctx, symbol, expiry)
	if err != nil {
		return nil, err
	}

	chain := &Chain{
		Underlying: response.Underlying,
		Expiries:   response.Expiries,
		Calls:      []platform.OptionContract{},
		Puts:       []platform.OptionContract{},
	}
	for _, contract := range response.Contracts {
		switch contract.Right {
		case "call":
			chain.Calls = append(chain.Calls, contract)
		case "put":
			chain.Puts = append(chain.Puts, contract)
		default:
			s.log.Debug().Str("right", contract.Right).Str("contract", contract.Symbol).Msg("Skipping contract with unknown right")
		}
	}
	return chain, nil
}

// Greeks returns the backend-computed sensitivities for one contract.
func (s *Service) Greeks(ctx context.Context, contractSymbol string) (*platform.Greeks, error) {
	if contractSymbol == "" {
		return nil, fmt.Errorf("contract symbol is required")
	}
	return s.client.GetGreeks(ctx, contractSymbol)
}
