package testutil

import (
	"context"

	"github.com/droplabz/backend/internal/domain/eligibility"
)

// MockFactProvider returns canned facts keyed by wallet address. Set
// GetCandidateFactsFunc to override.
type MockFactProvider struct {
	Facts                 map[string]eligibility.CandidateFacts
	GetCandidateFactsFunc func(ctx context.Context, walletAddress, discordUserID string) (*eligibility.CandidateFacts, error)
}

func (p *MockFactProvider) GetCandidateFacts(
	ctx context.Context, walletAddress, discordUserID string,
) (*eligibility.CandidateFacts, error) {
	if p.GetCandidateFactsFunc != nil {
		return p.GetCandidateFactsFunc(ctx, walletAddress, discordUserID)
	}

	if facts, ok := p.Facts[walletAddress]; ok {
		return &facts, nil
	}

	return &eligibility.CandidateFacts{}, nil
}
