package eligibility

import (
	"context"

	"github.com/droplabz/backend/internal/common"
	"github.com/droplabz/backend/pkg/xredis"
)

// redisFactProvider reads candidate facts ingested by the Discord and Solana
// sync pipelines. A wallet without ingested facts reads as a candidate that
// has not met any requirement yet.
type redisFactProvider struct {
	redisClient xredis.Client
}

func NewRedisFactProvider(redisClient xredis.Client) *redisFactProvider {
	return &redisFactProvider{redisClient: redisClient}
}

func (p *redisFactProvider) GetCandidateFacts(
	ctx context.Context, walletAddress, discordUserID string,
) (*CandidateFacts, error) {
	facts := CandidateFacts{}
	if err := p.redisClient.GetObj(ctx, common.RedisKeyCandidateFacts(walletAddress), &facts); err != nil {
		facts = CandidateFacts{}
	}

	// Supplying a wallet is what connects it.
	facts.WalletConnected = walletAddress != ""
	return &facts, nil
}
