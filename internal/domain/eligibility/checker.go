package eligibility

import (
	"context"
	"fmt"

	"github.com/droplabz/backend/internal/entity"
	"github.com/droplabz/backend/pkg/errorx"
	"github.com/droplabz/backend/pkg/xcontext"
	"github.com/mitchellh/mapstructure"
)

// Wallet connected
type walletConnectedChecker struct{}

func (c walletConnectedChecker) Statement() string {
	return "Connect a wallet to enter"
}

func (c walletConnectedChecker) Check(facts CandidateFacts) bool {
	return facts.WalletConnected
}

// Discord member
type discordMemberChecker struct{}

func (c discordMemberChecker) Statement() string {
	return "Join the Discord server to enter"
}

func (c discordMemberChecker) Check(facts CandidateFacts) bool {
	return facts.DiscordLinked
}

// Discord role
type discordRoleChecker struct {
	RoleIDs   []string `mapstructure:"role_ids" structs:"role_ids"`
	RoleNames []string `mapstructure:"role_names" structs:"role_names"`
}

func newDiscordRoleChecker(ctx context.Context, config entity.Map) (*discordRoleChecker, error) {
	checker := discordRoleChecker{}
	if err := mapstructure.Decode(map[string]any(config), &checker); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot decode discord role config: %v", err)
		return nil, errorx.Unknown
	}

	if len(checker.RoleIDs) == 0 {
		return nil, errorx.New(errorx.BadRequest, "Require at least one role id")
	}

	return &checker, nil
}

func (c discordRoleChecker) Statement() string {
	if len(c.RoleNames) > 0 {
		return fmt.Sprintf("You must hold one of the Discord roles %v", c.RoleNames)
	}

	return "You must hold one of the required Discord roles"
}

// Check passes when the candidate holds at least one of the configured roles.
func (c discordRoleChecker) Check(facts CandidateFacts) bool {
	if !facts.DiscordLinked {
		return false
	}

	held := map[string]bool{}
	for _, id := range facts.DiscordRoleIDs {
		held[id] = true
	}

	for _, id := range c.RoleIDs {
		if held[id] {
			return true
		}
	}

	return false
}

// Discord account age
type discordAccountAgeChecker struct {
	MinDays int `mapstructure:"min_days" structs:"min_days"`
}

func newDiscordAccountAgeChecker(ctx context.Context, config entity.Map) (*discordAccountAgeChecker, error) {
	checker := discordAccountAgeChecker{}
	if err := mapstructure.Decode(map[string]any(config), &checker); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot decode account age config: %v", err)
		return nil, errorx.Unknown
	}

	if checker.MinDays <= 0 {
		return nil, errorx.New(errorx.BadRequest, "Minimum account age must be a positive number of days")
	}

	return &checker, nil
}

func (c discordAccountAgeChecker) Statement() string {
	return fmt.Sprintf("Your Discord account must be at least %d days old", c.MinDays)
}

func (c discordAccountAgeChecker) Check(facts CandidateFacts) bool {
	return facts.DiscordLinked && facts.DiscordAccountAgeDays >= c.MinDays
}

// Discord server join age
type serverJoinAgeChecker struct {
	MinDays int `mapstructure:"min_days" structs:"min_days"`
}

func newServerJoinAgeChecker(ctx context.Context, config entity.Map) (*serverJoinAgeChecker, error) {
	checker := serverJoinAgeChecker{}
	if err := mapstructure.Decode(map[string]any(config), &checker); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot decode join age config: %v", err)
		return nil, errorx.Unknown
	}

	if checker.MinDays <= 0 {
		return nil, errorx.New(errorx.BadRequest, "Minimum join age must be a positive number of days")
	}

	return &checker, nil
}

func (c serverJoinAgeChecker) Statement() string {
	return fmt.Sprintf("You must have been in the server for at least %d days", c.MinDays)
}

func (c serverJoinAgeChecker) Check(facts CandidateFacts) bool {
	return facts.DiscordLinked && facts.ServerJoinAgeDays >= c.MinDays
}

// Token holding
type tokenHoldingChecker struct {
	Mint      string  `mapstructure:"mint" structs:"mint"`
	MinAmount float64 `mapstructure:"min_amount" structs:"min_amount"`
}

func newTokenHoldingChecker(ctx context.Context, config entity.Map) (*tokenHoldingChecker, error) {
	checker := tokenHoldingChecker{}
	if err := mapstructure.Decode(map[string]any(config), &checker); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot decode token holding config: %v", err)
		return nil, errorx.Unknown
	}

	if checker.Mint == "" {
		return nil, errorx.New(errorx.BadRequest, "Require a token mint")
	}

	if checker.MinAmount <= 0 {
		return nil, errorx.New(errorx.BadRequest, "Minimum amount must be a positive number")
	}

	return &checker, nil
}

func (c tokenHoldingChecker) Statement() string {
	return fmt.Sprintf("You must hold at least %g of token %s", c.MinAmount, c.Mint)
}

func (c tokenHoldingChecker) Check(facts CandidateFacts) bool {
	return facts.TokenBalances[c.Mint] >= c.MinAmount
}

// NFT holding
type nftHoldingChecker struct {
	CollectionMint string `mapstructure:"collection_mint" structs:"collection_mint"`
}

func newNFTHoldingChecker(ctx context.Context, config entity.Map) (*nftHoldingChecker, error) {
	checker := nftHoldingChecker{}
	if err := mapstructure.Decode(map[string]any(config), &checker); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot decode nft holding config: %v", err)
		return nil, errorx.Unknown
	}

	if checker.CollectionMint == "" {
		return nil, errorx.New(errorx.BadRequest, "Require a collection mint")
	}

	return &checker, nil
}

func (c nftHoldingChecker) Statement() string {
	return fmt.Sprintf("You must hold an NFT from collection %s", c.CollectionMint)
}

func (c nftHoldingChecker) Check(facts CandidateFacts) bool {
	return facts.NFTHoldings[c.CollectionMint] > 0
}
