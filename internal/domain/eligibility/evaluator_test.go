package eligibility

import (
	"context"
	"testing"

	"github.com/droplabz/backend/internal/entity"
	"github.com/stretchr/testify/require"
)

func Test_Evaluate_AndSemantics(t *testing.T) {
	ctx := context.Background()
	requirements := []entity.Requirement{
		{ID: "r1", Type: entity.RequirementWalletConnected},
		{ID: "r2", Type: entity.RequirementDiscordMember},
		{ID: "r3", Type: entity.RequirementDiscordAccountAge, Config: entity.Map{"min_days": 30}},
	}

	// All satisfied.
	results, eligible := Evaluate(ctx, CandidateFacts{
		WalletConnected:       true,
		DiscordLinked:         true,
		DiscordAccountAgeDays: 31,
	}, requirements)
	require.True(t, eligible)
	require.Len(t, results, 3)
	for _, r := range results {
		require.True(t, r.Satisfied)
		require.Empty(t, r.Message)
	}

	// One failing requirement fails the aggregate.
	results, eligible = Evaluate(ctx, CandidateFacts{
		WalletConnected:       true,
		DiscordLinked:         true,
		DiscordAccountAgeDays: 29,
	}, requirements)
	require.False(t, eligible)
	require.True(t, results[0].Satisfied)
	require.True(t, results[1].Satisfied)
	require.False(t, results[2].Satisfied)
	require.NotEmpty(t, results[2].Message)
}

func Test_Evaluate_DiscordRole_OrSemantics(t *testing.T) {
	ctx := context.Background()
	requirements := []entity.Requirement{
		{
			ID:     "r1",
			Type:   entity.RequirementDiscordRole,
			Config: entity.Map{"role_ids": []string{"role-a", "role-b", "role-c"}},
		},
	}

	// One of several role ids is enough.
	_, eligible := Evaluate(ctx, CandidateFacts{
		DiscordLinked:  true,
		DiscordRoleIDs: []string{"role-b"},
	}, requirements)
	require.True(t, eligible)

	// No overlap fails.
	_, eligible = Evaluate(ctx, CandidateFacts{
		DiscordLinked:  true,
		DiscordRoleIDs: []string{"role-x"},
	}, requirements)
	require.False(t, eligible)
}

func Test_Evaluate_MissingFactsAreUnmet(t *testing.T) {
	ctx := context.Background()
	requirements := []entity.Requirement{
		{ID: "r1", Type: entity.RequirementDiscordRole, Config: entity.Map{"role_ids": []string{"role-a"}}},
		{ID: "r2", Type: entity.RequirementDiscordServerJoinAge, Config: entity.Map{"min_days": 7}},
		{ID: "r3", Type: entity.RequirementTokenHolding, Config: entity.Map{"mint": "mint-1", "min_amount": 10.0}},
		{ID: "r4", Type: entity.RequirementNFTHolding, Config: entity.Map{"collection_mint": "coll-1"}},
	}

	// Discord not linked, no balances resolved: every requirement reads as
	// not yet met, never as an error.
	results, eligible := Evaluate(ctx, CandidateFacts{}, requirements)
	require.False(t, eligible)
	require.Len(t, results, 4)
	for _, r := range results {
		require.False(t, r.Satisfied)
		require.NotEmpty(t, r.Message)
	}
}

func Test_Evaluate_NumericThresholdsInclusive(t *testing.T) {
	ctx := context.Background()

	_, eligible := Evaluate(ctx, CandidateFacts{
		DiscordLinked:         true,
		DiscordAccountAgeDays: 30,
	}, []entity.Requirement{
		{ID: "r1", Type: entity.RequirementDiscordAccountAge, Config: entity.Map{"min_days": 30}},
	})
	require.True(t, eligible)

	_, eligible = Evaluate(ctx, CandidateFacts{
		TokenBalances: map[string]float64{"mint-1": 10},
	}, []entity.Requirement{
		{ID: "r1", Type: entity.RequirementTokenHolding, Config: entity.Map{"mint": "mint-1", "min_amount": 10.0}},
	})
	require.True(t, eligible)
}

func Test_Evaluate_MisconfiguredRequirement(t *testing.T) {
	ctx := context.Background()

	results, eligible := Evaluate(ctx, CandidateFacts{DiscordLinked: true}, []entity.Requirement{
		{ID: "r1", Type: entity.RequirementDiscordRole, Config: entity.Map{}},
	})
	require.False(t, eligible)
	require.Equal(t, "Requirement is misconfigured", results[0].Message)
}
