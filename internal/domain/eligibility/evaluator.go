package eligibility

import (
	"context"

	"github.com/droplabz/backend/internal/entity"
	"github.com/droplabz/backend/pkg/errorx"
	"github.com/fatih/structs"
)

// RequirementResult is the per-requirement verdict returned to callers. The
// aggregate eligibility is the AND of all Satisfied flags.
type RequirementResult struct {
	RequirementID string                 `json:"requirement_id"`
	Type          entity.RequirementType `json:"type"`
	Satisfied     bool                   `json:"satisfied"`
	Message       string                 `json:"message"`
}

// NewChecker builds the checker for one requirement from its stored config.
func NewChecker(ctx context.Context, req entity.Requirement) (Checker, error) {
	switch req.Type {
	case entity.RequirementWalletConnected:
		return walletConnectedChecker{}, nil

	case entity.RequirementDiscordMember:
		return discordMemberChecker{}, nil

	case entity.RequirementDiscordRole:
		return newDiscordRoleChecker(ctx, req.Config)

	case entity.RequirementDiscordAccountAge:
		return newDiscordAccountAgeChecker(ctx, req.Config)

	case entity.RequirementDiscordServerJoinAge:
		return newServerJoinAgeChecker(ctx, req.Config)

	case entity.RequirementTokenHolding:
		return newTokenHoldingChecker(ctx, req.Config)

	case entity.RequirementNFTHolding:
		return newNFTHoldingChecker(ctx, req.Config)

	default:
		return nil, errorx.New(errorx.BadRequest, "Invalid requirement type %s", req.Type)
	}
}

// CanonicalConfig re-encodes a checker's decoded config so stored requirements
// carry only the keys the checker understands.
func CanonicalConfig(checker Checker) entity.Map {
	return entity.Map(structs.Map(checker))
}

// Evaluate runs every requirement against the facts. It is pure: no storage,
// no external calls. Unsatisfiable configs (unknown type, broken payload) are
// reported as unsatisfied results rather than errors so the caller can always
// render a checklist.
func Evaluate(
	ctx context.Context, facts CandidateFacts, requirements []entity.Requirement,
) ([]RequirementResult, bool) {
	results := make([]RequirementResult, 0, len(requirements))
	eligible := true

	for _, req := range requirements {
		result := RequirementResult{RequirementID: req.ID, Type: req.Type}

		checker, err := NewChecker(ctx, req)
		if err != nil {
			result.Satisfied = false
			result.Message = "Requirement is misconfigured"
		} else {
			result.Satisfied = checker.Check(facts)
			if !result.Satisfied {
				result.Message = checker.Statement()
			}
		}

		eligible = eligible && result.Satisfied
		results = append(results, result)
	}

	return results, eligible
}
