package eligibility

import "context"

// CandidateFacts are the externally resolved facts a candidate is judged
// against. The evaluator never fetches anything itself; a missing fact reads
// as its zero value and fails the corresponding requirement instead of
// raising an error.
type CandidateFacts struct {
	WalletConnected bool

	DiscordLinked         bool
	DiscordRoleIDs        []string
	DiscordAccountAgeDays int
	ServerJoinAgeDays     int

	// TokenBalances maps token mint to held amount.
	TokenBalances map[string]float64

	// NFTHoldings maps collection mint to held count.
	NFTHoldings map[string]int
}

// FactProvider resolves candidate facts from the identity collaborators
// (Discord bot, chain RPC). A provider failure degrades to empty facts, never
// to an engine failure.
type FactProvider interface {
	GetCandidateFacts(ctx context.Context, walletAddress, discordUserID string) (*CandidateFacts, error)
}

// Checker decides whether one requirement is satisfied by a set of facts.
type Checker interface {
	Check(facts CandidateFacts) bool

	// Statement returns the human message shown when the requirement is not
	// yet met.
	Statement() string
}
