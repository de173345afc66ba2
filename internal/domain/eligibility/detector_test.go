package eligibility

import (
	"testing"

	"github.com/droplabz/backend/internal/entity"
	"github.com/stretchr/testify/require"
)

func Test_CheckDuplicate_WalletSignal(t *testing.T) {
	existing := []entity.Entry{
		{Base: entity.Base{ID: "e1"}, WalletAddress: "wallet-1", AdmissionSeq: 1},
	}

	verdict := CheckDuplicate("wallet-1", "", existing)
	require.True(t, verdict.IsDuplicate)
	require.Equal(t, entity.ReasonDuplicateWallet, verdict.Reason)
	require.Equal(t, "e1", verdict.CanonicalEntryID)

	verdict = CheckDuplicate("wallet-2", "", existing)
	require.False(t, verdict.IsDuplicate)
}

func Test_CheckDuplicate_DiscordSignal(t *testing.T) {
	existing := []entity.Entry{
		{Base: entity.Base{ID: "e1"}, WalletAddress: "wallet-1", DiscordUserID: "discord-1", AdmissionSeq: 1},
	}

	// Same discord account behind a different wallet is flagged.
	verdict := CheckDuplicate("wallet-2", "discord-1", existing)
	require.True(t, verdict.IsDuplicate)
	require.Equal(t, entity.ReasonDuplicateDiscordAccount, verdict.Reason)
	require.Equal(t, "e1", verdict.CanonicalEntryID)

	// A different discord account is fine.
	verdict = CheckDuplicate("wallet-2", "discord-2", existing)
	require.False(t, verdict.IsDuplicate)

	// No discord account, no secondary signal.
	verdict = CheckDuplicate("wallet-2", "", existing)
	require.False(t, verdict.IsDuplicate)
}

func Test_Sweep_EarliestEntryIsCanonical(t *testing.T) {
	entries := []entity.Entry{
		// Given out of order on purpose; the sweep must order by admission.
		{Base: entity.Base{ID: "e3"}, WalletAddress: "wallet-3", DiscordUserID: "discord-1", AdmissionSeq: 3},
		{Base: entity.Base{ID: "e1"}, WalletAddress: "wallet-1", DiscordUserID: "discord-1", AdmissionSeq: 1},
		{Base: entity.Base{ID: "e2"}, WalletAddress: "wallet-2", DiscordUserID: "discord-2", AdmissionSeq: 2},
	}

	flags := Sweep(entries)
	require.Len(t, flags, 1)
	require.Equal(t, "e3", flags[0].EntryID)
	require.Equal(t, entity.ReasonDuplicateDiscordAccount, flags[0].Reason)
	require.Equal(t, "e1", flags[0].CanonicalEntryID)
}

func Test_Sweep_FlaggedEntriesNeverCanonical(t *testing.T) {
	entries := []entity.Entry{
		{Base: entity.Base{ID: "e1"}, WalletAddress: "wallet-1", DiscordUserID: "discord-1",
			AdmissionSeq: 1, IsIneligible: true, IneligibilityReason: entity.ReasonDuplicateDiscordAccount},
		{Base: entity.Base{ID: "e2"}, WalletAddress: "wallet-2", DiscordUserID: "discord-1", AdmissionSeq: 2},
	}

	// e1 is already flagged, so e2 becomes the canonical holder of discord-1.
	flags := Sweep(entries)
	require.Empty(t, flags)
}

func Test_Sweep_Idempotent(t *testing.T) {
	entries := []entity.Entry{
		{Base: entity.Base{ID: "e1"}, WalletAddress: "wallet-1", DiscordUserID: "discord-1", AdmissionSeq: 1},
		{Base: entity.Base{ID: "e2"}, WalletAddress: "wallet-2", DiscordUserID: "discord-1", AdmissionSeq: 2},
	}

	first := Sweep(entries)
	require.Len(t, first, 1)

	// Apply the flags and run again: nothing new.
	entries[1].IsIneligible = true
	entries[1].IneligibilityReason = first[0].Reason
	require.Empty(t, Sweep(entries))
}
