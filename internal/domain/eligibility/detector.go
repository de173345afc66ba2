package eligibility

import (
	"github.com/droplabz/backend/internal/entity"
	"golang.org/x/exp/slices"
)

// DuplicateVerdict is the detector's decision about one candidate.
type DuplicateVerdict struct {
	IsDuplicate bool
	Reason      string

	// CanonicalEntryID is the earliest entry this candidate duplicates.
	CanonicalEntryID string
}

// CheckDuplicate decides whether a candidate duplicates an existing entry of
// the same event. The wallet signal is primary: a non-flagged entry with the
// same wallet makes the candidate an idempotent resubmission. The Discord
// signal is secondary: the same Discord account behind a different wallet
// flags the later entry but still allows persisting it for audit.
func CheckDuplicate(walletAddress, discordUserID string, existing []entity.Entry) DuplicateVerdict {
	for _, entry := range existing {
		if entry.WalletAddress == walletAddress && !entry.IsIneligible {
			return DuplicateVerdict{
				IsDuplicate:      true,
				Reason:           entity.ReasonDuplicateWallet,
				CanonicalEntryID: entry.ID,
			}
		}
	}

	if discordUserID != "" {
		for _, entry := range existing {
			if entry.DiscordUserID == discordUserID && entry.WalletAddress != walletAddress {
				return DuplicateVerdict{
					IsDuplicate:      true,
					Reason:           entity.ReasonDuplicateDiscordAccount,
					CanonicalEntryID: entry.ID,
				}
			}
		}
	}

	return DuplicateVerdict{}
}

// SweepFlag marks one entry found duplicate during a batch sweep.
type SweepFlag struct {
	EntryID          string
	Reason           string
	CanonicalEntryID string
}

// Sweep re-runs duplicate detection over a full entry set. Entries are walked
// in admission order and the earliest occurrence of each wallet and each
// Discord account stays canonical; every later conflict is flagged. Already
// flagged entries keep their flag and never become canonical.
func Sweep(entries []entity.Entry) []SweepFlag {
	sorted := make([]entity.Entry, len(entries))
	copy(sorted, entries)
	slices.SortStableFunc(sorted, func(a, b entity.Entry) bool {
		return a.AdmissionSeq < b.AdmissionSeq
	})

	flags := []SweepFlag{}
	walletCanonical := map[string]string{}
	discordCanonical := map[string]string{}

	for _, entry := range sorted {
		if entry.IsIneligible {
			continue
		}

		if canonicalID, ok := walletCanonical[entry.WalletAddress]; ok {
			flags = append(flags, SweepFlag{
				EntryID:          entry.ID,
				Reason:           entity.ReasonDuplicateWallet,
				CanonicalEntryID: canonicalID,
			})
			continue
		}

		if entry.DiscordUserID != "" {
			if canonicalID, ok := discordCanonical[entry.DiscordUserID]; ok {
				flags = append(flags, SweepFlag{
					EntryID:          entry.ID,
					Reason:           entity.ReasonDuplicateDiscordAccount,
					CanonicalEntryID: canonicalID,
				})
				continue
			}

			discordCanonical[entry.DiscordUserID] = entry.ID
		}

		walletCanonical[entry.WalletAddress] = entry.ID
	}

	return flags
}
