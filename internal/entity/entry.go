package entity

import "github.com/droplabz/backend/pkg/enum"

type EntryStatus string

var (
	EntryPending = enum.New(EntryStatus("pending"))
	EntryValid   = enum.New(EntryStatus("valid"))
	EntryInvalid = enum.New(EntryStatus("invalid"))
)

const (
	ReasonDuplicateDiscordAccount = "duplicate-discord-account"
	ReasonDuplicateWallet         = "duplicate-wallet"
)

type Entry struct {
	Base

	EventID string `gorm:"index:idx_entries_event_wallet,unique"`
	Event   Event  `gorm:"foreignKey:EventID"`

	WalletAddress string `gorm:"index:idx_entries_event_wallet,unique"`
	DiscordUserID string `gorm:"index"`

	UserID string

	Status EntryStatus

	// IsIneligible flags a duplicate/sybil entry. Orthogonal to Status: a
	// flagged entry can still be valid so organizers can audit it.
	IsIneligible        bool
	IneligibilityReason string

	// AdmissionSeq is assigned inside the admission transaction and is the
	// authoritative first-come-first-served tie-break.
	AdmissionSeq int64 `gorm:"uniqueIndex"`
}
