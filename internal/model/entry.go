package model

import "time"

type RequirementResult struct {
	RequirementID string `json:"requirement_id"`
	Type          string `json:"type"`
	Satisfied     bool   `json:"satisfied"`
	Message       string `json:"message"`
}

type Entry struct {
	ID                  string    `json:"id"`
	EventID             string    `json:"event_id"`
	WalletAddress       string    `json:"wallet_address"`
	DiscordUserID       string    `json:"discord_user_id,omitempty"`
	Status              string    `json:"status"`
	IsIneligible        bool      `json:"is_ineligible"`
	IneligibilityReason string    `json:"ineligibility_reason,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

type SubmitEntryRequest struct {
	EventID       string `json:"event_id"`
	WalletAddress string `json:"wallet_address"`
	DiscordUserID string `json:"discord_user_id"`
}

type SubmitEntryResponse struct {
	Entry   Entry               `json:"entry"`
	Results []RequirementResult `json:"results"`
	Won     bool                `json:"won"`
}

type GetEligibilitySnapshotRequest struct {
	EventID       string `json:"event_id"`
	WalletAddress string `json:"wallet_address"`
	DiscordUserID string `json:"discord_user_id"`
}

type GetEligibilitySnapshotResponse struct {
	Results  []RequirementResult `json:"results"`
	Eligible bool                `json:"eligible"`
}

type GetEntriesRequest struct {
	EventID string `json:"event_id"`
	Status  string `json:"status"`
}

type GetEntriesResponse struct {
	Entries []Entry `json:"entries"`
}

type MarkIneligibleRequest struct {
	EventID  string   `json:"event_id"`
	EntryIDs []string `json:"entry_ids"`
	Reason   string   `json:"reason"`
}

type MarkIneligibleResponse struct {
	MarkedCount int `json:"marked_count"`
}

type SweepDuplicatesRequest struct {
	EventID string `json:"event_id"`
}

type SweepDuplicatesResponse struct {
	FlaggedEntries []Entry `json:"flagged_entries"`
}
