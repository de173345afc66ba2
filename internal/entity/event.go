package entity

import (
	"time"

	"github.com/droplabz/backend/pkg/enum"
)

type EventStatus string

var (
	EventDraft  = enum.New(EventStatus("draft"))
	EventActive = enum.New(EventStatus("active"))
	EventClosed = enum.New(EventStatus("closed"))
)

type SelectionMode string

var (
	SelectionRandom = enum.New(SelectionMode("random"))
	SelectionFCFS   = enum.New(SelectionMode("fcfs"))
	SelectionManual = enum.New(SelectionMode("manual"))
)

type RequirementType string

var (
	RequirementWalletConnected      = enum.New(RequirementType("wallet_connected"))
	RequirementDiscordMember        = enum.New(RequirementType("discord_member"))
	RequirementDiscordRole          = enum.New(RequirementType("discord_role"))
	RequirementDiscordAccountAge    = enum.New(RequirementType("discord_account_age"))
	RequirementDiscordServerJoinAge = enum.New(RequirementType("discord_server_join_age"))
	RequirementTokenHolding         = enum.New(RequirementType("token_holding"))
	RequirementNFTHolding           = enum.New(RequirementType("nft_holding"))
)

// Requirement is one eligibility rule of an event. Config holds the payload
// specific to Type (role_ids, min_days, mint, min_amount, collection_mint).
type Requirement struct {
	ID     string          `json:"id"`
	Type   RequirementType `json:"type"`
	Config Map             `json:"config"`
}

type Event struct {
	Base

	CommunityID string
	Community   Community `gorm:"foreignKey:CommunityID"`

	Title         string
	Description   []byte `gorm:"type:longtext"`
	Status        EventStatus
	SelectionMode SelectionMode

	MaxWinners    int
	ReservedSpots int

	// TotalWinners is the capacity counter guarded by conditional updates.
	// It must always satisfy TotalWinners <= MaxWinners - ReservedSpots.
	TotalWinners int

	StartAt  time.Time
	EndAt    time.Time
	AutoDraw bool

	Requirements Array[Requirement]
}
