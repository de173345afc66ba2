package model

import (
	"github.com/droplabz/backend/internal/domain/eligibility"
	"github.com/droplabz/backend/internal/entity"
)

func ConvertEvent(event *entity.Event) Event {
	requirements := make([]Requirement, 0, len(event.Requirements))
	for _, r := range event.Requirements {
		requirements = append(requirements, Requirement{
			ID:     r.ID,
			Type:   string(r.Type),
			Config: r.Config,
		})
	}

	return Event{
		ID:             event.ID,
		CommunityID:    event.CommunityID,
		Title:          event.Title,
		Description:    string(event.Description),
		Status:         string(event.Status),
		SelectionMode:  string(event.SelectionMode),
		MaxWinners:     event.MaxWinners,
		ReservedSpots:  event.ReservedSpots,
		TotalWinners:   event.TotalWinners,
		AvailableSpots: event.MaxWinners - event.ReservedSpots - event.TotalWinners,
		StartAt:        event.StartAt,
		EndAt:          event.EndAt,
		AutoDraw:       event.AutoDraw,
		Requirements:   requirements,
	}
}

func ConvertEntry(entry *entity.Entry) Entry {
	return Entry{
		ID:                  entry.ID,
		EventID:             entry.EventID,
		WalletAddress:       entry.WalletAddress,
		DiscordUserID:       entry.DiscordUserID,
		Status:              string(entry.Status),
		IsIneligible:        entry.IsIneligible,
		IneligibilityReason: entry.IneligibilityReason,
		CreatedAt:           entry.CreatedAt,
	}
}

func ConvertWinner(winner *entity.Winner, walletAddress string) Winner {
	return Winner{
		ID:              winner.ID,
		EventID:         winner.EventID,
		EntryID:         winner.EntryID,
		WalletAddress:   walletAddress,
		SelectionMethod: string(winner.SelectionMethod),
		SelectedBy:      winner.SelectedBy,
		SelectedAt:      winner.CreatedAt,
	}
}

func ConvertRequirementResults(results []eligibility.RequirementResult) []RequirementResult {
	converted := make([]RequirementResult, 0, len(results))
	for _, r := range results {
		converted = append(converted, RequirementResult{
			RequirementID: r.RequirementID,
			Type:          string(r.Type),
			Satisfied:     r.Satisfied,
			Message:       r.Message,
		})
	}

	return converted
}
