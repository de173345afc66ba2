package model

import "time"

type Winner struct {
	ID              string    `json:"id"`
	EventID         string    `json:"event_id"`
	EntryID         string    `json:"entry_id"`
	WalletAddress   string    `json:"wallet_address,omitempty"`
	SelectionMethod string    `json:"selection_method"`
	SelectedBy      string    `json:"selected_by"`
	SelectedAt      time.Time `json:"selected_at"`
}

type DrawWinnersRequest struct {
	EventID string `json:"event_id"`
}

type DrawWinnersResponse struct {
	Winners []Winner `json:"winners"`

	// AlreadyDrawn reports that the call was a no-op returning an earlier
	// draw result.
	AlreadyDrawn bool `json:"already_drawn"`
}

type PromoteToWinnerRequest struct {
	EventID string `json:"event_id"`
	EntryID string `json:"entry_id"`
}

type PromoteToWinnerResponse struct {
	Winner Winner `json:"winner"`
}

type GetWinnersRequest struct {
	EventID string `json:"event_id"`
}

type GetWinnersResponse struct {
	Winners        []Winner `json:"winners"`
	AvailableSpots int      `json:"available_spots"`
}
