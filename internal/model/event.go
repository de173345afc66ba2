package model

import "time"

type Requirement struct {
	ID     string         `json:"id"`
	Type   string         `json:"type"`
	Config map[string]any `json:"config"`
}

type Event struct {
	ID             string        `json:"id"`
	CommunityID    string        `json:"community_id"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	Status         string        `json:"status"`
	SelectionMode  string        `json:"selection_mode"`
	MaxWinners     int           `json:"max_winners"`
	ReservedSpots  int           `json:"reserved_spots"`
	TotalWinners   int           `json:"total_winners"`
	AvailableSpots int           `json:"available_spots"`
	StartAt        time.Time     `json:"start_at"`
	EndAt          time.Time     `json:"end_at"`
	AutoDraw       bool          `json:"auto_draw"`
	Requirements   []Requirement `json:"requirements"`
}

type CreateEventRequest struct {
	CommunityHandle string        `json:"community_handle"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	SelectionMode   string        `json:"selection_mode"`
	MaxWinners      int           `json:"max_winners"`
	ReservedSpots   int           `json:"reserved_spots"`
	StartAt         time.Time     `json:"start_at"`
	EndAt           time.Time     `json:"end_at"`
	AutoDraw        bool          `json:"auto_draw"`
	Requirements    []Requirement `json:"requirements"`
}

type CreateEventResponse struct {
	ID string `json:"id"`
}

type GetEventRequest struct {
	EventID string `json:"event_id"`
}

type GetEventResponse struct {
	Event Event `json:"event"`
}

type GetEventsRequest struct {
	CommunityHandle string `json:"community_handle"`
}

type GetEventsResponse struct {
	Events []Event `json:"events"`
}

type UpdateEventRequest struct {
	EventID       string        `json:"event_id"`
	Title         *string       `json:"title"`
	Description   *string       `json:"description"`
	MaxWinners    *int          `json:"max_winners"`
	ReservedSpots *int          `json:"reserved_spots"`
	StartAt       *time.Time    `json:"start_at"`
	EndAt         *time.Time    `json:"end_at"`
	AutoDraw      *bool         `json:"auto_draw"`
	Requirements  []Requirement `json:"requirements"`
}

type UpdateEventResponse struct{}

type TransitionEventRequest struct {
	EventID string `json:"event_id"`
	Status  string `json:"status"`
}

type TransitionEventResponse struct {
	Status string `json:"status"`
}
