package entity

const (
	AuditEventCreated            = "event_created"
	AuditEventUpdated            = "event_updated"
	AuditEventTransitioned       = "event_transitioned"
	AuditEntriesMarkedIneligible = "entries_marked_ineligible"
	AuditDuplicateSweep          = "duplicate_sweep"
	AuditWinnersDrawn            = "winners_drawn"
	AuditWinnerPromoted          = "winner_promoted"
)

type AuditLog struct {
	Base

	CommunityID string
	Community   Community `gorm:"foreignKey:CommunityID"`

	ActorID string
	Action  string
	Meta    Map
}
