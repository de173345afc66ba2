package entity

const (
	SelectedBySystemFCFS = "system_fcfs"
	SelectedBySystemDraw = "system_draw"
)

type Winner struct {
	Base

	EventID string `gorm:"index:idx_winners_event_entry,unique"`
	Event   Event  `gorm:"foreignKey:EventID"`

	EntryID string `gorm:"index:idx_winners_event_entry,unique"`
	Entry   Entry  `gorm:"foreignKey:EntryID"`

	SelectionMethod SelectionMode

	// SelectedBy is system_fcfs, system_draw, or the promoting admin user id.
	SelectedBy string
}
