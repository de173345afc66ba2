package entity

type CommunityRole string

const (
	RoleOwner  CommunityRole = "owner"
	RoleAdmin  CommunityRole = "admin"
	RoleMember CommunityRole = "member"
)

type Community struct {
	Base

	CreatedBy     string
	CreatedByUser User `gorm:"foreignKey:CreatedBy"`

	Handle      string `gorm:"unique"`
	DisplayName string
	GuildID     string
	Twitter     string
	WebsiteURL  string
}

// Member links a user to a community with a role. Organizer operations
// (draws, overrides, lifecycle changes) require the admin or owner role.
type Member struct {
	Base

	CommunityID string    `gorm:"index:idx_members_community_user,unique"`
	Community   Community `gorm:"foreignKey:CommunityID"`

	UserID string `gorm:"index:idx_members_community_user,unique"`
	User   User   `gorm:"foreignKey:UserID"`

	Role CommunityRole
}
