package entity

type GlobalRole string

const (
	RoleSuperAdmin GlobalRole = "super_admin"
	RoleUser       GlobalRole = "user"
)

type User struct {
	Base

	Name          string `gorm:"unique"`
	WalletAddress string
	DiscordUserID string
	Role          GlobalRole `gorm:"default:user"`
}
