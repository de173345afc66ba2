package testutil

import (
	"context"
	"testing"

	"github.com/droplabz/backend/internal/entity"
	"github.com/droplabz/backend/pkg/xcontext"
)

var (
	User1 = entity.User{
		Base:          entity.Base{ID: "user1"},
		Name:          "user1",
		WalletAddress: "wallet-user1",
		DiscordUserID: "discord-user1",
		Role:          entity.RoleUser,
	}

	User2 = entity.User{
		Base:          entity.Base{ID: "user2"},
		Name:          "user2",
		WalletAddress: "wallet-user2",
		DiscordUserID: "discord-user2",
		Role:          entity.RoleUser,
	}

	SuperAdmin = entity.User{
		Base: entity.Base{ID: "super-admin"},
		Name: "super-admin",
		Role: entity.RoleSuperAdmin,
	}

	Community1 = entity.Community{
		Base:        entity.Base{ID: "community1"},
		CreatedBy:   User1.ID,
		Handle:      "community1",
		DisplayName: "Community One",
		GuildID:     "guild1",
	}

	Member1 = entity.Member{
		Base:        entity.Base{ID: "member1"},
		CommunityID: Community1.ID,
		UserID:      User1.ID,
		Role:        entity.RoleOwner,
	}

	Member2 = entity.Member{
		Base:        entity.Base{ID: "member2"},
		CommunityID: Community1.ID,
		UserID:      User2.ID,
		Role:        entity.RoleMember,
	}
)

func CreateFixtureDb(ctx context.Context, t *testing.T) {
	db := xcontext.DB(ctx)

	for _, record := range []any{
		&User1, &User2, &SuperAdmin,
		&Community1,
		&Member1, &Member2,
	} {
		if err := db.Create(record).Error; err != nil {
			t.Fatalf("cannot create fixture record: %v", err)
		}
	}
}
