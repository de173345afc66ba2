package domain

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/droplabz/backend/internal/common"
	"github.com/droplabz/backend/internal/domain/eligibility"
	"github.com/droplabz/backend/internal/entity"
	"github.com/droplabz/backend/internal/model"
	"github.com/droplabz/backend/internal/repository"
	"github.com/droplabz/backend/pkg/errorx"
	"github.com/droplabz/backend/pkg/testutil"
	"github.com/droplabz/backend/pkg/xcontext"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func newTestEntryDomain(factProvider *testutil.MockFactProvider) (*entryDomain, repository.EventRepository) {
	eventRepo := repository.NewEventRepository()
	entryRepo := repository.NewEntryRepository()
	winnerRepo := repository.NewWinnerRepository()
	auditLogRepo := repository.NewAuditLogRepository()
	roleVerifier := common.NewCommunityRoleVerifier(
		repository.NewMemberRepository(), repository.NewUserRepository())

	domain := NewEntryDomain(
		eventRepo, entryRepo, winnerRepo, auditLogRepo,
		roleVerifier, factProvider, testutil.NewMockRedisClient(), common.NewEventLocker(),
	)

	return domain, eventRepo
}

func createTestEvent(ctx context.Context, t *testing.T, event *entity.Event) *entity.Event {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CommunityID == "" {
		event.CommunityID = testutil.Community1.ID
	}
	if event.Title == "" {
		event.Title = "test event"
	}
	if event.StartAt.IsZero() {
		event.StartAt = time.Now().Add(-time.Hour)
	}
	if event.EndAt.IsZero() {
		event.EndAt = time.Now().Add(time.Hour)
	}

	require.NoError(t, repository.NewEventRepository().Create(ctx, event))
	return event
}

func Test_entryDomain_Submit_FCFSFillsCapacityExactly(t *testing.T) {
	ctx := testutil.MockContext(t)
	testutil.CreateFixtureDb(ctx, t)

	domain, eventRepo := newTestEntryDomain(&testutil.MockFactProvider{})
	event := createTestEvent(ctx, t, &entity.Event{
		Status:        entity.EventActive,
		SelectionMode: entity.SelectionFCFS,
		MaxWinners:    3,
		ReservedSpots: 1,
	})

	var wonCount int64
	group := errgroup.Group{}
	for i := 0; i < 4; i++ {
		wallet := fmt.Sprintf("wallet-%d", i)
		group.Go(func() error {
			resp, err := domain.Submit(ctx, &model.SubmitEntryRequest{
				EventID:       event.ID,
				WalletAddress: wallet,
			})
			if err != nil {
				return err
			}

			if resp.Won {
				atomic.AddInt64(&wonCount, 1)
			}

			return nil
		})
	}

	require.NoError(t, group.Wait())
	require.Equal(t, int64(2), wonCount)

	count, err := repository.NewWinnerRepository().CountByEventID(ctx, event.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	stored, err := eventRepo.GetByID(ctx, event.ID)
	require.NoError(t, err)
	require.Equal(t, 2, stored.TotalWinners)
}

func Test_entryDomain_Submit_SameWalletTwice(t *testing.T) {
	ctx := testutil.MockContext(t)
	testutil.CreateFixtureDb(ctx, t)

	domain, _ := newTestEntryDomain(&testutil.MockFactProvider{})
	event := createTestEvent(ctx, t, &entity.Event{
		Status:        entity.EventActive,
		SelectionMode: entity.SelectionRandom,
		MaxWinners:    10,
	})

	_, err := domain.Submit(ctx, &model.SubmitEntryRequest{
		EventID:       event.ID,
		WalletAddress: "wallet-1",
	})
	require.NoError(t, err)

	_, err = domain.Submit(ctx, &model.SubmitEntryRequest{
		EventID:       event.ID,
		WalletAddress: "wallet-1",
	})
	require.Error(t, err)
	require.Equal(t, errorx.AlreadyEntered, err.(errorx.Error).Code)
}

func Test_entryDomain_Submit_EventNotAcceptingEntries(t *testing.T) {
	ctx := testutil.MockContext(t)
	testutil.CreateFixtureDb(ctx, t)

	domain, _ := newTestEntryDomain(&testutil.MockFactProvider{})

	draft := createTestEvent(ctx, t, &entity.Event{
		Status:        entity.EventDraft,
		SelectionMode: entity.SelectionRandom,
		MaxWinners:    10,
	})

	_, err := domain.Submit(ctx, &model.SubmitEntryRequest{
		EventID:       draft.ID,
		WalletAddress: "wallet-1",
	})
	require.Error(t, err)
	require.Equal(t, errorx.EventNotAcceptingEntries, err.(errorx.Error).Code)

	ended := createTestEvent(ctx, t, &entity.Event{
		Status:        entity.EventActive,
		SelectionMode: entity.SelectionRandom,
		MaxWinners:    10,
		StartAt:       time.Now().Add(-2 * time.Hour),
		EndAt:         time.Now().Add(-time.Hour),
	})

	_, err = domain.Submit(ctx, &model.SubmitEntryRequest{
		EventID:       ended.ID,
		WalletAddress: "wallet-1",
	})
	require.Error(t, err)
	require.Equal(t, errorx.EventNotAcceptingEntries, err.(errorx.Error).Code)
}

func Test_entryDomain_Submit_IneligibleEntryIsPersisted(t *testing.T) {
	ctx := testutil.MockContext(t)
	testutil.CreateFixtureDb(ctx, t)

	domain, _ := newTestEntryDomain(&testutil.MockFactProvider{})
	event := createTestEvent(ctx, t, &entity.Event{
		Status:        entity.EventActive,
		SelectionMode: entity.SelectionFCFS,
		MaxWinners:    10,
		Requirements: entity.Array[entity.Requirement]{
			{ID: "r1", Type: entity.RequirementDiscordMember, Config: entity.Map{}},
		},
	})

	resp, err := domain.Submit(ctx, &model.SubmitEntryRequest{
		EventID:       event.ID,
		WalletAddress: "wallet-1",
	})
	require.NoError(t, err)
	require.False(t, resp.Won)
	require.Equal(t, string(entity.EntryInvalid), resp.Entry.Status)
	require.Len(t, resp.Results, 1)
	require.False(t, resp.Results[0].Satisfied)

	stored, err := repository.NewEntryRepository().GetByEventWallet(ctx, event.ID, "wallet-1")
	require.NoError(t, err)
	require.Equal(t, entity.EntryInvalid, stored.Status)

	count, err := repository.NewWinnerRepository().CountByEventID(ctx, event.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), count)
}

func Test_entryDomain_Submit_DuplicateDiscordAccountIsFlagged(t *testing.T) {
	ctx := testutil.MockContext(t)
	testutil.CreateFixtureDb(ctx, t)

	domain, _ := newTestEntryDomain(&testutil.MockFactProvider{})
	event := createTestEvent(ctx, t, &entity.Event{
		Status:        entity.EventActive,
		SelectionMode: entity.SelectionFCFS,
		MaxWinners:    10,
	})

	first, err := domain.Submit(ctx, &model.SubmitEntryRequest{
		EventID:       event.ID,
		WalletAddress: "wallet-1",
		DiscordUserID: "discord-1",
	})
	require.NoError(t, err)
	require.True(t, first.Won)

	second, err := domain.Submit(ctx, &model.SubmitEntryRequest{
		EventID:       event.ID,
		WalletAddress: "wallet-2",
		DiscordUserID: "discord-1",
	})
	require.NoError(t, err)
	require.False(t, second.Won)
	require.True(t, second.Entry.IsIneligible)
	require.Equal(t, entity.ReasonDuplicateDiscordAccount, second.Entry.IneligibilityReason)
}

func Test_entryDomain_Submit_ConcurrentSharedDiscordAccount(t *testing.T) {
	ctx := testutil.MockContext(t)
	testutil.CreateFixtureDb(ctx, t)

	domain, _ := newTestEntryDomain(&testutil.MockFactProvider{})
	event := createTestEvent(ctx, t, &entity.Event{
		Status:        entity.EventActive,
		SelectionMode: entity.SelectionFCFS,
		MaxWinners:    10,
	})

	// Two wallets behind one Discord account race each other. Whichever is
	// admitted first stays clean; the other must come out flagged and must
	// not take a winner slot.
	group := errgroup.Group{}
	for _, wallet := range []string{"wallet-1", "wallet-2"} {
		wallet := wallet
		group.Go(func() error {
			_, err := domain.Submit(ctx, &model.SubmitEntryRequest{
				EventID:       event.ID,
				WalletAddress: wallet,
				DiscordUserID: "discord-shared",
			})
			return err
		})
	}
	require.NoError(t, group.Wait())

	entries, err := repository.NewEntryRepository().GetByEventID(ctx, event.ID, repository.EntryFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	flagged := 0
	for _, entry := range entries {
		if entry.IsIneligible {
			flagged++
			require.Equal(t, entity.ReasonDuplicateDiscordAccount, entry.IneligibilityReason)
		}
	}
	require.Equal(t, 1, flagged)

	count, err := repository.NewWinnerRepository().CountByEventID(ctx, event.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func Test_entryDomain_GetEligibilitySnapshot_UsesCache(t *testing.T) {
	ctx := testutil.MockContext(t)
	testutil.CreateFixtureDb(ctx, t)

	var calls int64
	provider := &testutil.MockFactProvider{
		GetCandidateFactsFunc: func(ctx context.Context, walletAddress, discordUserID string) (*eligibility.CandidateFacts, error) {
			atomic.AddInt64(&calls, 1)
			return &eligibility.CandidateFacts{WalletConnected: true}, nil
		},
	}

	domain, _ := newTestEntryDomain(provider)
	event := createTestEvent(ctx, t, &entity.Event{
		Status:        entity.EventActive,
		SelectionMode: entity.SelectionRandom,
		MaxWinners:    10,
		Requirements: entity.Array[entity.Requirement]{
			{ID: "r1", Type: entity.RequirementWalletConnected, Config: entity.Map{}},
		},
	})

	req := &model.GetEligibilitySnapshotRequest{EventID: event.ID, WalletAddress: "wallet-1"}

	first, err := domain.GetEligibilitySnapshot(ctx, req)
	require.NoError(t, err)
	require.True(t, first.Eligible)

	second, err := domain.GetEligibilitySnapshot(ctx, req)
	require.NoError(t, err)
	require.True(t, second.Eligible)
	require.Equal(t, int64(1), atomic.LoadInt64(&calls))
}

func Test_entryDomain_GetEligibilitySnapshot_CacheKeyedByDiscordUser(t *testing.T) {
	ctx := testutil.MockContext(t)
	testutil.CreateFixtureDb(ctx, t)

	var calls int64
	provider := &testutil.MockFactProvider{
		GetCandidateFactsFunc: func(ctx context.Context, walletAddress, discordUserID string) (*eligibility.CandidateFacts, error) {
			atomic.AddInt64(&calls, 1)
			return &eligibility.CandidateFacts{DiscordLinked: discordUserID != ""}, nil
		},
	}

	domain, _ := newTestEntryDomain(provider)
	event := createTestEvent(ctx, t, &entity.Event{
		Status:        entity.EventActive,
		SelectionMode: entity.SelectionRandom,
		MaxWinners:    10,
		Requirements: entity.Array[entity.Requirement]{
			{ID: "r1", Type: entity.RequirementDiscordMember, Config: entity.Map{}},
		},
	})

	withoutDiscord := &model.GetEligibilitySnapshotRequest{
		EventID:       event.ID,
		WalletAddress: "wallet-1",
	}
	withDiscord := &model.GetEligibilitySnapshotRequest{
		EventID:       event.ID,
		WalletAddress: "wallet-1",
		DiscordUserID: "discord-1",
	}

	unlinked, err := domain.GetEligibilitySnapshot(ctx, withoutDiscord)
	require.NoError(t, err)
	require.False(t, unlinked.Eligible)

	// A different Discord identity must not be served the unlinked snapshot.
	linked, err := domain.GetEligibilitySnapshot(ctx, withDiscord)
	require.NoError(t, err)
	require.True(t, linked.Eligible)
	require.Equal(t, int64(2), atomic.LoadInt64(&calls))

	// Both identities hit their own cache entries on repeat.
	unlinked, err = domain.GetEligibilitySnapshot(ctx, withoutDiscord)
	require.NoError(t, err)
	require.False(t, unlinked.Eligible)

	linked, err = domain.GetEligibilitySnapshot(ctx, withDiscord)
	require.NoError(t, err)
	require.True(t, linked.Eligible)
	require.Equal(t, int64(2), atomic.LoadInt64(&calls))
}

func Test_entryDomain_MarkIneligible(t *testing.T) {
	ctx := testutil.MockContextWithUserID(t, testutil.User1.ID)
	testutil.CreateFixtureDb(ctx, t)

	domain, _ := newTestEntryDomain(&testutil.MockFactProvider{})
	event := createTestEvent(ctx, t, &entity.Event{
		Status:        entity.EventActive,
		SelectionMode: entity.SelectionRandom,
		MaxWinners:    10,
	})

	resp, err := domain.Submit(ctx, &model.SubmitEntryRequest{
		EventID:       event.ID,
		WalletAddress: "wallet-1",
	})
	require.NoError(t, err)

	_, err = domain.MarkIneligible(ctx, &model.MarkIneligibleRequest{
		EventID:  event.ID,
		EntryIDs: []string{resp.Entry.ID},
		Reason:   "suspected bot",
	})
	require.NoError(t, err)

	stored, err := repository.NewEntryRepository().GetByID(ctx, resp.Entry.ID)
	require.NoError(t, err)
	require.True(t, stored.IsIneligible)
	require.Equal(t, "suspected bot", stored.IneligibilityReason)

	logs, err := repository.NewAuditLogRepository().GetByCommunityID(ctx, event.CommunityID, 0, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, entity.AuditEntriesMarkedIneligible, logs[0].Action)
}

func Test_entryDomain_MarkIneligible_PermissionDenied(t *testing.T) {
	ctx := testutil.MockContextWithUserID(t, testutil.User2.ID)
	testutil.CreateFixtureDb(ctx, t)

	domain, _ := newTestEntryDomain(&testutil.MockFactProvider{})
	event := createTestEvent(ctx, t, &entity.Event{
		Status:        entity.EventActive,
		SelectionMode: entity.SelectionRandom,
		MaxWinners:    10,
	})

	_, err := domain.MarkIneligible(ctx, &model.MarkIneligibleRequest{
		EventID:  event.ID,
		EntryIDs: []string{"whatever"},
		Reason:   "nope",
	})
	require.Error(t, err)
	require.Equal(t, errorx.PermissionDenied, err.(errorx.Error).Code)
}

func Test_entryDomain_SweepDuplicates(t *testing.T) {
	ctx := testutil.MockContextWithUserID(t, testutil.User1.ID)
	testutil.CreateFixtureDb(ctx, t)

	domain, _ := newTestEntryDomain(&testutil.MockFactProvider{})
	event := createTestEvent(ctx, t, &entity.Event{
		Status:        entity.EventActive,
		SelectionMode: entity.SelectionRandom,
		MaxWinners:    10,
	})

	// Two entries sharing a Discord account, written directly so the
	// admission-time detector cannot flag them.
	entryRepo := repository.NewEntryRepository()
	earlier := &entity.Entry{
		Base:          entity.Base{ID: "entry-a"},
		EventID:       event.ID,
		WalletAddress: "wallet-a",
		DiscordUserID: "discord-x",
		Status:        entity.EntryValid,
		AdmissionSeq:  xcontext.SnowFlake(ctx).Generate().Int64(),
	}
	require.NoError(t, entryRepo.Create(ctx, earlier))

	later := &entity.Entry{
		Base:          entity.Base{ID: "entry-b"},
		EventID:       event.ID,
		WalletAddress: "wallet-b",
		DiscordUserID: "discord-x",
		Status:        entity.EntryValid,
		AdmissionSeq:  xcontext.SnowFlake(ctx).Generate().Int64(),
	}
	require.NoError(t, entryRepo.Create(ctx, later))

	resp, err := domain.SweepDuplicates(ctx, &model.SweepDuplicatesRequest{EventID: event.ID})
	require.NoError(t, err)
	require.Len(t, resp.FlaggedEntries, 1)
	require.Equal(t, later.ID, resp.FlaggedEntries[0].ID)

	// Running the sweep again flags nothing new.
	resp, err = domain.SweepDuplicates(ctx, &model.SweepDuplicatesRequest{EventID: event.ID})
	require.NoError(t, err)
	require.Empty(t, resp.FlaggedEntries)
}
