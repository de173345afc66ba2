package domain

import (
	"testing"
	"time"

	"github.com/droplabz/backend/internal/common"
	"github.com/droplabz/backend/internal/entity"
	"github.com/droplabz/backend/internal/model"
	"github.com/droplabz/backend/internal/repository"
	"github.com/droplabz/backend/pkg/errorx"
	"github.com/droplabz/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func newTestEventDomain() *eventDomain {
	roleVerifier := common.NewCommunityRoleVerifier(
		repository.NewMemberRepository(), repository.NewUserRepository())

	return NewEventDomain(
		repository.NewEventRepository(),
		repository.NewCommunityRepository(),
		repository.NewAuditLogRepository(),
		roleVerifier,
	)
}

func Test_eventDomain_Create(t *testing.T) {
	ctx := testutil.MockContextWithUserID(t, testutil.User1.ID)
	testutil.CreateFixtureDb(ctx, t)

	domain := newTestEventDomain()
	resp, err := domain.Create(ctx, &model.CreateEventRequest{
		CommunityHandle: testutil.Community1.Handle,
		Title:           "launch giveaway",
		SelectionMode:   "random",
		MaxWinners:      10,
		ReservedSpots:   2,
		StartAt:         time.Now(),
		EndAt:           time.Now().Add(24 * time.Hour),
		Requirements: []model.Requirement{
			{Type: "discord_member", Config: map[string]any{}},
			{Type: "token_holding", Config: map[string]any{"mint": "So111", "min_amount": 1.5}},
		},
	})
	require.NoError(t, err)

	stored, err := repository.NewEventRepository().GetByID(ctx, resp.ID)
	require.NoError(t, err)
	require.Equal(t, entity.EventDraft, stored.Status)
	require.Equal(t, entity.SelectionRandom, stored.SelectionMode)
	require.Len(t, stored.Requirements, 2)
}

func Test_eventDomain_Create_InvalidRequests(t *testing.T) {
	ctx := testutil.MockContextWithUserID(t, testutil.User1.ID)
	testutil.CreateFixtureDb(ctx, t)

	domain := newTestEventDomain()
	base := model.CreateEventRequest{
		CommunityHandle: testutil.Community1.Handle,
		Title:           "launch giveaway",
		SelectionMode:   "random",
		MaxWinners:      10,
		StartAt:         time.Now(),
		EndAt:           time.Now().Add(time.Hour),
	}

	noTitle := base
	noTitle.Title = ""
	_, err := domain.Create(ctx, &noTitle)
	require.Error(t, err)

	badMode := base
	badMode.SelectionMode = "raffle"
	_, err = domain.Create(ctx, &badMode)
	require.Error(t, err)

	tooReserved := base
	tooReserved.ReservedSpots = 11
	_, err = domain.Create(ctx, &tooReserved)
	require.Error(t, err)

	backwards := base
	backwards.EndAt = backwards.StartAt.Add(-time.Hour)
	_, err = domain.Create(ctx, &backwards)
	require.Error(t, err)

	brokenRequirement := base
	brokenRequirement.Requirements = []model.Requirement{
		{Type: "token_holding", Config: map[string]any{"min_amount": 2}},
	}
	_, err = domain.Create(ctx, &brokenRequirement)
	require.Error(t, err)
}

func Test_eventDomain_Transition_Lifecycle(t *testing.T) {
	ctx := testutil.MockContextWithUserID(t, testutil.User1.ID)
	testutil.CreateFixtureDb(ctx, t)

	domain := newTestEventDomain()
	event := createTestEvent(ctx, t, &entity.Event{
		Status:        entity.EventDraft,
		SelectionMode: entity.SelectionRandom,
		MaxWinners:    3,
	})

	// Draft cannot be closed directly.
	_, err := domain.Transition(ctx, &model.TransitionEventRequest{
		EventID: event.ID, Status: "closed",
	})
	require.Error(t, err)

	resp, err := domain.Transition(ctx, &model.TransitionEventRequest{
		EventID: event.ID, Status: "active",
	})
	require.NoError(t, err)
	require.Equal(t, "active", resp.Status)

	resp, err = domain.Transition(ctx, &model.TransitionEventRequest{
		EventID: event.ID, Status: "closed",
	})
	require.NoError(t, err)
	require.Equal(t, "closed", resp.Status)

	// Closed is terminal.
	_, err = domain.Transition(ctx, &model.TransitionEventRequest{
		EventID: event.ID, Status: "active",
	})
	require.Error(t, err)
	require.Equal(t, errorx.EventClosedImmutable, err.(errorx.Error).Code)
}

func Test_eventDomain_Update_ShrinkGuard(t *testing.T) {
	ctx := testutil.MockContextWithUserID(t, testutil.User1.ID)
	testutil.CreateFixtureDb(ctx, t)

	domain := newTestEventDomain()
	event := createTestEvent(ctx, t, &entity.Event{
		Status:        entity.EventActive,
		SelectionMode: entity.SelectionFCFS,
		MaxWinners:    5,
		TotalWinners:  3,
	})

	two := 2
	_, err := domain.Update(ctx, &model.UpdateEventRequest{
		EventID:    event.ID,
		MaxWinners: &two,
	})
	require.Error(t, err)
	require.Equal(t, errorx.BadRequest, err.(errorx.Error).Code)

	// Growing capacity is always allowed.
	ten := 10
	_, err = domain.Update(ctx, &model.UpdateEventRequest{
		EventID:    event.ID,
		MaxWinners: &ten,
	})
	require.NoError(t, err)

	stored, err := repository.NewEventRepository().GetByID(ctx, event.ID)
	require.NoError(t, err)
	require.Equal(t, 10, stored.MaxWinners)
}

func Test_eventDomain_Update_ClosedEventImmutable(t *testing.T) {
	ctx := testutil.MockContextWithUserID(t, testutil.User1.ID)
	testutil.CreateFixtureDb(ctx, t)

	domain := newTestEventDomain()
	event := createTestEvent(ctx, t, &entity.Event{
		Status:        entity.EventClosed,
		SelectionMode: entity.SelectionRandom,
		MaxWinners:    3,
	})

	title := "new title"
	_, err := domain.Update(ctx, &model.UpdateEventRequest{
		EventID: event.ID,
		Title:   &title,
	})
	require.Error(t, err)
	require.Equal(t, errorx.EventClosedImmutable, err.(errorx.Error).Code)
}

func Test_eventDomain_Update_RequirementsOnlyInDraft(t *testing.T) {
	ctx := testutil.MockContextWithUserID(t, testutil.User1.ID)
	testutil.CreateFixtureDb(ctx, t)

	domain := newTestEventDomain()
	event := createTestEvent(ctx, t, &entity.Event{
		Status:        entity.EventActive,
		SelectionMode: entity.SelectionRandom,
		MaxWinners:    3,
	})

	_, err := domain.Update(ctx, &model.UpdateEventRequest{
		EventID: event.ID,
		Requirements: []model.Requirement{
			{Type: "discord_member", Config: map[string]any{}},
		},
	})
	require.Error(t, err)
	require.Equal(t, errorx.BadRequest, err.(errorx.Error).Code)
}

func Test_eventDomain_GetList(t *testing.T) {
	ctx := testutil.MockContextWithUserID(t, testutil.User1.ID)
	testutil.CreateFixtureDb(ctx, t)

	domain := newTestEventDomain()
	createTestEvent(ctx, t, &entity.Event{
		Status:        entity.EventDraft,
		SelectionMode: entity.SelectionRandom,
		MaxWinners:    3,
	})
	createTestEvent(ctx, t, &entity.Event{
		Status:        entity.EventActive,
		SelectionMode: entity.SelectionFCFS,
		MaxWinners:    5,
	})

	resp, err := domain.GetList(ctx, &model.GetEventsRequest{
		CommunityHandle: testutil.Community1.Handle,
	})
	require.NoError(t, err)
	require.Len(t, resp.Events, 2)
}
