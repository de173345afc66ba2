package cron

import (
	"context"
	"errors"
	"time"

	"github.com/droplabz/backend/internal/common"
	"github.com/droplabz/backend/internal/entity"
	"github.com/droplabz/backend/internal/repository"
	"github.com/droplabz/backend/pkg/crypto"
	"github.com/droplabz/backend/pkg/xcontext"
	"github.com/google/uuid"
	mathUtil "github.com/pkg/math"
	"gorm.io/gorm"
)

const systemActorID = "system"

// EndedEventCronJob closes active events whose end time has passed. Random
// events with auto draw enabled get their winners drawn before closing.
type EndedEventCronJob struct {
	eventRepo    repository.EventRepository
	entryRepo    repository.EntryRepository
	winnerRepo   repository.WinnerRepository
	auditLogRepo repository.AuditLogRepository
	eventLocker  *common.EventLocker
	randIntn     crypto.Rand
}

func NewEndedEventCronJob(
	eventRepo repository.EventRepository,
	entryRepo repository.EntryRepository,
	winnerRepo repository.WinnerRepository,
	auditLogRepo repository.AuditLogRepository,
	eventLocker *common.EventLocker,
	randIntn crypto.Rand,
) *EndedEventCronJob {
	if randIntn == nil {
		randIntn = crypto.RandIntn
	}

	return &EndedEventCronJob{
		eventRepo:    eventRepo,
		entryRepo:    entryRepo,
		winnerRepo:   winnerRepo,
		auditLogRepo: auditLogRepo,
		eventLocker:  eventLocker,
		randIntn:     randIntn,
	}
}

func (job *EndedEventCronJob) Name() string {
	return "ended-event"
}

func (job *EndedEventCronJob) Interval(ctx context.Context) time.Duration {
	return xcontext.Configs(ctx).Cron.EndedEventInterval
}

func (job *EndedEventCronJob) Do(ctx context.Context) {
	events, err := job.eventRepo.GetActiveEndedEvents(ctx, time.Now())
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get ended events: %v", err)
		return
	}

	for i := range events {
		job.finalize(ctx, &events[i])
	}
}

func (job *EndedEventCronJob) finalize(ctx context.Context, event *entity.Event) {
	mutex := job.eventLocker.Lock(event.ID)
	defer mutex.Unlock()

	if event.AutoDraw && event.SelectionMode == entity.SelectionRandom {
		if err := job.draw(ctx, event); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot auto draw event %s: %v", event.ID, err)
			return
		}
	}

	txCtx := xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(txCtx)

	err := job.eventRepo.UpdateStatus(txCtx, event.ID, entity.EventActive, entity.EventClosed)
	if err != nil {
		// Someone closed it first; nothing left to do.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return
		}

		xcontext.Logger(ctx).Errorf("Cannot close event %s: %v", event.ID, err)
		return
	}

	err = job.auditLogRepo.Create(txCtx, &entity.AuditLog{
		Base:        entity.Base{ID: uuid.NewString()},
		CommunityID: event.CommunityID,
		ActorID:     systemActorID,
		Action:      entity.AuditEventTransitioned,
		Meta: entity.Map{
			"event_id": event.ID,
			"from":     string(entity.EventActive),
			"to":       string(entity.EventClosed),
		},
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create audit log: %v", err)
		return
	}

	xcontext.WithCommitDBTransaction(txCtx)
	xcontext.Logger(ctx).Infof("Closed ended event %s", event.ID)
}

func (job *EndedEventCronJob) draw(ctx context.Context, event *entity.Event) error {
	count, err := job.winnerRepo.CountByEventID(ctx, event.ID)
	if err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	remaining := event.MaxWinners - event.ReservedSpots - event.TotalWinners
	if remaining <= 0 {
		return nil
	}

	pool, err := job.entryRepo.GetEligibleForDraw(ctx, event.ID)
	if err != nil {
		return err
	}

	n := mathUtil.MinInt(remaining, len(pool))
	if n == 0 {
		return nil
	}

	crypto.Shuffle(pool, job.randIntn)

	winners := make([]entity.Winner, 0, n)
	for _, entry := range pool[:n] {
		winners = append(winners, entity.Winner{
			Base:            entity.Base{ID: uuid.NewString()},
			EventID:         event.ID,
			EntryID:         entry.ID,
			SelectionMethod: entity.SelectionRandom,
			SelectedBy:      entity.SelectedBySystemDraw,
		})
	}

	txCtx := xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(txCtx)

	if err := job.eventRepo.CheckAndIncreaseWinners(txCtx, event.ID, n); err != nil {
		return err
	}

	if err := job.winnerRepo.CreateBatch(txCtx, winners); err != nil {
		return err
	}

	err = job.auditLogRepo.Create(txCtx, &entity.AuditLog{
		Base:        entity.Base{ID: uuid.NewString()},
		CommunityID: event.CommunityID,
		ActorID:     systemActorID,
		Action:      entity.AuditWinnersDrawn,
		Meta: entity.Map{
			"event_id":     event.ID,
			"winner_count": n,
		},
	})
	if err != nil {
		return err
	}

	xcontext.WithCommitDBTransaction(txCtx)
	return nil
}
