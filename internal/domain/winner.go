package domain

import (
	"context"
	"errors"

	"github.com/droplabz/backend/internal/common"
	"github.com/droplabz/backend/internal/entity"
	"github.com/droplabz/backend/internal/model"
	"github.com/droplabz/backend/internal/repository"
	"github.com/droplabz/backend/pkg/crypto"
	"github.com/droplabz/backend/pkg/errorx"
	"github.com/droplabz/backend/pkg/xcontext"
	"github.com/google/uuid"
	mathUtil "github.com/pkg/math"
	"gorm.io/gorm"
)

type WinnerDomain interface {
	Draw(context.Context, *model.DrawWinnersRequest) (*model.DrawWinnersResponse, error)
	PromoteToWinner(context.Context, *model.PromoteToWinnerRequest) (*model.PromoteToWinnerResponse, error)
	GetWinners(context.Context, *model.GetWinnersRequest) (*model.GetWinnersResponse, error)
}

type winnerDomain struct {
	eventRepo    repository.EventRepository
	entryRepo    repository.EntryRepository
	winnerRepo   repository.WinnerRepository
	auditLogRepo repository.AuditLogRepository
	roleVerifier *common.CommunityRoleVerifier
	eventLocker  *common.EventLocker
	randIntn     crypto.Rand
}

func NewWinnerDomain(
	eventRepo repository.EventRepository,
	entryRepo repository.EntryRepository,
	winnerRepo repository.WinnerRepository,
	auditLogRepo repository.AuditLogRepository,
	roleVerifier *common.CommunityRoleVerifier,
	eventLocker *common.EventLocker,
	randIntn crypto.Rand,
) *winnerDomain {
	if randIntn == nil {
		randIntn = crypto.RandIntn
	}

	return &winnerDomain{
		eventRepo:    eventRepo,
		entryRepo:    entryRepo,
		winnerRepo:   winnerRepo,
		auditLogRepo: auditLogRepo,
		roleVerifier: roleVerifier,
		eventLocker:  eventLocker,
		randIntn:     randIntn,
	}
}

func (d *winnerDomain) Draw(
	ctx context.Context, req *model.DrawWinnersRequest,
) (*model.DrawWinnersResponse, error) {
	event, err := d.eventRepo.GetByID(ctx, req.EventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found event")
		}

		xcontext.Logger(ctx).Errorf("Cannot get event: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.roleVerifier.Verify(ctx, event.CommunityID); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	if event.SelectionMode == entity.SelectionManual {
		return nil, errorx.New(errorx.ManualSelectionRequired,
			"This event requires winners to be promoted manually")
	}

	mutex := d.eventLocker.Lock(event.ID)
	defer mutex.Unlock()

	// Refresh under the lock so the remaining-capacity count is current.
	event, err = d.eventRepo.GetByID(ctx, event.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot reload event: %v", err)
		return nil, errorx.Unknown
	}

	existing, err := d.winnerRepo.GetByEventID(ctx, event.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get winners: %v", err)
		return nil, errorx.Unknown
	}

	// FCFS winners are fixed at admission time; re-running a draw never
	// changes them. The same holds for a random event that was already
	// drawn.
	if event.SelectionMode == entity.SelectionFCFS || len(existing) > 0 {
		return d.drawResponse(ctx, event.ID, existing, true)
	}

	remaining := event.MaxWinners - event.ReservedSpots - event.TotalWinners
	if remaining <= 0 {
		return d.drawResponse(ctx, event.ID, existing, false)
	}

	pool, err := d.entryRepo.GetEligibleForDraw(ctx, event.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get draw pool: %v", err)
		return nil, errorx.Unknown
	}

	n := mathUtil.MinInt(remaining, len(pool))
	if n == 0 {
		return d.drawResponse(ctx, event.ID, existing, false)
	}

	crypto.Shuffle(pool, d.randIntn)

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

	if err := d.eventRepo.CheckAndIncreaseWinners(txCtx, event.ID, n); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.CapacityExhausted, "No winner spots left")
		}

		xcontext.Logger(ctx).Errorf("Cannot reserve winner spots: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.winnerRepo.CreateBatch(txCtx, winners); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create winners: %v", err)
		return nil, errorx.Unknown
	}

	err = d.auditLogRepo.Create(txCtx, &entity.AuditLog{
		Base:        entity.Base{ID: uuid.NewString()},
		CommunityID: event.CommunityID,
		ActorID:     xcontext.RequestUserID(ctx),
		Action:      entity.AuditWinnersDrawn,
		Meta: entity.Map{
			"event_id":     event.ID,
			"winner_count": n,
		},
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create audit log: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(txCtx)
	return d.drawResponse(ctx, event.ID, winners, false)
}

func (d *winnerDomain) PromoteToWinner(
	ctx context.Context, req *model.PromoteToWinnerRequest,
) (*model.PromoteToWinnerResponse, error) {
	event, err := d.eventRepo.GetByID(ctx, req.EventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found event")
		}

		xcontext.Logger(ctx).Errorf("Cannot get event: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.roleVerifier.Verify(ctx, event.CommunityID); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	if event.SelectionMode == entity.SelectionFCFS {
		return nil, errorx.New(errorx.BadRequest,
			"First-come-first-served events select their own winners")
	}

	entry, err := d.entryRepo.GetByID(ctx, req.EntryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found entry")
		}

		xcontext.Logger(ctx).Errorf("Cannot get entry: %v", err)
		return nil, errorx.Unknown
	}

	if entry.EventID != event.ID {
		return nil, errorx.New(errorx.BadRequest, "Entry does not belong to this event")
	}

	if entry.Status != entity.EntryValid || entry.IsIneligible {
		return nil, errorx.New(errorx.Ineligible, "Entry is not eligible to win")
	}

	mutex := d.eventLocker.Lock(event.ID)
	defer mutex.Unlock()

	_, err = d.winnerRepo.GetByEventEntry(ctx, event.ID, entry.ID)
	if err == nil {
		return nil, errorx.New(errorx.BadRequest, "Entry is already a winner")
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get winner: %v", err)
		return nil, errorx.Unknown
	}

	winner := &entity.Winner{
		Base:            entity.Base{ID: uuid.NewString()},
		EventID:         event.ID,
		EntryID:         entry.ID,
		SelectionMethod: entity.SelectionManual,
		SelectedBy:      xcontext.RequestUserID(ctx),
	}

	txCtx := xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(txCtx)

	if err := d.eventRepo.CheckAndIncreaseWinners(txCtx, event.ID, 1); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.CapacityExhausted, "No winner spots left")
		}

		xcontext.Logger(ctx).Errorf("Cannot reserve winner spot: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.winnerRepo.Create(txCtx, winner); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create winner: %v", err)
		return nil, errorx.Unknown
	}

	err = d.auditLogRepo.Create(txCtx, &entity.AuditLog{
		Base:        entity.Base{ID: uuid.NewString()},
		CommunityID: event.CommunityID,
		ActorID:     xcontext.RequestUserID(ctx),
		Action:      entity.AuditWinnerPromoted,
		Meta: entity.Map{
			"event_id": event.ID,
			"entry_id": entry.ID,
		},
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create audit log: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(txCtx)
	return &model.PromoteToWinnerResponse{
		Winner: model.ConvertWinner(winner, entry.WalletAddress),
	}, nil
}

func (d *winnerDomain) GetWinners(
	ctx context.Context, req *model.GetWinnersRequest,
) (*model.GetWinnersResponse, error) {
	event, err := d.eventRepo.GetByID(ctx, req.EventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found event")
		}

		xcontext.Logger(ctx).Errorf("Cannot get event: %v", err)
		return nil, errorx.Unknown
	}

	winners, err := d.winnerRepo.GetByEventID(ctx, event.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get winners: %v", err)
		return nil, errorx.Unknown
	}

	clientWinners, err := d.convertWinners(ctx, event.ID, winners)
	if err != nil {
		return nil, err
	}

	return &model.GetWinnersResponse{
		Winners:        clientWinners,
		AvailableSpots: event.MaxWinners - event.ReservedSpots - event.TotalWinners,
	}, nil
}

func (d *winnerDomain) drawResponse(
	ctx context.Context, eventID string, winners []entity.Winner, alreadyDrawn bool,
) (*model.DrawWinnersResponse, error) {
	clientWinners, err := d.convertWinners(ctx, eventID, winners)
	if err != nil {
		return nil, err
	}

	return &model.DrawWinnersResponse{Winners: clientWinners, AlreadyDrawn: alreadyDrawn}, nil
}

func (d *winnerDomain) convertWinners(
	ctx context.Context, eventID string, winners []entity.Winner,
) ([]model.Winner, error) {
	entries, err := d.entryRepo.GetByEventID(ctx, eventID, repository.EntryFilter{})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get entries: %v", err)
		return nil, errorx.Unknown
	}

	walletByEntry := map[string]string{}
	for _, entry := range entries {
		walletByEntry[entry.ID] = entry.WalletAddress
	}

	clientWinners := make([]model.Winner, 0, len(winners))
	for i := range winners {
		clientWinners = append(clientWinners, model.ConvertWinner(&winners[i], walletByEntry[winners[i].EntryID]))
	}

	return clientWinners, nil
}
