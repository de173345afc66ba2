package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/droplabz/backend/internal/common"
	"github.com/droplabz/backend/internal/domain/eligibility"
	"github.com/droplabz/backend/internal/entity"
	"github.com/droplabz/backend/internal/model"
	"github.com/droplabz/backend/internal/repository"
	"github.com/droplabz/backend/pkg/enum"
	"github.com/droplabz/backend/pkg/errorx"
	"github.com/droplabz/backend/pkg/xcontext"
	"github.com/droplabz/backend/pkg/xredis"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EntryDomain interface {
	Submit(context.Context, *model.SubmitEntryRequest) (*model.SubmitEntryResponse, error)
	GetEligibilitySnapshot(context.Context, *model.GetEligibilitySnapshotRequest) (*model.GetEligibilitySnapshotResponse, error)
	GetEntries(context.Context, *model.GetEntriesRequest) (*model.GetEntriesResponse, error)
	MarkIneligible(context.Context, *model.MarkIneligibleRequest) (*model.MarkIneligibleResponse, error)
	SweepDuplicates(context.Context, *model.SweepDuplicatesRequest) (*model.SweepDuplicatesResponse, error)
}

type entryDomain struct {
	eventRepo    repository.EventRepository
	entryRepo    repository.EntryRepository
	winnerRepo   repository.WinnerRepository
	auditLogRepo repository.AuditLogRepository
	roleVerifier *common.CommunityRoleVerifier
	factProvider eligibility.FactProvider
	redisClient  xredis.Client
	eventLocker  *common.EventLocker
}

func NewEntryDomain(
	eventRepo repository.EventRepository,
	entryRepo repository.EntryRepository,
	winnerRepo repository.WinnerRepository,
	auditLogRepo repository.AuditLogRepository,
	roleVerifier *common.CommunityRoleVerifier,
	factProvider eligibility.FactProvider,
	redisClient xredis.Client,
	eventLocker *common.EventLocker,
) *entryDomain {
	return &entryDomain{
		eventRepo:    eventRepo,
		entryRepo:    entryRepo,
		winnerRepo:   winnerRepo,
		auditLogRepo: auditLogRepo,
		roleVerifier: roleVerifier,
		factProvider: factProvider,
		redisClient:  redisClient,
		eventLocker:  eventLocker,
	}
}

func (d *entryDomain) Submit(
	ctx context.Context, req *model.SubmitEntryRequest,
) (*model.SubmitEntryResponse, error) {
	if req.EventID == "" || req.WalletAddress == "" {
		return nil, errorx.New(errorx.BadRequest, "Require event id and wallet address")
	}

	event, err := d.eventRepo.GetByID(ctx, req.EventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found event")
		}

		xcontext.Logger(ctx).Errorf("Cannot get event: %v", err)
		return nil, errorx.Unknown
	}

	now := time.Now()
	if event.Status != entity.EventActive || now.Before(event.StartAt) || now.After(event.EndAt) {
		return nil, errorx.New(errorx.EventNotAcceptingEntries, "Event is not accepting entries")
	}

	_, err = d.entryRepo.GetByEventWallet(ctx, event.ID, req.WalletAddress)
	if err == nil {
		return nil, errorx.New(errorx.AlreadyEntered, "This wallet has already entered this event")
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get existing entry: %v", err)
		return nil, errorx.Unknown
	}

	facts := d.resolveFacts(ctx, req.WalletAddress, req.DiscordUserID)
	results, eligible := eligibility.Evaluate(ctx, facts, event.Requirements)

	entry := &entity.Entry{
		Base:          entity.Base{ID: uuid.NewString()},
		EventID:       event.ID,
		WalletAddress: req.WalletAddress,
		DiscordUserID: req.DiscordUserID,
		UserID:        xcontext.RequestUserID(ctx),
		Status:        entity.EntryValid,
	}

	if !eligible {
		// Persisted as invalid so the participant sees which requirements
		// failed instead of being silently dropped.
		entry.Status = entity.EntryInvalid
	}

	won := false
	mutex := d.eventLocker.Lock(event.ID)
	defer mutex.Unlock()

	admit := func() error {
		won = false
		entry.IsIneligible = false
		entry.IneligibilityReason = ""

		txCtx := xcontext.WithDBTransaction(ctx)
		defer xcontext.WithRollbackDBTransaction(txCtx)

		// The detector must see every peer entry admitted before this one,
		// so it runs under the event lock, not before it.
		if entry.Status == entity.EntryValid && req.DiscordUserID != "" {
			peers, err := d.entryRepo.GetByEventID(txCtx, event.ID, repository.EntryFilter{
				DiscordUserID: req.DiscordUserID,
			})
			if err != nil {
				return err
			}

			verdict := eligibility.CheckDuplicate(req.WalletAddress, req.DiscordUserID, peers)
			if verdict.IsDuplicate {
				entry.IsIneligible = true
				entry.IneligibilityReason = verdict.Reason
			}
		}

		// The admission sequence is assigned inside the transaction; it is
		// the authoritative FCFS tie-break, never a client timestamp.
		entry.AdmissionSeq = xcontext.SnowFlake(ctx).Generate().Int64()

		if err := d.entryRepo.Create(txCtx, entry); err != nil {
			if isUniqueViolation(err) {
				return backoff.Permanent(
					errorx.New(errorx.AlreadyEntered, "This wallet has already entered this event"))
			}

			return err
		}

		if event.SelectionMode == entity.SelectionFCFS && entry.Status == entity.EntryValid && !entry.IsIneligible {
			err := d.eventRepo.CheckAndIncreaseWinners(txCtx, event.ID, 1)
			if err == nil {
				winner := &entity.Winner{
					Base:            entity.Base{ID: uuid.NewString()},
					EventID:         event.ID,
					EntryID:         entry.ID,
					SelectionMethod: entity.SelectionFCFS,
					SelectedBy:      entity.SelectedBySystemFCFS,
				}

				if err := d.winnerRepo.Create(txCtx, winner); err != nil {
					return err
				}

				won = true
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			// Capacity exhausted: the entry is still persisted as a valid
			// non-winner.
		}

		xcontext.WithCommitDBTransaction(txCtx)
		return nil
	}

	cfg := xcontext.Configs(ctx).Event
	err = backoff.Retry(admit, backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(cfg.AdmissionRetryBackoff), cfg.AdmissionMaxRetries),
		ctx,
	))
	if err != nil {
		var xerr errorx.Error
		if errors.As(err, &xerr) {
			return nil, xerr
		}

		xcontext.Logger(ctx).Errorf("Cannot admit entry after retries: %v", err)
		return nil, errorx.New(errorx.RetryExceeded, "Submission could not be committed, please retry")
	}

	return &model.SubmitEntryResponse{
		Entry:   model.ConvertEntry(entry),
		Results: model.ConvertRequirementResults(results),
		Won:     won,
	}, nil
}

func (d *entryDomain) GetEligibilitySnapshot(
	ctx context.Context, req *model.GetEligibilitySnapshotRequest,
) (*model.GetEligibilitySnapshotResponse, error) {
	if req.EventID == "" || req.WalletAddress == "" {
		return nil, errorx.New(errorx.BadRequest, "Require event id and wallet address")
	}

	cacheKey := common.RedisKeyEligibilitySnapshot(req.EventID, req.WalletAddress, req.DiscordUserID)
	if d.redisClient != nil {
		var cached model.GetEligibilitySnapshotResponse
		if err := d.redisClient.GetObj(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	event, err := d.eventRepo.GetByID(ctx, req.EventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found event")
		}

		xcontext.Logger(ctx).Errorf("Cannot get event: %v", err)
		return nil, errorx.Unknown
	}

	facts := d.resolveFacts(ctx, req.WalletAddress, req.DiscordUserID)
	results, eligible := eligibility.Evaluate(ctx, facts, event.Requirements)

	resp := &model.GetEligibilitySnapshotResponse{
		Results:  model.ConvertRequirementResults(results),
		Eligible: eligible,
	}

	if d.redisClient != nil {
		ttl := xcontext.Configs(ctx).Event.SnapshotCacheTTL
		if err := d.redisClient.SetObj(ctx, cacheKey, resp, ttl); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot cache eligibility snapshot: %v", err)
		}
	}

	return resp, nil
}

func (d *entryDomain) GetEntries(
	ctx context.Context, req *model.GetEntriesRequest,
) (*model.GetEntriesResponse, error) {
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

	filter := repository.EntryFilter{}
	if req.Status != "" {
		status, err := enum.ToEnum[entity.EntryStatus](req.Status)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid entry status")
		}
		filter.Status = status
	}

	entries, err := d.entryRepo.GetByEventID(ctx, event.ID, filter)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get entries: %v", err)
		return nil, errorx.Unknown
	}

	clientEntries := make([]model.Entry, 0, len(entries))
	for i := range entries {
		clientEntries = append(clientEntries, model.ConvertEntry(&entries[i]))
	}

	return &model.GetEntriesResponse{Entries: clientEntries}, nil
}

func (d *entryDomain) MarkIneligible(
	ctx context.Context, req *model.MarkIneligibleRequest,
) (*model.MarkIneligibleResponse, error) {
	if len(req.EntryIDs) == 0 {
		return nil, errorx.New(errorx.BadRequest, "Require at least one entry id")
	}

	if req.Reason == "" {
		return nil, errorx.New(errorx.BadRequest, "Require a reason")
	}

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

	txCtx := xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(txCtx)

	if err := d.entryRepo.MarkIneligibleByIDs(txCtx, event.ID, req.EntryIDs, req.Reason); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot mark entries ineligible: %v", err)
		return nil, errorx.New(errorx.BadRequest, "Some entry ids are invalid or do not belong to this event")
	}

	err = d.auditLogRepo.Create(txCtx, &entity.AuditLog{
		Base:        entity.Base{ID: uuid.NewString()},
		CommunityID: event.CommunityID,
		ActorID:     xcontext.RequestUserID(ctx),
		Action:      entity.AuditEntriesMarkedIneligible,
		Meta: entity.Map{
			"event_id":  event.ID,
			"entry_ids": req.EntryIDs,
			"reason":    req.Reason,
		},
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create audit log: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(txCtx)
	return &model.MarkIneligibleResponse{MarkedCount: len(req.EntryIDs)}, nil
}

func (d *entryDomain) SweepDuplicates(
	ctx context.Context, req *model.SweepDuplicatesRequest,
) (*model.SweepDuplicatesResponse, error) {
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

	mutex := d.eventLocker.Lock(event.ID)
	defer mutex.Unlock()

	entries, err := d.entryRepo.GetByEventID(ctx, event.ID, repository.EntryFilter{})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get entries: %v", err)
		return nil, errorx.Unknown
	}

	flags := eligibility.Sweep(entries)
	if len(flags) == 0 {
		return &model.SweepDuplicatesResponse{FlaggedEntries: []model.Entry{}}, nil
	}

	txCtx := xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(txCtx)

	flagged := []model.Entry{}
	for _, flag := range flags {
		err := d.entryRepo.MarkIneligibleByIDs(txCtx, event.ID, []string{flag.EntryID}, flag.Reason)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot flag entry %s: %v", flag.EntryID, err)
			return nil, errorx.Unknown
		}

		for i := range entries {
			if entries[i].ID == flag.EntryID {
				entries[i].IsIneligible = true
				entries[i].IneligibilityReason = flag.Reason
				flagged = append(flagged, model.ConvertEntry(&entries[i]))
			}
		}
	}

	err = d.auditLogRepo.Create(txCtx, &entity.AuditLog{
		Base:        entity.Base{ID: uuid.NewString()},
		CommunityID: event.CommunityID,
		ActorID:     xcontext.RequestUserID(ctx),
		Action:      entity.AuditDuplicateSweep,
		Meta: entity.Map{
			"event_id":      event.ID,
			"flagged_count": len(flags),
		},
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create audit log: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(txCtx)
	return &model.SweepDuplicatesResponse{FlaggedEntries: flagged}, nil
}

// resolveFacts asks the fact provider for the candidate's facts. Provider
// failures degrade to empty facts so requirements read as not yet met.
func (d *entryDomain) resolveFacts(
	ctx context.Context, walletAddress, discordUserID string,
) eligibility.CandidateFacts {
	if d.factProvider == nil {
		return eligibility.CandidateFacts{}
	}

	facts, err := d.factProvider.GetCandidateFacts(ctx, walletAddress, discordUserID)
	if err != nil || facts == nil {
		xcontext.Logger(ctx).Warnf("Cannot resolve candidate facts: %v", err)
		return eligibility.CandidateFacts{}
	}

	return *facts
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry")
}
