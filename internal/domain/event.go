package domain

import (
	"context"
	"errors"
	"time"

	"github.com/droplabz/backend/internal/common"
	"github.com/droplabz/backend/internal/domain/eligibility"
	"github.com/droplabz/backend/internal/entity"
	"github.com/droplabz/backend/internal/model"
	"github.com/droplabz/backend/internal/repository"
	"github.com/droplabz/backend/pkg/enum"
	"github.com/droplabz/backend/pkg/errorx"
	"github.com/droplabz/backend/pkg/xcontext"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EventDomain interface {
	Create(context.Context, *model.CreateEventRequest) (*model.CreateEventResponse, error)
	Get(context.Context, *model.GetEventRequest) (*model.GetEventResponse, error)
	GetList(context.Context, *model.GetEventsRequest) (*model.GetEventsResponse, error)
	Update(context.Context, *model.UpdateEventRequest) (*model.UpdateEventResponse, error)
	Transition(context.Context, *model.TransitionEventRequest) (*model.TransitionEventResponse, error)
}

type eventDomain struct {
	eventRepo     repository.EventRepository
	communityRepo repository.CommunityRepository
	auditLogRepo  repository.AuditLogRepository
	roleVerifier  *common.CommunityRoleVerifier
}

func NewEventDomain(
	eventRepo repository.EventRepository,
	communityRepo repository.CommunityRepository,
	auditLogRepo repository.AuditLogRepository,
	roleVerifier *common.CommunityRoleVerifier,
) *eventDomain {
	return &eventDomain{
		eventRepo:     eventRepo,
		communityRepo: communityRepo,
		auditLogRepo:  auditLogRepo,
		roleVerifier:  roleVerifier,
	}
}

func (d *eventDomain) Create(
	ctx context.Context, req *model.CreateEventRequest,
) (*model.CreateEventResponse, error) {
	if req.Title == "" {
		return nil, errorx.New(errorx.BadRequest, "Require a title")
	}

	selectionMode, err := enum.ToEnum[entity.SelectionMode](req.SelectionMode)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid selection mode %s", req.SelectionMode)
	}

	if req.MaxWinners < 1 {
		return nil, errorx.New(errorx.BadRequest, "Require at least one winner spot")
	}

	if req.ReservedSpots < 0 || req.ReservedSpots > req.MaxWinners {
		return nil, errorx.New(errorx.BadRequest, "Reserved spots must fit inside max winners")
	}

	if !req.EndAt.After(req.StartAt) {
		return nil, errorx.New(errorx.BadRequest, "End time must be after start time")
	}

	community, err := d.communityRepo.GetByHandle(ctx, req.CommunityHandle)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found community")
		}

		xcontext.Logger(ctx).Errorf("Cannot get community: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.roleVerifier.Verify(ctx, community.ID); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	requirements, err := d.buildRequirements(ctx, req.Requirements)
	if err != nil {
		return nil, err
	}

	event := &entity.Event{
		Base:          entity.Base{ID: uuid.NewString()},
		CommunityID:   community.ID,
		Title:         req.Title,
		Description:   []byte(req.Description),
		Status:        entity.EventDraft,
		SelectionMode: selectionMode,
		MaxWinners:    req.MaxWinners,
		ReservedSpots: req.ReservedSpots,
		StartAt:       req.StartAt,
		EndAt:         req.EndAt,
		AutoDraw:      req.AutoDraw,
		Requirements:  requirements,
	}

	txCtx := xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(txCtx)

	if err := d.eventRepo.Create(txCtx, event); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create event: %v", err)
		return nil, errorx.Unknown
	}

	err = d.auditLogRepo.Create(txCtx, &entity.AuditLog{
		Base:        entity.Base{ID: uuid.NewString()},
		CommunityID: community.ID,
		ActorID:     xcontext.RequestUserID(ctx),
		Action:      entity.AuditEventCreated,
		Meta:        entity.Map{"event_id": event.ID, "title": event.Title},
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create audit log: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(txCtx)
	return &model.CreateEventResponse{ID: event.ID}, nil
}

func (d *eventDomain) Get(
	ctx context.Context, req *model.GetEventRequest,
) (*model.GetEventResponse, error) {
	event, err := d.eventRepo.GetByID(ctx, req.EventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found event")
		}

		xcontext.Logger(ctx).Errorf("Cannot get event: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetEventResponse{Event: model.ConvertEvent(event)}, nil
}

func (d *eventDomain) GetList(
	ctx context.Context, req *model.GetEventsRequest,
) (*model.GetEventsResponse, error) {
	community, err := d.communityRepo.GetByHandle(ctx, req.CommunityHandle)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found community")
		}

		xcontext.Logger(ctx).Errorf("Cannot get community: %v", err)
		return nil, errorx.Unknown
	}

	events, err := d.eventRepo.GetByCommunityID(ctx, community.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get events: %v", err)
		return nil, errorx.Unknown
	}

	clientEvents := make([]model.Event, 0, len(events))
	for i := range events {
		clientEvents = append(clientEvents, model.ConvertEvent(&events[i]))
	}

	return &model.GetEventsResponse{Events: clientEvents}, nil
}

func (d *eventDomain) Update(
	ctx context.Context, req *model.UpdateEventRequest,
) (*model.UpdateEventResponse, error) {
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

	if event.Status == entity.EventClosed {
		return nil, errorx.New(errorx.EventClosedImmutable, "Closed events cannot be modified")
	}

	updates := map[string]any{}
	if req.Title != nil {
		if *req.Title == "" {
			return nil, errorx.New(errorx.BadRequest, "Require a title")
		}
		updates["title"] = *req.Title
	}

	if req.Description != nil {
		updates["description"] = []byte(*req.Description)
	}

	maxWinners := event.MaxWinners
	if req.MaxWinners != nil {
		maxWinners = *req.MaxWinners
		updates["max_winners"] = maxWinners
	}

	reservedSpots := event.ReservedSpots
	if req.ReservedSpots != nil {
		reservedSpots = *req.ReservedSpots
		updates["reserved_spots"] = reservedSpots
	}

	if maxWinners < 1 || reservedSpots < 0 || reservedSpots > maxWinners {
		return nil, errorx.New(errorx.BadRequest, "Reserved spots must fit inside max winners")
	}

	// Capacity can grow at any time but never shrink below winners already
	// committed.
	if maxWinners-reservedSpots < event.TotalWinners {
		return nil, errorx.New(errorx.BadRequest,
			"Cannot shrink capacity below the %d winners already selected", event.TotalWinners)
	}

	startAt := event.StartAt
	if req.StartAt != nil {
		startAt = *req.StartAt
		updates["start_at"] = startAt
	}

	endAt := event.EndAt
	if req.EndAt != nil {
		endAt = *req.EndAt
		updates["end_at"] = endAt
	}

	if !endAt.After(startAt) {
		return nil, errorx.New(errorx.BadRequest, "End time must be after start time")
	}

	if req.AutoDraw != nil {
		updates["auto_draw"] = *req.AutoDraw
	}

	if req.Requirements != nil {
		if event.Status != entity.EventDraft {
			return nil, errorx.New(errorx.BadRequest,
				"Requirements can only be changed while the event is a draft")
		}

		requirements, err := d.buildRequirements(ctx, req.Requirements)
		if err != nil {
			return nil, err
		}

		updates["requirements"] = requirements
	}

	if len(updates) == 0 {
		return &model.UpdateEventResponse{}, nil
	}

	txCtx := xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(txCtx)

	if err := d.eventRepo.Update(txCtx, event.ID, updates); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update event: %v", err)
		return nil, errorx.Unknown
	}

	err = d.auditLogRepo.Create(txCtx, &entity.AuditLog{
		Base:        entity.Base{ID: uuid.NewString()},
		CommunityID: event.CommunityID,
		ActorID:     xcontext.RequestUserID(ctx),
		Action:      entity.AuditEventUpdated,
		Meta:        entity.Map{"event_id": event.ID},
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create audit log: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(txCtx)
	return &model.UpdateEventResponse{}, nil
}

func (d *eventDomain) Transition(
	ctx context.Context, req *model.TransitionEventRequest,
) (*model.TransitionEventResponse, error) {
	target, err := enum.ToEnum[entity.EventStatus](req.Status)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid event status %s", req.Status)
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

	if event.Status == entity.EventClosed {
		return nil, errorx.New(errorx.EventClosedImmutable, "Closed events cannot be modified")
	}

	switch {
	case event.Status == entity.EventDraft && target == entity.EventActive:
		if !event.EndAt.After(time.Now()) {
			return nil, errorx.New(errorx.BadRequest, "Cannot activate an event that has already ended")
		}
	case event.Status == entity.EventActive && target == entity.EventClosed:
	default:
		return nil, errorx.New(errorx.BadRequest,
			"Cannot transition from %s to %s", event.Status, target)
	}

	txCtx := xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(txCtx)

	if err := d.eventRepo.UpdateStatus(txCtx, event.ID, event.Status, target); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.BadRequest, "Event status changed concurrently, please retry")
		}

		xcontext.Logger(ctx).Errorf("Cannot update event status: %v", err)
		return nil, errorx.Unknown
	}

	err = d.auditLogRepo.Create(txCtx, &entity.AuditLog{
		Base:        entity.Base{ID: uuid.NewString()},
		CommunityID: event.CommunityID,
		ActorID:     xcontext.RequestUserID(ctx),
		Action:      entity.AuditEventTransitioned,
		Meta: entity.Map{
			"event_id": event.ID,
			"from":     string(event.Status),
			"to":       string(target),
		},
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create audit log: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(txCtx)
	return &model.TransitionEventResponse{Status: string(target)}, nil
}

func (d *eventDomain) buildRequirements(
	ctx context.Context, clientRequirements []model.Requirement,
) (entity.Array[entity.Requirement], error) {
	requirements := make(entity.Array[entity.Requirement], 0, len(clientRequirements))
	for _, r := range clientRequirements {
		reqType, err := enum.ToEnum[entity.RequirementType](r.Type)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid requirement type %s", r.Type)
		}

		requirement := entity.Requirement{
			ID:     r.ID,
			Type:   reqType,
			Config: r.Config,
		}

		if requirement.ID == "" {
			requirement.ID = uuid.NewString()
		}

		// Reject broken configs at write time instead of surprising the
		// participant at submission time.
		checker, err := eligibility.NewChecker(ctx, requirement)
		if err != nil {
			return nil, err
		}

		requirement.Config = eligibility.CanonicalConfig(checker)

		requirements = append(requirements, requirement)
	}

	return requirements, nil
}
