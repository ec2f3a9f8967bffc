package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only.
// No Update/Delete methods are provided by design.

type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service logs internal audit information.
//
// IMPORTANT:
// - Audit is internal-only. Do not expose these records to tenant users by default.
// - Callers should treat audit logging as best-effort.

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.ActorAccountID == 0 {
		return ErrInvalidEvent
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}

	now := s.clock().UTC()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	return s.repo.Append(ctx, e)
}

// LogRateUpdate records an administrative rate change.
func (s *Service) LogRateUpdate(ctx context.Context, actorID int64, actorRole, ip string, targetID int64, metadata string) error {
	return s.Append(ctx, Event{
		Type:            EventTypeRateUpdate,
		ActorAccountID:  actorID,
		ActorRole:       actorRole,
		IPAddress:       ip,
		TargetAccountID: targetID,
		Message:         "rates updated",
		Metadata:        metadata,
	})
}

// LogCreditAdjustment records a manual balance change.
func (s *Service) LogCreditAdjustment(ctx context.Context, actorID int64, actorRole, ip string, targetID int64, metadata string) error {
	return s.Append(ctx, Event{
		Type:            EventTypeCreditAdjustment,
		ActorAccountID:  actorID,
		ActorRole:       actorRole,
		IPAddress:       ip,
		TargetAccountID: targetID,
		Message:         "credits adjusted",
		Metadata:        metadata,
	})
}

// LogOutcomeOverride records a manual call outcome correction.
func (s *Service) LogOutcomeOverride(ctx context.Context, actorID int64, actorRole, ip, callID, metadata string) error {
	return s.Append(ctx, Event{
		Type:           EventTypeOutcomeOverride,
		ActorAccountID: actorID,
		ActorRole:      actorRole,
		IPAddress:      ip,
		CallID:         callID,
		Message:        "outcome overridden",
		Metadata:       metadata,
	})
}
