package linens

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/linentrack/linentrack/internal/shared"
)

const (
	discardHistoryLimit = 50
	deleteHistoryLimit  = 20
	monitorLimit        = 50
)

// fallbackReason is stamped when the damage reason id resolves to nothing.
const fallbackReason = "Damaged"

// RepositoryPort is the persistence contract the service depends on.
type RepositoryPort interface {
	Insert(ctx context.Context, linen Linen) (int64, error)
	Get(ctx context.Context, id int64) (Linen, string, error)
	FindByRFID(ctx context.Context, tag string) (Linen, error)
	ListActive(ctx context.Context) ([]Detail, error)
	Discard(ctx context.Context, tag, reasonLabel string, at time.Time) error
	DiscardHistory(ctx context.Context, limit int) ([]DiscardRecord, error)
	Monitor(ctx context.Context, limit int) ([]MonitorEntry, error)
	DeleteWithLog(ctx context.Context, id int64, entry shared.AuditLog) error
	AppendActivity(ctx context.Context, log ActivityLog) (int64, error)
}

// Auditor writes and reads the audit trail. Satisfied by shared.AuditLogger.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
	RecentByAction(ctx context.Context, action string, limit int) ([]shared.AuditLog, error)
}

// ReasonLookup resolves a damage reason id to its display label.
type ReasonLookup interface {
	ReasonName(ctx context.Context, id int64) (string, error)
}

// Service implements the RFID linen registry.
type Service struct {
	repo    RepositoryPort
	audit   Auditor
	reasons ReasonLookup
	now     func() time.Time
}

// NewService wires the linen service.
func NewService(repo RepositoryPort, audit Auditor, reasons ReasonLookup) *Service {
	return &Service{repo: repo, audit: audit, reasons: reasons, now: time.Now}
}

// RegisterInput is the payload for registering a new linen.
type RegisterInput struct {
	RFIDTag    string
	ProductID  int64
	VendorID   *int64
	HospitalID int64
}

// Register adds a new linen in Available status. The rfid tag must be
// unique across the registry.
func (s *Service) Register(ctx context.Context, input RegisterInput) (Linen, error) {
	input.RFIDTag = strings.TrimSpace(input.RFIDTag)
	if input.RFIDTag == "" {
		return Linen{}, fmt.Errorf("%w: rfid tag is required", ErrValidation)
	}
	if input.ProductID <= 0 {
		return Linen{}, fmt.Errorf("%w: product is required", ErrValidation)
	}
	if input.HospitalID <= 0 {
		return Linen{}, fmt.Errorf("%w: hospital is required", ErrValidation)
	}
	now := s.now()
	linen := Linen{
		RFIDTag:      input.RFIDTag,
		ProductID:    input.ProductID,
		VendorID:     input.VendorID,
		HospitalID:   input.HospitalID,
		Status:       StatusAvailable,
		IsActive:     true,
		RegisteredAt: now,
		UpdatedAt:    now,
	}
	id, err := s.repo.Insert(ctx, linen)
	if err != nil {
		return Linen{}, err
	}
	linen.ID = id
	return linen, nil
}

// Active lists linens still in circulation.
func (s *Service) Active(ctx context.Context) ([]Detail, error) {
	details, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if details == nil {
		details = []Detail{}
	}
	return details, nil
}

// DiscardInput reports a damaged or lost linen by tag.
type DiscardInput struct {
	RFIDTag        string
	DamageReasonID int64
	ReportedBy     *int64
}

// Discard soft-deletes the linen: it leaves circulation and its status
// becomes the damage reason label. One DISCARD_LINEN audit entry and one
// DAMAGE movement event are recorded.
func (s *Service) Discard(ctx context.Context, input DiscardInput) error {
	input.RFIDTag = strings.TrimSpace(input.RFIDTag)
	if input.RFIDTag == "" {
		return fmt.Errorf("%w: rfid tag is required", ErrValidation)
	}
	linen, err := s.repo.FindByRFID(ctx, input.RFIDTag)
	if err != nil {
		return err
	}

	reason := fallbackReason
	if s.reasons != nil && input.DamageReasonID > 0 {
		if name, err := s.reasons.ReasonName(ctx, input.DamageReasonID); err == nil && name != "" {
			reason = name
		}
	}

	now := s.now()
	if err := s.repo.Discard(ctx, input.RFIDTag, reason, now); err != nil {
		return err
	}
	if _, err := s.repo.AppendActivity(ctx, ActivityLog{
		LinenID:    linen.ID,
		Activity:   ActivityDamage,
		RecordedAt: now,
	}); err != nil {
		return err
	}
	return s.audit.Record(ctx, shared.AuditLog{
		ActorID:     input.ReportedBy,
		Action:      shared.ActionDiscardLinen,
		Description: fmt.Sprintf("แจ้งชำรุด %s (%s)", input.RFIDTag, reason),
		CreatedAt:   now,
	})
}

// DiscardHistory returns the latest soft-deleted linens.
func (s *Service) DiscardHistory(ctx context.Context) ([]DiscardRecord, error) {
	records, err := s.repo.DiscardHistory(ctx, discardHistoryLimit)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []DiscardRecord{}
	}
	return records, nil
}

// DeleteHistory returns the latest permanent deletions, read back from the
// audit trail.
func (s *Service) DeleteHistory(ctx context.Context) ([]DeleteRecord, error) {
	logs, err := s.audit.RecentByAction(ctx, shared.ActionDeleteLinen, deleteHistoryLimit)
	if err != nil {
		return nil, err
	}
	records := make([]DeleteRecord, 0, len(logs))
	for _, entry := range logs {
		records = append(records, DeleteRecord{
			ID:   entry.ID,
			Item: entry.Description,
			Time: entry.CreatedAt.Format(feedTimeLayout),
		})
	}
	return records, nil
}

// Delete removes a linen permanently. The DELETE_LINEN audit entry rides
// the same transaction as the removal.
func (s *Service) Delete(ctx context.Context, id int64, actorID *int64) error {
	linen, productName, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if productName == "" {
		productName = "Unknown"
	}
	return s.repo.DeleteWithLog(ctx, id, shared.AuditLog{
		ActorID:     actorID,
		Action:      shared.ActionDeleteLinen,
		Description: fmt.Sprintf("ลบ %s : %s", linen.RFIDTag, productName),
		CreatedAt:   s.now(),
	})
}

// Monitor returns the latest movements for the realtime monitor page.
func (s *Service) Monitor(ctx context.Context) ([]MonitorEntry, error) {
	entries, err := s.repo.Monitor(ctx, monitorLimit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []MonitorEntry{}
	}
	return entries, nil
}

// ActivityInput records one ISSUE/RETURN/DAMAGE movement by tag.
type ActivityInput struct {
	RFIDTag  string
	Activity string
	ReaderID *int64
	RoomID   *int64
}

// RecordActivity appends a movement event for the tagged linen and bumps
// its updated_at so the monitor feed surfaces the movement.
func (s *Service) RecordActivity(ctx context.Context, input ActivityInput) (ActivityLog, error) {
	switch input.Activity {
	case ActivityIssue, ActivityReturn, ActivityDamage:
	default:
		return ActivityLog{}, fmt.Errorf("%w: unknown activity %q", ErrValidation, input.Activity)
	}
	linen, err := s.repo.FindByRFID(ctx, strings.TrimSpace(input.RFIDTag))
	if err != nil {
		return ActivityLog{}, err
	}
	log := ActivityLog{
		LinenID:    linen.ID,
		ReaderID:   input.ReaderID,
		RoomID:     input.RoomID,
		Activity:   input.Activity,
		RecordedAt: s.now(),
	}
	id, err := s.repo.AppendActivity(ctx, log)
	if err != nil {
		return ActivityLog{}, err
	}
	log.ID = id
	return log, nil
}
