package requisitions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/linentrack/linentrack/internal/shared"
)

// RepositoryPort is the persistence contract the service depends on.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error
	Get(ctx context.Context, id int64) (Requisition, error)
	CountByCodePrefix(ctx context.Context, prefix string) (int, error)
	ListDetails(ctx context.Context) ([]Detail, error)
	GetDetail(ctx context.Context, id int64) (Detail, error)
}

// TxRepository groups the writes that must share one transaction. Audit
// entries ride the same transaction as the rows they describe.
type TxRepository interface {
	Insert(ctx context.Context, req Requisition) (int64, error)
	InsertItem(ctx context.Context, item LineItem) (int64, error)
	// UpdateStatus applies the new status only when the row still carries
	// the seen timestamp. It returns false without error when the guard
	// misses on a live row, and ErrNotFound when the row is gone.
	UpdateStatus(ctx context.Context, id int64, status Status, updatedAt, seen time.Time) (bool, error)
	Delete(ctx context.Context, id int64) error
	AppendAudit(ctx context.Context, entry shared.AuditLog) error
}

// Service implements the requisition workflow: document numbering, the
// status state machine and the audit trail.
type Service struct {
	repo RepositoryPort
	now  func() time.Time
}

// NewService wires the requisition service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, now: time.Now}
}

// maxCodeAttempts bounds the retry loop when two writers race for the same
// daily sequence number.
const maxCodeAttempts = 3

// CreateInput is the caller-supplied payload for a new requisition.
type CreateInput struct {
	Kind         Kind
	RequestedBy  int64
	TargetWardID int64
	ActorID      *int64
	Items        []ItemInput
}

// ItemInput is one requested line.
type ItemInput struct {
	ProductID      int64
	Quantity       int
	DamageReasonID *int64
}

// Create registers a new requisition in PENDING status, assigns the next
// REQ-YYYYMMDD-NNN code for the current day and writes a CREATE_REQUEST
// audit entry in the same transaction as the rows.
func (s *Service) Create(ctx context.Context, input CreateInput) (Requisition, error) {
	if input.RequestedBy <= 0 {
		return Requisition{}, fmt.Errorf("%w: requesting user is required", ErrValidation)
	}
	if input.TargetWardID <= 0 {
		return Requisition{}, fmt.Errorf("%w: target ward is required", ErrValidation)
	}
	if input.Kind == "" {
		input.Kind = KindIssue
	}
	if !input.Kind.Valid() {
		return Requisition{}, fmt.Errorf("%w: unknown requisition kind %q", ErrValidation, input.Kind)
	}
	if len(input.Items) == 0 {
		return Requisition{}, fmt.Errorf("%w: at least one line item is required", ErrValidation)
	}
	totalQty := 0
	for _, item := range input.Items {
		if item.ProductID <= 0 {
			return Requisition{}, fmt.Errorf("%w: every line needs a product", ErrValidation)
		}
		if item.Quantity <= 0 {
			return Requisition{}, fmt.Errorf("%w: quantity must be positive", ErrValidation)
		}
		totalQty += item.Quantity
	}

	actor := input.ActorID
	if actor == nil {
		requester := input.RequestedBy
		actor = &requester
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		now := s.now()
		prefix := fmt.Sprintf("REQ-%s-", now.Format("20060102"))
		count, err := s.repo.CountByCodePrefix(ctx, prefix)
		if err != nil {
			return Requisition{}, err
		}
		req := Requisition{
			Code:         fmt.Sprintf("%s%03d", prefix, count+1),
			Kind:         input.Kind,
			RequestedBy:  input.RequestedBy,
			TargetWardID: input.TargetWardID,
			Status:       StatusPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
			id, err := tx.Insert(ctx, req)
			if err != nil {
				return err
			}
			req.ID = id
			req.Items = req.Items[:0]
			for _, item := range input.Items {
				line := LineItem{
					RequisitionID:  id,
					ProductID:      item.ProductID,
					Quantity:       item.Quantity,
					DamageReasonID: item.DamageReasonID,
				}
				lineID, err := tx.InsertItem(ctx, line)
				if err != nil {
					return err
				}
				line.ID = lineID
				req.Items = append(req.Items, line)
			}
			return tx.AppendAudit(ctx, shared.AuditLog{
				ActorID:     actor,
				Action:      shared.ActionCreateRequest,
				Description: fmt.Sprintf("สร้างคำร้องใหม่ %s (รวม %d ชิ้น)", req.Code, totalQty),
				CreatedAt:   now,
			})
		})
		if err == nil {
			return req, nil
		}
		if errors.Is(err, errCodeTaken) {
			// Another writer took the same sequence number, recount.
			continue
		}
		return Requisition{}, err
	}
	return Requisition{}, fmt.Errorf("%w: could not allocate a document code", ErrConflict)
}

// UpdateStatusInput carries a status transition request.
type UpdateStatusInput struct {
	ID      int64
	Status  Status
	ActorID *int64
}

// UpdateStatus moves a requisition to the given status. The write is guarded
// by the updated_at value read beforehand; a guard miss on a live row
// surfaces as ErrConflict. Setting the status a requisition already has
// refreshes updated_at but writes no audit entry.
func (s *Service) UpdateStatus(ctx context.Context, input UpdateStatusInput) error {
	if !input.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, input.Status)
	}
	existing, err := s.repo.Get(ctx, input.ID)
	if err != nil {
		return err
	}
	now := s.now()
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		applied, err := tx.UpdateStatus(ctx, input.ID, input.Status, now, existing.UpdatedAt)
		if err != nil {
			return err
		}
		if !applied {
			return ErrConflict
		}
		if existing.Status == input.Status {
			return nil
		}
		actor := input.ActorID
		if actor == nil {
			requester := existing.RequestedBy
			actor = &requester
		}
		return tx.AppendAudit(ctx, shared.AuditLog{
			ActorID:     actor,
			Action:      shared.ActionUpdateStatus,
			Description: fmt.Sprintf("คำร้อง %s ถูกเปลี่ยนสถานะเป็น '%s'", existing.Code, input.Status.Label()),
			CreatedAt:   now,
		})
	})
}

// Delete removes a requisition and its lines. The DELETE_REQUEST audit entry
// is written first, inside the same transaction, because the document code is
// unrecoverable once the row is gone.
func (s *Service) Delete(ctx context.Context, id int64, actorID *int64) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	now := s.now()
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.AppendAudit(ctx, shared.AuditLog{
			ActorID:     actorID,
			Action:      shared.ActionDeleteRequest,
			Description: fmt.Sprintf("ลบคำร้อง %s ออกจากระบบ", existing.Code),
			CreatedAt:   now,
		}); err != nil {
			return err
		}
		return tx.Delete(ctx, id)
	})
}

// List returns every requisition as a display projection, newest first.
func (s *Service) List(ctx context.Context) ([]Detail, error) {
	details, err := s.repo.ListDetails(ctx)
	if err != nil {
		return nil, err
	}
	if details == nil {
		details = []Detail{}
	}
	return details, nil
}

// Get returns one requisition as a display projection.
func (s *Service) Get(ctx context.Context, id int64) (Detail, error) {
	if id <= 0 {
		return Detail{}, fmt.Errorf("%w: invalid requisition id", ErrValidation)
	}
	return s.repo.GetDetail(ctx, id)
}
