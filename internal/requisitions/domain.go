package requisitions

import (
	"errors"
	"time"
)

// Kind distinguishes a plain stock issue from a damaged-item exchange.
type Kind string

const (
	KindIssue    Kind = "ISSUE"
	KindExchange Kind = "EXCHANGE"
)

// Valid reports whether the kind is a known value.
func (k Kind) Valid() bool {
	return k == KindIssue || k == KindExchange
}

// Status is the requisition lifecycle status.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Valid reports whether the status is a known value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Label returns the Thai display label shown to operators. Audit descriptions
// use the same wording.
func (s Status) Label() string {
	switch s {
	case StatusApproved:
		return "อนุมัติ"
	case StatusRejected:
		return "ปฏิเสธ"
	default:
		return "รออนุมัติ"
	}
}

// Requisition is the aggregate root for a linen request document. Code and
// status are system-assigned at creation; after that the status transition is
// the only legal header mutation.
type Requisition struct {
	ID           int64
	Code         string
	Kind         Kind
	RequestedBy  int64
	TargetWardID int64
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Items        []LineItem
}

// LineItem is one product+quantity entry within a requisition. The damage
// reason is expected for exchange requisitions but not enforced.
type LineItem struct {
	ID             int64
	RequisitionID  int64
	ProductID      int64
	Quantity       int
	DamageReasonID *int64
}

var (
	// ErrNotFound indicates the requisition does not exist.
	ErrNotFound = errors.New("requisitions: not found")
	// ErrValidation indicates invalid caller input.
	ErrValidation = errors.New("requisitions: invalid input")
	// ErrConflict indicates the record changed between read and write.
	ErrConflict = errors.New("requisitions: concurrent modification")

	// errCodeTaken signals a lost race on the document code unique index.
	errCodeTaken = errors.New("requisitions: document code already taken")
)
