package linens

import (
	"errors"
	"time"
)

// StatusAvailable marks a linen that is in circulation. Discarded linens
// carry the damage reason label as their status instead.
const StatusAvailable = "Available"

// Activity types recorded on the movement log.
const (
	ActivityIssue  = "ISSUE"
	ActivityReturn = "RETURN"
	ActivityDamage = "DAMAGE"
)

// Linen is one RFID-tagged physical item.
type Linen struct {
	ID           int64
	RFIDTag      string
	ProductID    int64
	VendorID     *int64
	HospitalID   int64
	Status       string
	IsActive     bool
	RegisteredAt time.Time
	UpdatedAt    time.Time
}

// ActivityLog is one movement event for a linen.
type ActivityLog struct {
	ID         int64
	LinenID    int64
	ReaderID   *int64
	RoomID     *int64
	Activity   string
	RecordedAt time.Time
}

var (
	ErrNotFound   = errors.New("linens: not found")
	ErrDuplicate  = errors.New("linens: rfid tag already registered")
	ErrValidation = errors.New("linens: invalid input")
)
