package hospitals

import "time"

// Hospital is one facility served by the linen store.
type Hospital struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Address     *string   `json:"address,omitempty"`
	ContactInfo *string   `json:"contact_info,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
