package linens

import "time"

// Detail is the active-list projection with joined display names.
type Detail struct {
	ID           int64     `json:"id"`
	RFIDTag      string    `json:"rfid_code"`
	ProductID    int64     `json:"product_id"`
	ProductName  string    `json:"product_name"`
	CategoryName string    `json:"category_name,omitempty"`
	HospitalName string    `json:"hospital_name,omitempty"`
	Status       string    `json:"status"`
	RegisteredAt time.Time `json:"registered_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DiscardRecord is one row of the discard history feed.
type DiscardRecord struct {
	ID     int64  `json:"id"`
	Item   string `json:"item"`
	Reason string `json:"reason"`
	Time   string `json:"time"`
}

// DeleteRecord is one row of the permanent-delete history feed, sourced
// from the audit trail because the linen row itself is gone.
type DeleteRecord struct {
	ID   int64  `json:"id"`
	Item string `json:"item"`
	Time string `json:"time"`
}

// MonitorEntry is one row of the realtime monitor feed.
type MonitorEntry struct {
	RFIDTag     string `json:"rfid"`
	ProductName string `json:"product_name"`
	Location    string `json:"location"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
}

const feedTimeLayout = "02/01/06 15:04"

// locationFor derives the display location from the linen status. There is
// no location table yet, so the monitor infers the zone.
func locationFor(status string) string {
	if status == StatusAvailable {
		return "คลังผ้าสะอาด (Clean Stock)"
	}
	return "ห้องคัดแยกชำรุด"
}
