package damagereasons

// Reason is one damage reason label (torn, stained, lost...).
type Reason struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
