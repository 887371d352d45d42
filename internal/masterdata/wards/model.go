package wards

// Ward represents a hospital ward served by the central linen store.
type Ward struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	HospitalID   int64  `json:"hospital_id"`
	HospitalName string `json:"hospital_name,omitempty"`
	IsActive     bool   `json:"is_active"`
}
