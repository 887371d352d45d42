package requisitions

import "time"

// Detail is the read-side projection of a requisition with joined display
// names. References point outward only; nothing here links back to the
// aggregate, so the payload serializes without cycles.
type Detail struct {
	ID          int64        `json:"id"`
	Code        string       `json:"code"`
	Kind        Kind         `json:"kind"`
	Status      Status       `json:"status"`
	StatusLabel string       `json:"status_label"`
	RequestedBy PersonRef    `json:"requested_by"`
	TargetWard  WardRef      `json:"target_ward"`
	TotalQty    int          `json:"total_quantity"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Items       []ItemDetail `json:"items"`
}

// PersonRef identifies a user by id plus display name.
type PersonRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// WardRef identifies a ward by id plus display name.
type WardRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ItemDetail is one line of a Detail.
type ItemDetail struct {
	ID             int64  `json:"id"`
	ProductID      int64  `json:"product_id"`
	ProductName    string `json:"product_name"`
	CategoryName   string `json:"category_name,omitempty"`
	Quantity       int    `json:"quantity"`
	DamageReasonID *int64 `json:"damage_reason_id,omitempty"`
	DamageReason   string `json:"damage_reason,omitempty"`
}

// Created is the response body for a freshly created requisition.
type Created struct {
	ID           int64         `json:"id"`
	Code         string        `json:"code"`
	Kind         Kind          `json:"kind"`
	Status       Status        `json:"status"`
	StatusLabel  string        `json:"status_label"`
	RequestedBy  int64         `json:"requested_by_user_id"`
	TargetWardID int64         `json:"target_ward_id"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	Items        []CreatedItem `json:"items"`
}

// CreatedItem is one line of a Created response.
type CreatedItem struct {
	ID             int64  `json:"id"`
	ProductID      int64  `json:"product_id"`
	Quantity       int    `json:"quantity"`
	DamageReasonID *int64 `json:"damage_reason_id,omitempty"`
}

func toCreated(req Requisition) Created {
	out := Created{
		ID:           req.ID,
		Code:         req.Code,
		Kind:         req.Kind,
		Status:       req.Status,
		StatusLabel:  req.Status.Label(),
		RequestedBy:  req.RequestedBy,
		TargetWardID: req.TargetWardID,
		CreatedAt:    req.CreatedAt,
		UpdatedAt:    req.UpdatedAt,
		Items:        make([]CreatedItem, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		out.Items = append(out.Items, CreatedItem{
			ID:             item.ID,
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			DamageReasonID: item.DamageReasonID,
		})
	}
	return out
}
