package domain

import "time"

// AuditFields holds standard audit information for domain entities.
// CreatedBy carries the opaque actor ID supplied by the authentication layer.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}
