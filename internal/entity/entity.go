package entity

import "time"

// BasicEntity holds the audit columns every table carries.
type BasicEntity struct {
	ID        int        `json:"id" bun:"id,pk,autoincrement"`
	CreatedAt time.Time  `json:"created_at" bun:"created_at,nullzero,notnull,default:current_timestamp"`
	CreatedBy *int       `json:"created_by,omitempty" bun:"created_by"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" bun:"updated_at"`
	UpdatedBy *int       `json:"updated_by,omitempty" bun:"updated_by"`
	DeletedAt *time.Time `json:"-" bun:"deleted_at"`
	DeletedBy *int       `json:"-" bun:"deleted_by"`
}
