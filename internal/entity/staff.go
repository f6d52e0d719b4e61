package entity

import (
	"github.com/uptrace/bun"
)

type Staff struct {
	bun.BaseModel `bun:"table:staff"`

	BasicEntity
	EmployeeID string  `json:"employee_id" bun:"employee_id"`
	FullName   string  `json:"full_name" bun:"full_name"`
	Password   *string `json:"-" bun:"password"`
	Role       string  `json:"role" bun:"role"`
	HourlyWage *int64  `json:"hourly_wage" bun:"hourly_wage"`
}
