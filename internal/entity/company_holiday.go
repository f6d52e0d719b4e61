package entity

import (
	"time"

	"github.com/uptrace/bun"
)

type CompanyHoliday struct {
	bun.BaseModel `bun:"table:company_holiday"`

	BasicEntity
	HolidayDate time.Time `json:"holiday_date" bun:"holiday_date,type:date"`
	Description string    `json:"description" bun:"description"`
}
