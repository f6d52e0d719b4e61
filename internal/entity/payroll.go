package entity

import (
	"time"

	"attendance/console/internal/payroll"

	"github.com/uptrace/bun"
)

// Payroll is the last calculated breakdown of a staff member and month.
type Payroll struct {
	bun.BaseModel `bun:"table:payroll"`

	ID           int               `json:"id" bun:"id,pk,autoincrement"`
	StaffID      int               `json:"staff_id" bun:"staff_id"`
	Month        string            `json:"month" bun:"month"`
	GrossPay     int64             `json:"gross_pay" bun:"gross_pay"`
	Deductions   int64             `json:"deductions" bun:"deductions"`
	NetPay       int64             `json:"net_pay" bun:"net_pay"`
	Breakdown    payroll.Breakdown `json:"breakdown" bun:"breakdown,type:jsonb"`
	CalculatedAt time.Time         `json:"calculated_at" bun:"calculated_at"`
	CalculatedBy int               `json:"calculated_by" bun:"calculated_by"`
}
