package service

import (
	"bytes"
	"fmt"
	"strings"

	"attendance/console/internal/payroll"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/pkg/errors"
)

// Statement renders pay statements. The core PDF fonts cannot draw Hangul,
// so labels are Korean only when a UTF-8 font file is configured.
type Statement struct {
	fontPath string
}

func NewStatement(fontPath string) *Statement {
	return &Statement{fontPath: fontPath}
}

type statementLabels struct {
	title, staff, month, wage, hours, base, weekly, gross, deductions, net, week string
}

var (
	koreanLabels = statementLabels{"급여 명세서", "직원", "귀속 월", "시급", "근무시간", "기본급", "주휴수당", "지급 합계", "공제", "실지급액", "주"}
	latinLabels  = statementLabels{"Pay statement", "Staff", "Month", "Hourly wage", "Hours", "Base pay", "Weekly holiday pay", "Gross pay", "Deductions", "Net pay", "Week"}
)

// Render draws the breakdown of one staff member.
func (s *Statement) Render(employeeID, staffName string, b payroll.Breakdown) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")

	family := "Helvetica"
	labels := latinLabels
	name := employeeID
	money := won
	if s.fontPath != "" {
		pdf.AddUTF8Font("statement", "", s.fontPath)
		family = "statement"
		labels = koreanLabels
		name = fmt.Sprintf("%s (%s)", staffName, employeeID)
		money = payroll.Won
	}

	pdf.AddPage()
	pdf.SetFont(family, "", 18)
	pdf.CellFormat(0, 12, labels.title, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(family, "", 11)
	line := func(label, value string) {
		pdf.CellFormat(60, 8, label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(0, 8, value, "1", 1, "R", false, 0, "")
	}

	line(labels.staff, name)
	line(labels.month, b.Month.String())
	line(labels.wage, money(b.HourlyWage))
	line(labels.hours, fmt.Sprintf("%.2f", b.TotalHours))
	pdf.Ln(4)
	line(labels.base, money(b.BasePay))
	line(labels.weekly, money(b.WeeklyHolidayPay))
	line(labels.gross, money(b.GrossPay))
	line(labels.deductions, money(b.Deductions))
	line(labels.net, money(b.NetPay))
	pdf.Ln(6)

	pdf.SetFont(family, "", 9)
	for _, w := range b.Weeks {
		pdf.CellFormat(60, 6, fmt.Sprintf("%s %s ~ %s", labels.week, w.Start, w.End), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.2f h", w.Hours), "1", 0, "R", false, 0, "")
		pdf.CellFormat(0, 6, money(w.HolidayPay), "1", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "rendering pay statement")
	}
	return buf.Bytes(), nil
}

// won formats without the Hangul suffix so the core fonts can draw it.
func won(v int64) string {
	return strings.TrimSuffix(payroll.Won(v), "원") + " KRW"
}
