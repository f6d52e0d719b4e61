package service

import (
	"bytes"
	"fmt"

	"attendance/console/internal/calendar"
	"attendance/console/internal/ledger"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const (
	ledgerSheet = "근무대장"
	weekSheet   = "주별 집계"
)

var weekdayLabels = [...]string{"일", "월", "화", "수", "목", "금", "토"}

// ExportDay is one row of the ledger export.
type ExportDay struct {
	Date     date.Date
	Status   ledger.Status
	Hours    float64
	CheckIn  string
	CheckOut string
	Verified bool
}

// LedgerExport is a month of one staff member. Days may extend past the
// month to complete its boundary weeks; only days of Month are listed.
type LedgerExport struct {
	EmployeeID string
	StaffName  string
	Month      calendar.Month
	Days       []ExportDay
}

// ExportLedger renders the ledger as an xlsx workbook with a daily sheet and
// a weekly summary sheet.
func ExportLedger(in LedgerExport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ledgerSheet); err != nil {
		return nil, errors.Wrap(err, "naming ledger sheet")
	}

	byDate := make(map[string]ExportDay, len(in.Days))
	for _, d := range in.Days {
		byDate[d.Date.String()] = d
	}

	title := fmt.Sprintf("%s %s (%s)", in.Month, in.StaffName, in.EmployeeID)
	f.SetCellValue(ledgerSheet, "A1", title)

	headers := []string{"날짜", "요일", "상태", "근무시간", "출근", "퇴근", "위치 확인"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		f.SetCellValue(ledgerSheet, cell, h)
	}

	rowNum := 3
	total := 0.0
	for day := 1; day <= in.Month.Days(); day++ {
		dt := in.Month.Date(day)
		d, ok := byDate[dt.String()]
		if !ok {
			d = ExportDay{Date: dt}
		}
		if d.Status.Working() {
			total += d.Hours
		}

		verified := ""
		if d.CheckIn != "" {
			verified = "X"
			if d.Verified {
				verified = "O"
			}
		}

		values := []interface{}{dt.String(), weekdayLabels[dt.Weekday()], d.Status.Label(), d.Hours, d.CheckIn, d.CheckOut, verified}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, rowNum)
			f.SetCellValue(ledgerSheet, cell, v)
		}
		rowNum++
	}
	f.SetCellValue(ledgerSheet, fmt.Sprintf("C%d", rowNum), "합계")
	f.SetCellValue(ledgerSheet, fmt.Sprintf("D%d", rowNum), total)

	if _, err := f.NewSheet(weekSheet); err != nil {
		return nil, errors.Wrap(err, "creating week sheet")
	}
	for i, h := range []string{"시작", "종료", "근무시간", "결근 포함"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(weekSheet, cell, h)
	}
	for i, b := range calendar.MonthBuckets(in.Month) {
		hours := 0.0
		absent := false
		for _, dt := range b.Dates() {
			d := byDate[dt.String()]
			switch d.Status {
			case ledger.Normal:
				hours += d.Hours
			case ledger.Absence:
				absent = true
			case ledger.Holiday:
			}
		}
		mark := ""
		if absent {
			mark = "Y"
		}
		for j, v := range []interface{}{b.Start.String(), b.End.String(), hours, mark} {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			f.SetCellValue(weekSheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, errors.Wrap(err, "writing workbook")
	}
	return buf.Bytes(), nil
}
