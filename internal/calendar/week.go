package calendar

import (
	"sort"
	"time"

	"github.com/Azure/go-autorest/autorest/date"
)

// Bucket is one Monday–Sunday pay week and the month whose reconciliation
// it is assigned to.
type Bucket struct {
	Start date.Date `json:"start"`
	End   date.Date `json:"end"`
	Month Month     `json:"month"`
}

// Resolve returns the pay week d belongs to.
//
// A week that lies inside one month belongs to that month. A week that
// straddles two months belongs to the month of its Saturday: when its Sunday
// is the 1st of the next month the week stays with the earlier month,
// otherwise the whole week carries over to the later month.
func Resolve(d date.Date) Bucket {
	day := Day(d.Year(), d.Month(), d.Day())
	sinceMonday := (int(day.Weekday()) + 6) % 7

	start := AddDays(day, -sinceMonday)
	return Bucket{
		Start: start,
		End:   AddDays(start, 6),
		Month: MonthOf(AddDays(start, 5)),
	}
}

// Contains reports whether d falls inside the week.
func (b Bucket) Contains(d date.Date) bool {
	day := Day(d.Year(), d.Month(), d.Day())
	return !day.Before(b.Start.Time) && !day.After(b.End.Time)
}

// Dates lists the seven days of the week.
func (b Bucket) Dates() []date.Date {
	out := make([]date.Date, 0, 7)
	for i := 0; i < 7; i++ {
		out = append(out, AddDays(b.Start, i))
	}
	return out
}

// Next is the following week.
func (b Bucket) Next() Bucket {
	return Resolve(AddDays(b.Start, 7))
}

// MonthBuckets returns every week assigned to m in chronological order.
func MonthBuckets(m Month) []Bucket {
	b := Resolve(m.First())
	if b.Month != m {
		b = b.Next()
	}

	var out []Bucket
	for ; b.Month == m; b = b.Next() {
		out = append(out, b)
	}
	return out
}

// Span is the first and last day covered by the weeks assigned to m. It can
// start in the previous month and end in the next one.
func Span(m Month) (from date.Date, to date.Date) {
	buckets := MonthBuckets(m)
	return buckets[0].Start, buckets[len(buckets)-1].End
}

// Group is a week together with the days of a dataset that fall in it.
// Weeks at the edges of a dataset may hold fewer than seven days.
type Group struct {
	Bucket Bucket
	Days   []date.Date
}

// Partial reports whether the group holds fewer than seven days.
func (g Group) Partial() bool {
	return len(g.Days) < 7
}

// GroupDays groups days into weeks. Days are sorted and duplicates dropped.
func GroupDays(days []date.Date) []Group {
	sorted := make([]time.Time, 0, len(days))
	for _, d := range days {
		sorted = append(sorted, Day(d.Year(), d.Month(), d.Day()).Time)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	var out []Group
	for i, t := range sorted {
		if i > 0 && t.Equal(sorted[i-1]) {
			continue
		}
		d := date.Date{Time: t}
		if n := len(out); n > 0 && out[n-1].Bucket.Contains(d) {
			out[n-1].Days = append(out[n-1].Days, d)
			continue
		}
		out = append(out, Group{Bucket: Resolve(d), Days: []date.Date{d}})
	}
	return out
}
