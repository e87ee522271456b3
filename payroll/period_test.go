package payroll_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/warp/payslip-engine/payroll"
)

func TestYearPeriod(t *testing.T) {
	p := payroll.YearPeriod(2013)
	assert.Equal(t, date(2013, 1, 1), p.Start)
	assert.Equal(t, at(2013, 12, 31, 23, 59, 59), p.End)
	assert.Equal(t, "[2013-01-01 00:00:00, 2013-12-31 23:59:59]", p.String())
}

func TestMonthPeriod(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		end   time.Time
	}{
		{2013, time.January, at(2013, 1, 31, 23, 59, 59)},
		{2013, time.February, at(2013, 2, 28, 23, 59, 59)},
		{2012, time.February, at(2012, 2, 29, 23, 59, 59)},
		{2013, time.April, at(2013, 4, 30, 23, 59, 59)},
		{2013, time.December, at(2013, 12, 31, 23, 59, 59)},
	}

	for _, tt := range tests {
		p := payroll.MonthPeriod(tt.year, tt.month)
		assert.Equal(t, date(tt.year, tt.month, 1), p.Start)
		assert.Equal(t, tt.end, p.End)
		assert.True(t, p.Within(payroll.YearPeriod(tt.year)))
	}
}

func TestPeriod_ContainsIsInclusive(t *testing.T) {
	p := payroll.MonthPeriod(2013, time.March)

	assert.True(t, p.Contains(p.Start))
	assert.True(t, p.Contains(p.End))
	assert.False(t, p.Contains(p.Start.Add(-time.Second)))
	assert.False(t, p.Contains(p.End.Add(time.Second)))
}

func TestPeriod_OverlapsAndClip(t *testing.T) {
	march := payroll.MonthPeriod(2013, time.March)
	window := payroll.Period{Start: date(2013, 1, 15), End: date(2013, 3, 1)}

	assert.True(t, window.Overlaps(march), "touching at a single instant overlaps")
	assert.Equal(t, payroll.Period{Start: date(2013, 3, 1), End: date(2013, 3, 1)}, window.Clip(march))

	before := payroll.Period{Start: date(2013, 1, 1), End: at(2013, 2, 28, 23, 59, 59)}
	assert.False(t, before.Overlaps(march))
	assert.True(t, before.Clip(march).IsEmpty())
}

func TestClampDate(t *testing.T) {
	ref := at(2000, 1, 1, 9, 30, 0)

	assert.Equal(t, at(2013, 2, 28, 9, 30, 0), payroll.ClampDate(2013, time.February, 31, ref))
	assert.Equal(t, at(2012, 2, 29, 9, 30, 0), payroll.ClampDate(2012, time.February, 30, ref))
	assert.Equal(t, at(2014, 1, 31, 9, 30, 0), payroll.ClampDate(2013, 13, 31, ref), "month overflow rolls the year")
	assert.Equal(t, at(2012, 12, 15, 9, 30, 0), payroll.ClampDate(2013, 0, 15, ref), "month underflow rolls back")
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 29, payroll.DaysIn(2012, time.February))
	assert.Equal(t, 28, payroll.DaysIn(1900, time.February))
	assert.Equal(t, 29, payroll.DaysIn(2000, time.February))
	assert.Equal(t, 31, payroll.DaysIn(2012, 13), "month 13 is January of the next year")
}

func TestNaive(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skip("tzdata not available")
	}

	// 23:30 UTC on Dec 31 is already January 1 in Paris.
	got := payroll.Naive(at(2012, 12, 31, 23, 30, 0), paris)
	assert.Equal(t, at(2013, 1, 1, 0, 30, 0), got)
	assert.Equal(t, time.UTC, got.Location())

	assert.Equal(t, at(2013, 5, 1, 8, 0, 0), payroll.Naive(at(2013, 5, 1, 8, 0, 0), nil))

	// Sub-second parts are dropped.
	frac := time.Date(2013, 1, 31, 23, 59, 59, 999_999_999, time.UTC)
	assert.Equal(t, at(2013, 1, 31, 23, 59, 59), payroll.Naive(frac, nil))
	assert.True(t, payroll.MonthPeriod(2013, time.January).Contains(payroll.Naive(frac, nil)))
}
