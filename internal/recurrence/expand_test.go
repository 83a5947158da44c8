package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExpand_None(t *testing.T) {
	start := date(2025, time.June, 1)

	exp, err := Expand(start, Spec{})
	require.NoError(t, err)
	assert.Equal(t, []time.Time{start}, exp.Dates)
	assert.False(t, exp.Truncated)
}

func TestExpand_UnknownRule(t *testing.T) {
	_, err := Expand(date(2025, time.June, 1), Spec{Rule: Rule("fortnightly")})
	require.ErrorIs(t, err, ErrUnknownRule)
}

func TestExpand_Weekly(t *testing.T) {
	tests := []struct {
		name     string
		interval int
	}{
		{name: "every week", interval: 1},
		{name: "every two weeks", interval: 2},
		{name: "zero interval defaults to one", interval: 0},
		{name: "negative interval defaults to one", interval: -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := date(2025, time.January, 6)
			exp, err := Expand(start, Spec{
				Rule:     RuleWeekly,
				Interval: tt.interval,
				Until:    date(2025, time.March, 31),
			})
			require.NoError(t, err)
			require.GreaterOrEqual(t, len(exp.Dates), 2)

			step := tt.interval
			if step <= 0 {
				step = 1
			}
			for i := 1; i < len(exp.Dates); i++ {
				gap := exp.Dates[i].Sub(exp.Dates[i-1])
				assert.Equal(t, time.Duration(7*step)*24*time.Hour, gap)
			}
		})
	}
}

func TestExpand_MonthlyClampsWithoutDrifting(t *testing.T) {
	// Starting on the 31st: short months clamp to their last day, but later
	// 31-day months must return to the 31st.
	exp, err := Expand(date(2025, time.January, 31), Spec{
		Rule:  RuleMonthly,
		Until: date(2025, time.April, 30),
	})
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		date(2025, time.January, 31),
		date(2025, time.February, 28),
		date(2025, time.March, 31),
		date(2025, time.April, 30),
	}, exp.Dates)
	assert.False(t, exp.Truncated)
}

func TestExpand_MonthlyLeapYear(t *testing.T) {
	exp, err := Expand(date(2024, time.January, 31), Spec{
		Rule:  RuleMonthly,
		Until: date(2024, time.March, 31),
	})
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		date(2024, time.January, 31),
		date(2024, time.February, 29),
		date(2024, time.March, 31),
	}, exp.Dates)
}

func TestExpand_MonthlyOrdinalLastFriday(t *testing.T) {
	exp, err := Expand(date(2025, time.January, 31), Spec{
		Rule:    RuleMonthlyOrdinal,
		Ordinal: OrdinalLast,
		Weekday: time.Friday,
		Until:   date(2025, time.June, 30),
	})
	require.NoError(t, err)
	require.Len(t, exp.Dates, 6)

	for _, d := range exp.Dates {
		assert.Equal(t, time.Friday, d.Weekday(), "date %s", d)
		// No Friday left in the month after this one.
		assert.NotEqual(t, d.Month(), d.AddDate(0, 0, 7).Month(), "date %s is not the last Friday", d)
	}
	assert.Equal(t, date(2025, time.February, 28), exp.Dates[1])
	assert.Equal(t, date(2025, time.May, 30), exp.Dates[4])
}

func TestExpand_MonthlyOrdinalFirstMonday(t *testing.T) {
	exp, err := Expand(date(2025, time.March, 3), Spec{
		Rule:    RuleMonthlyOrdinal,
		Ordinal: OrdinalFirst,
		Weekday: time.Monday,
		Until:   date(2025, time.May, 31),
	})
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		date(2025, time.March, 3),
		date(2025, time.April, 7),
		date(2025, time.May, 5),
	}, exp.Dates)
}

func TestExpand_Yearly(t *testing.T) {
	exp, err := Expand(date(2024, time.February, 29), Spec{
		Rule:  RuleYearly,
		Until: date(2028, time.March, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		date(2024, time.February, 29),
		date(2025, time.February, 28),
		date(2026, time.February, 28),
		date(2027, time.February, 28),
		date(2028, time.February, 28),
	}, exp.Dates)
}

func TestExpand_DefaultHorizonIsOneYear(t *testing.T) {
	start := date(2025, time.March, 10)
	exp, err := Expand(start, Spec{Rule: RuleYearly})
	require.NoError(t, err)
	// Start plus the anniversary one year out, which lands exactly on the horizon.
	assert.Equal(t, []time.Time{start, date(2026, time.March, 10)}, exp.Dates)
}

func TestExpand_HorizonBoundaryIncluded(t *testing.T) {
	exp, err := Expand(date(2025, time.January, 6), Spec{
		Rule:  RuleWeekly,
		Until: date(2025, time.January, 20),
	})
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		date(2025, time.January, 6),
		date(2025, time.January, 13),
		date(2025, time.January, 20),
	}, exp.Dates)
}

func TestExpand_CapTruncates(t *testing.T) {
	exp, err := Expand(date(2025, time.January, 6), Spec{
		Rule:  RuleWeekly,
		Until: date(2125, time.January, 1),
	})
	require.NoError(t, err)
	assert.Len(t, exp.Dates, DefaultMaxOccurrences)
	assert.True(t, exp.Truncated)
}

func TestExpand_CustomCap(t *testing.T) {
	exp, err := Expand(date(2025, time.January, 6), Spec{
		Rule:           RuleWeekly,
		Until:          date(2030, time.January, 1),
		MaxOccurrences: 10,
	})
	require.NoError(t, err)
	assert.Len(t, exp.Dates, 10)
	assert.True(t, exp.Truncated)
}

func TestExpand_CapNotTruncatedWhenHorizonReached(t *testing.T) {
	exp, err := Expand(date(2025, time.January, 6), Spec{
		Rule:           RuleWeekly,
		Until:          date(2025, time.January, 27),
		MaxOccurrences: 4,
	})
	require.NoError(t, err)
	assert.Len(t, exp.Dates, 4)
	assert.False(t, exp.Truncated)
}

func TestParseRule(t *testing.T) {
	r, err := ParseRule("Monthly_Ordinal")
	require.NoError(t, err)
	assert.Equal(t, RuleMonthlyOrdinal, r)

	r, err = ParseRule("")
	require.NoError(t, err)
	assert.Equal(t, RuleNone, r)

	_, err = ParseRule("daily")
	assert.ErrorIs(t, err, ErrUnknownRule)
}

func TestParseWeekday(t *testing.T) {
	wd, err := ParseWeekday("friday")
	require.NoError(t, err)
	assert.Equal(t, time.Friday, wd)

	wd, err = ParseWeekday("")
	require.NoError(t, err)
	assert.Equal(t, time.Monday, wd)

	_, err = ParseWeekday("fredag")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.June, 1), d)

	_, err = ParseDate("01/06/2025")
	var invalid *InvalidDateError
	assert.ErrorAs(t, err, &invalid)
}
