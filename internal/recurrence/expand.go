package recurrence

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Rule identifies how an event repeats. The zero value means no repetition.
type Rule string

// Supported recurrence rules.
const (
	RuleNone           Rule = ""
	RuleWeekly         Rule = "weekly"
	RuleMonthly        Rule = "monthly"
	RuleMonthlyOrdinal Rule = "monthly_ordinal"
	RuleYearly         Rule = "yearly"
)

// ErrUnknownRule is returned when a rule string is not one of the supported kinds.
var ErrUnknownRule = errors.New("unknown recurrence rule")

// ParseRule validates a rule string.
func ParseRule(s string) (Rule, error) {
	switch r := Rule(strings.ToLower(strings.TrimSpace(s))); r {
	case RuleNone, RuleWeekly, RuleMonthly, RuleMonthlyOrdinal, RuleYearly:
		return r, nil
	default:
		return RuleNone, fmt.Errorf("%w: %q", ErrUnknownRule, s)
	}
}

// Ordinal selects which occurrence of a weekday within a month.
type Ordinal string

// Supported ordinals for monthly_ordinal rules.
const (
	OrdinalFirst  Ordinal = "first"
	OrdinalSecond Ordinal = "second"
	OrdinalThird  Ordinal = "third"
	OrdinalFourth Ordinal = "fourth"
	OrdinalLast   Ordinal = "last"
)

// ParseOrdinal validates an ordinal string, defaulting empty input to "first".
func ParseOrdinal(s string) (Ordinal, error) {
	switch o := Ordinal(strings.ToLower(strings.TrimSpace(s))); o {
	case "":
		return OrdinalFirst, nil
	case OrdinalFirst, OrdinalSecond, OrdinalThird, OrdinalFourth, OrdinalLast:
		return o, nil
	default:
		return "", fmt.Errorf("unknown ordinal %q", s)
	}
}

// Index returns the 1-based position for a counted ordinal.
func (o Ordinal) Index() (int, error) {
	switch o {
	case OrdinalFirst:
		return 1, nil
	case OrdinalSecond:
		return 2, nil
	case OrdinalThird:
		return 3, nil
	case OrdinalFourth:
		return 4, nil
	}
	return 0, fmt.Errorf("ordinal %q has no index", o)
}

var weekdays = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// ParseWeekday parses a lowercase English weekday name, defaulting empty
// input to Monday.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return time.Monday, nil
	}
	if wd, ok := weekdays[s]; ok {
		return wd, nil
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

// DefaultMaxOccurrences is the safety ceiling on expansion length.
const DefaultMaxOccurrences = 100

// Spec describes a recurrence to expand. It is transient input: it is never
// persisted past series materialization.
type Spec struct {
	Rule     Rule
	Interval int          // weeks between occurrences; only for RuleWeekly
	Ordinal  Ordinal      // only for RuleMonthlyOrdinal
	Weekday  time.Weekday // only for RuleMonthlyOrdinal
	Until    time.Time    // inclusive horizon; zero means start + 1 year

	// MaxOccurrences overrides DefaultMaxOccurrences when positive.
	MaxOccurrences int
}

// Expansion is the result of expanding a recurrence.
type Expansion struct {
	Dates []time.Time

	// Truncated is set when the occurrence cap stopped the expansion before
	// the horizon was reached.
	Truncated bool
}

// Expand produces the ordered occurrence dates for a recurrence, starting at
// start. The first occurrence is always start itself. Expansion stops once
// the next computed date falls strictly after the horizon (a date equal to
// the horizon is included) or the occurrence cap is reached.
func Expand(start time.Time, spec Spec) (Expansion, error) {
	start = Date(start)
	if spec.Rule == RuleNone || start.IsZero() {
		return Expansion{Dates: []time.Time{start}}, nil
	}

	switch spec.Rule {
	case RuleWeekly, RuleMonthly, RuleMonthlyOrdinal, RuleYearly:
	default:
		return Expansion{}, fmt.Errorf("%w: %q", ErrUnknownRule, spec.Rule)
	}

	until := Date(spec.Until)
	if spec.Until.IsZero() {
		until = start.AddDate(1, 0, 0)
	}

	interval := spec.Interval
	if interval <= 0 {
		interval = 1
	}
	if spec.Ordinal == "" {
		spec.Ordinal = OrdinalFirst
	}

	max := spec.MaxOccurrences
	if max <= 0 {
		max = DefaultMaxOccurrences
	}

	dates := []time.Time{start}
	current := start
	truncated := false
	for {
		if len(dates) >= max {
			// Check whether the horizon still held more occurrences.
			next, err := step(current, start, spec, interval)
			if err != nil {
				return Expansion{}, err
			}
			truncated = !next.After(until)
			break
		}

		next, err := step(current, start, spec, interval)
		if err != nil {
			return Expansion{}, err
		}
		if next.After(until) {
			break
		}
		dates = append(dates, next)
		current = next
	}

	return Expansion{Dates: dates, Truncated: truncated}, nil
}

// step computes the occurrence following current.
func step(current, start time.Time, spec Spec, interval int) (time.Time, error) {
	switch spec.Rule {
	case RuleWeekly:
		return AddWeeks(current, interval), nil
	case RuleMonthly:
		// Carry the start's day-of-month, not the one a short month landed on.
		return NextMonthOnDay(current, start.Day()), nil
	case RuleMonthlyOrdinal:
		next := time.Date(current.Year(), current.Month()+1, 1, 0, 0, 0, 0, time.UTC)
		return NthWeekdayOfMonth(next.Year(), next.Month(), spec.Ordinal, spec.Weekday)
	case RuleYearly:
		return AddYears(current, 1), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownRule, spec.Rule)
}
