package slots

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Velimir1992/parkbooking/internal/domain"
)

// Slot labels come from the picker as "<date>-<hour>", where <date> is a
// weekday/month/day/year token ("Mon Jan 02 2006") and <hour> is an
// unpadded hour of day. The hour sits after the last dash; the date part
// itself contains no dashes.
const dateLayout = "Mon Jan 2 2006"

type ParseError struct {
	Labels []string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparseable slot labels: %s", strings.Join(e.Labels, ", "))
}

var ErrNoSlots = fmt.Errorf("no slots selected")

// Group parses raw slot labels and merges contiguous hours into maximal
// half-open intervals. Duplicate labels collapse to a single slot. Any
// unparseable label fails the whole call with a ParseError listing every
// bad entry, so a partially parsed selection never proceeds.
func Group(labels []string) ([]domain.Interval, error) {
	if len(labels) == 0 {
		return nil, ErrNoSlots
	}

	var bad []string
	seen := make(map[time.Time]struct{}, len(labels))
	starts := make([]time.Time, 0, len(labels))
	for _, label := range labels {
		slot, err := parseLabel(label)
		if err != nil {
			bad = append(bad, label)
			continue
		}
		t := slot.Time()
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		starts = append(starts, t)
	}
	if len(bad) > 0 {
		return nil, &ParseError{Labels: bad}
	}

	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })

	var intervals []domain.Interval
	runStart := starts[0]
	prev := starts[0]
	for _, t := range starts[1:] {
		if t.Equal(prev.Add(time.Hour)) {
			prev = t
			continue
		}
		intervals = append(intervals, domain.Interval{Start: runStart, End: prev.Add(time.Hour)})
		runStart = t
		prev = t
	}
	intervals = append(intervals, domain.Interval{Start: runStart, End: prev.Add(time.Hour)})
	return intervals, nil
}

func parseLabel(label string) (domain.TimeSlot, error) {
	idx := strings.LastIndex(label, "-")
	if idx <= 0 || idx == len(label)-1 {
		return domain.TimeSlot{}, fmt.Errorf("label %q: missing hour separator", label)
	}

	day, err := time.Parse(dateLayout, label[:idx])
	if err != nil {
		return domain.TimeSlot{}, fmt.Errorf("label %q: %w", label, err)
	}
	hour, err := strconv.Atoi(label[idx+1:])
	if err != nil {
		return domain.TimeSlot{}, fmt.Errorf("label %q: %w", label, err)
	}
	if hour < 0 || hour > 23 {
		return domain.TimeSlot{}, fmt.Errorf("label %q: hour %d out of range", label, hour)
	}
	return domain.TimeSlot{Day: day, Hour: hour}, nil
}
