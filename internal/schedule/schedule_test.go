package schedule

import (
	"testing"
	"time"

	"github.com/Velimir1992/parkbooking/internal/domain"
	"github.com/stretchr/testify/assert"
)

func iv(startHour, endHour int) domain.Interval {
	base := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	return domain.Interval{
		Start: base.Add(time.Duration(startHour) * time.Hour),
		End:   base.Add(time.Duration(endHour) * time.Hour),
	}
}

func TestOverlaps(t *testing.T) {
	testCases := []struct {
		name     string
		a, b     domain.Interval
		expected bool
	}{
		{name: "partial overlap", a: iv(10, 12), b: iv(11, 13), expected: true},
		{name: "contained", a: iv(10, 14), b: iv(11, 12), expected: true},
		{name: "identical", a: iv(10, 12), b: iv(10, 12), expected: true},
		{name: "touching end to start", a: iv(10, 11), b: iv(11, 12), expected: false},
		{name: "touching start to end", a: iv(11, 12), b: iv(10, 11), expected: false},
		{name: "disjoint", a: iv(8, 9), b: iv(11, 12), expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Overlaps(tc.a, tc.b))
			assert.Equal(t, tc.expected, Overlaps(tc.b, tc.a))
		})
	}
}

func TestIsFree(t *testing.T) {
	existing := []domain.Interval{iv(11, 13), iv(15, 16)}

	assert.False(t, IsFree(iv(10, 12), existing))
	assert.True(t, IsFree(iv(10, 11), existing))
	assert.True(t, IsFree(iv(13, 15), existing))
	assert.True(t, IsFree(iv(9, 10), nil))
}

func TestIsFree_IdempotentWithoutWrites(t *testing.T) {
	existing := []domain.Interval{iv(11, 13)}
	candidate := iv(12, 14)

	first := IsFree(candidate, existing)
	second := IsFree(candidate, existing)
	assert.Equal(t, first, second)
	assert.False(t, first)
}

func TestFirstConflict_ReportsConflictingInterval(t *testing.T) {
	existing := []domain.Interval{iv(8, 9), iv(11, 13)}

	conflict, found := FirstConflict(iv(12, 14), existing)
	assert.True(t, found)
	assert.Equal(t, iv(11, 13), conflict)

	_, found = FirstConflict(iv(9, 11), existing)
	assert.False(t, found)
}
