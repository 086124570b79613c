package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateOnly(t *testing.T) {
	ts := time.Date(2024, time.March, 15, 21, 30, 0, 0, time.FixedZone("EST", -5*3600))
	got := DateOnly(ts)
	// 21:30 EST is already March 16 in UTC
	assert.Equal(t, time.Date(2024, time.March, 16, 0, 0, 0, 0, time.UTC), got)
	assert.Equal(t, time.UTC, got.Location())
}

func TestSameISOWeek(t *testing.T) {
	mon := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	fri := time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)
	nextMon := time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC)

	assert.True(t, SameISOWeek(mon, fri))
	assert.False(t, SameISOWeek(fri, nextMon))

	// Sunday belongs to the week that started the prior Monday.
	sun := time.Date(2024, time.January, 7, 0, 0, 0, 0, time.UTC)
	assert.True(t, SameISOWeek(fri, sun))
	assert.False(t, SameISOWeek(sun, nextMon))
}
