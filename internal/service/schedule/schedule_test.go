package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queueflow/queueflow-api/internal/model"
)

func hours(startH, startM, endH, endM int) model.BusinessHours {
	return model.BusinessHours{
		StartHour:   startH,
		StartMinute: startM,
		EndHour:     endH,
		EndMinute:   endM,
	}
}

func TestCandidateSlotsCount(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, IST)

	tests := []struct {
		name  string
		hours model.BusinessHours
		want  int
	}{
		{"standard day", hours(9, 0, 17, 0), 16},
		{"single hour", hours(9, 0, 10, 0), 2},
		{"half hour", hours(9, 0, 9, 30), 1},
		{"uneven closing", hours(9, 0, 9, 45), 2},
		{"zero window", hours(9, 0, 9, 0), 0},
		{"inverted window", hours(17, 0, 9, 0), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, CandidateSlots(tt.hours, day), tt.want)
		})
	}
}

func TestCandidateSlotsUTCConversion(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, IST)

	slots := CandidateSlots(hours(9, 0, 10, 0), day)
	require.Len(t, slots, 2)

	// 09:00 IST is 03:30 UTC.
	assert.Equal(t, time.Date(2025, 3, 10, 3, 30, 0, 0, time.UTC), slots[0].StartTime)
	assert.Equal(t, time.Date(2025, 3, 10, 4, 0, 0, 0, time.UTC), slots[0].EndTime)
	assert.Equal(t, time.Date(2025, 3, 10, 4, 0, 0, 0, time.UTC), slots[1].StartTime)
	assert.Equal(t, time.UTC, slots[0].StartTime.Location())
}

func TestCandidateSlotsContiguous(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, IST)

	slots := CandidateSlots(hours(9, 0, 17, 0), day)
	for i := 1; i < len(slots); i++ {
		assert.Equal(t, slots[i-1].EndTime, slots[i].StartTime)
		assert.Equal(t, model.SlotDuration, slots[i].EndTime.Sub(slots[i].StartTime))
	}
}

func TestAvailableSlotsExcludesBooked(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, IST)
	now := time.Date(2025, 3, 9, 12, 0, 0, 0, IST)

	booked := []time.Time{
		time.Date(2025, 3, 10, 3, 30, 0, 0, time.UTC), // 09:00 IST
		time.Date(2025, 3, 10, 4, 30, 0, 0, time.UTC), // 10:00 IST
	}

	slots := AvailableSlots(hours(9, 0, 11, 0), day, booked, now)
	require.Len(t, slots, 2)
	assert.Equal(t, time.Date(2025, 3, 10, 4, 0, 0, 0, time.UTC), slots[0].StartTime)
	assert.Equal(t, time.Date(2025, 3, 10, 5, 0, 0, 0, time.UTC), slots[1].StartTime)
}

func TestAvailableSlotsTodayCutoff(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, IST)

	// 10:00 IST: the 09:00, 09:30 and 10:00 slots are all gone; 10:00
	// itself is excluded because a slot starting exactly now is not
	// bookable.
	now := time.Date(2025, 3, 10, 10, 0, 0, 0, IST)

	slots := AvailableSlots(hours(9, 0, 12, 0), day, nil, now)
	require.Len(t, slots, 3)
	assert.Equal(t, time.Date(2025, 3, 10, 5, 0, 0, 0, time.UTC), slots[0].StartTime) // 10:30 IST
}

func TestAvailableSlotsFutureDayIgnoresNow(t *testing.T) {
	day := time.Date(2025, 3, 11, 0, 0, 0, 0, IST)
	now := time.Date(2025, 3, 10, 23, 0, 0, 0, IST)

	slots := AvailableSlots(hours(9, 0, 17, 0), day, nil, now)
	assert.Len(t, slots, 16)
}

func TestAvailableSlotsAllBooked(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, IST)
	now := time.Date(2025, 3, 9, 12, 0, 0, 0, IST)

	h := hours(9, 0, 10, 0)
	var booked []time.Time
	for _, slot := range CandidateSlots(h, day) {
		booked = append(booked, slot.StartTime)
	}

	slots := AvailableSlots(h, day, booked, now)
	assert.NotNil(t, slots)
	assert.Empty(t, slots)
}

func TestDayBounds(t *testing.T) {
	// 22:00 UTC on March 9 is already March 10 in IST.
	at := time.Date(2025, 3, 9, 22, 0, 0, 0, time.UTC)

	from, to := DayBounds(at)
	assert.Equal(t, time.Date(2025, 3, 9, 18, 30, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2025, 3, 10, 18, 30, 0, 0, time.UTC), to)
	assert.Equal(t, 24*time.Hour, to.Sub(from))
}

func TestStartOfDayMatchesDayBounds(t *testing.T) {
	at := time.Date(2025, 6, 15, 4, 0, 0, 0, time.UTC)

	from, _ := DayBounds(at)
	assert.Equal(t, from, StartOfDay(at))
	assert.True(t, !StartOfDay(at).After(at))
}
