// Package schedule computes free appointment slots from a business's
// configured hours. All wall-clock math happens in a fixed UTC+5:30 offset;
// results are expressed as UTC instants.
package schedule

import (
	"time"

	"github.com/queueflow/queueflow-api/internal/model"
)

// IST is the fixed business-local offset. This is deliberately not a tzdata
// lookup: the offset never changes.
var IST = time.FixedZone("IST", 5*3600+30*60)

// CandidateSlots enumerates every 30-minute slot between the opening and
// closing time of the given calendar day, before any filtering. The day is
// identified by the IST calendar date of `day`. A closing time that is not a
// multiple of 30 minutes past opening yields a final slot running past it.
func CandidateSlots(hours model.BusinessHours, day time.Time) []model.TimeSlot {
	year, month, dom := day.In(IST).Date()

	var slots []model.TimeSlot
	for m := hours.StartMinutes(); m < hours.EndMinutes(); m += 30 {
		start := time.Date(year, month, dom, m/60, m%60, 0, 0, IST).UTC()
		slots = append(slots, model.TimeSlot{
			StartTime: start,
			EndTime:   start.Add(model.SlotDuration),
		})
	}
	return slots
}

// AvailableSlots filters the candidate slots of the given day:
//   - a slot whose start coincides with a booked start instant is dropped;
//   - when the requested day is today (IST calendar date), slots starting at
//     or before now are dropped.
//
// The result is ascending and possibly empty.
func AvailableSlots(hours model.BusinessHours, day time.Time, booked []time.Time, now time.Time) []model.TimeSlot {
	taken := make(map[int64]struct{}, len(booked))
	for _, b := range booked {
		taken[b.Unix()] = struct{}{}
	}

	nowIST := now.In(IST)
	dayIST := day.In(IST)
	today := sameDate(nowIST, dayIST)

	slots := make([]model.TimeSlot, 0)
	for _, slot := range CandidateSlots(hours, day) {
		if today && !slot.StartTime.After(now) {
			continue
		}
		if _, ok := taken[slot.StartTime.Unix()]; ok {
			continue
		}
		slots = append(slots, slot)
	}
	return slots
}

// DayBounds returns the UTC instants delimiting the IST calendar day of t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	year, month, dom := t.In(IST).Date()
	start := time.Date(year, month, dom, 0, 0, 0, 0, IST)
	return start.UTC(), start.Add(24 * time.Hour).UTC()
}

// StartOfDay returns IST midnight of the calendar day containing t, as a UTC
// instant. Used as the daily-counter reset boundary.
func StartOfDay(t time.Time) time.Time {
	start, _ := DayBounds(t)
	return start
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
