package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

func TestRank_FiltersZeroAvailability(t *testing.T) {
	ranked := Rank(domain.SuggestionSet{
		AlternativeDurations: []domain.DurationOption{
			{DurationMinutes: 90, AvailableCourtCount: 2},
			{DurationMinutes: 120, AvailableCourtCount: 0},
		},
		AlternativeTimeSlots: []domain.TimeSlotOption{
			{StartTime: "20:00", AvailableCourtCount: 0},
			{StartTime: "21:00", AvailableCourtCount: 1},
		},
	})

	assert.Len(t, ranked.AlternativeDurations, 1)
	assert.Equal(t, 90, ranked.AlternativeDurations[0].DurationMinutes)
	assert.Len(t, ranked.AlternativeTimeSlots, 1)
	assert.Equal(t, "21:00", ranked.AlternativeTimeSlots[0].StartTime.String())
}

func TestRank_SortsDurationsAscending(t *testing.T) {
	ranked := Rank(domain.SuggestionSet{
		AlternativeDurations: []domain.DurationOption{
			{DurationMinutes: 120, AvailableCourtCount: 1},
			{DurationMinutes: 60, AvailableCourtCount: 3},
			{DurationMinutes: 90, AvailableCourtCount: 2},
		},
	})

	assert.Equal(t, 60, ranked.AlternativeDurations[0].DurationMinutes)
	assert.Equal(t, 90, ranked.AlternativeDurations[1].DurationMinutes)
	assert.Equal(t, 120, ranked.AlternativeDurations[2].DurationMinutes)
}

func TestRank_SortsTimeSlotsByStart(t *testing.T) {
	ranked := Rank(domain.SuggestionSet{
		AlternativeTimeSlots: []domain.TimeSlotOption{
			{StartTime: "21:00", AvailableCourtCount: 1},
			{StartTime: "09:00", AvailableCourtCount: 1},
			{StartTime: "18:30", AvailableCourtCount: 1},
		},
	})

	assert.Equal(t, "09:00", ranked.AlternativeTimeSlots[0].StartTime.String())
	assert.Equal(t, "18:30", ranked.AlternativeTimeSlots[1].StartTime.String())
	assert.Equal(t, "21:00", ranked.AlternativeTimeSlots[2].StartTime.String())
}

func TestPreferred_DurationsBeforeTimeSlots(t *testing.T) {
	kind, ok := Preferred(domain.SuggestionSet{
		AlternativeDurations: []domain.DurationOption{{DurationMinutes: 90, AvailableCourtCount: 1}},
		AlternativeTimeSlots: []domain.TimeSlotOption{{StartTime: "21:00", AvailableCourtCount: 1}},
	})

	assert.True(t, ok)
	assert.Equal(t, KindDuration, kind)
}

func TestPreferred_TimeSlotsWhenNoDurations(t *testing.T) {
	kind, ok := Preferred(domain.SuggestionSet{
		AlternativeTimeSlots: []domain.TimeSlotOption{{StartTime: "21:00", AvailableCourtCount: 1}},
	})

	assert.True(t, ok)
	assert.Equal(t, KindTimeSlot, kind)
}

func TestPreferred_Empty(t *testing.T) {
	_, ok := Preferred(domain.SuggestionSet{})
	assert.False(t, ok)
}

func TestContains(t *testing.T) {
	set := domain.SuggestionSet{
		AlternativeDurations: []domain.DurationOption{{DurationMinutes: 90, AvailableCourtCount: 1}},
		AlternativeTimeSlots: []domain.TimeSlotOption{{StartTime: "21:00", AvailableCourtCount: 1}},
	}

	assert.True(t, ContainsDuration(set, 90))
	assert.False(t, ContainsDuration(set, 120))
	assert.True(t, ContainsTimeSlot(set, "21:00"))
	assert.False(t, ContainsTimeSlot(set, "20:00"))
}
