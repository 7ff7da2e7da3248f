package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

func stepIDs(steps []domain.StepDescriptor) []domain.StepID {
	ids := make([]domain.StepID, 0, len(steps))
	for _, s := range steps {
		ids = append(ids, s.ID)
	}
	return ids
}

func TestPlan_NoPreselection(t *testing.T) {
	steps := Plan(Preselected{})

	assert.Equal(t, []domain.StepID{
		domain.StepClubSelection,
		domain.StepDateTime,
		domain.StepCourtSelection,
		domain.StepConfirmation,
		domain.StepPayment,
		domain.StepFinal,
	}, stepIDs(steps))
}

func TestPlan_ClubPreselected(t *testing.T) {
	clubID := int64(7)
	steps := Plan(Preselected{ClubID: &clubID})

	ids := stepIDs(steps)
	assert.NotContains(t, ids, domain.StepClubSelection)
	assert.Equal(t, domain.StepDateTime, ids[0])
}

func TestPlan_ClubAndDateTimePreselected(t *testing.T) {
	clubID := int64(7)
	start, err := types.NewTimeStringFromString("19:00")
	require.NoError(t, err)

	steps := Plan(Preselected{
		ClubID: &clubID,
		DateTime: &PreselectedDateTime{
			Date:            time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC),
			StartTime:       start,
			DurationMinutes: 60,
		},
	})

	assert.Equal(t, []domain.StepID{
		domain.StepCourtSelection,
		domain.StepConfirmation,
		domain.StepPayment,
		domain.StepFinal,
	}, stepIDs(steps))
}

func TestPlan_EverythingPreselected(t *testing.T) {
	clubID := int64(7)
	courtID := int64(3)
	start, err := types.NewTimeStringFromString("10:00")
	require.NoError(t, err)

	steps := Plan(Preselected{
		ClubID:  &clubID,
		CourtID: &courtID,
		DateTime: &PreselectedDateTime{
			Date:            time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC),
			StartTime:       start,
			DurationMinutes: 90,
		},
	})

	// Подтверждение, оплата и финал включаются всегда
	assert.Equal(t, []domain.StepID{
		domain.StepConfirmation,
		domain.StepPayment,
		domain.StepFinal,
	}, stepIDs(steps))
}

func TestPlan_CourtWithoutDateTime(t *testing.T) {
	clubID := int64(7)
	courtID := int64(3)

	// Предвыбор корта без даты/времени: шаг даты остается в плане
	steps := Plan(Preselected{ClubID: &clubID, CourtID: &courtID})

	ids := stepIDs(steps)
	assert.Contains(t, ids, domain.StepDateTime)
	assert.NotContains(t, ids, domain.StepCourtSelection)
}

func TestPlan_Deterministic(t *testing.T) {
	clubID := int64(1)
	pre := Preselected{ClubID: &clubID}

	assert.Equal(t, stepIDs(Plan(pre)), stepIDs(Plan(pre)))
}
