package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/pkg/ptr"
)

func TestResolveForDuration_DefaultRate(t *testing.T) {
	// 12000 копеек/час за 90 минут = 18000
	assert.Equal(t, int64(18000), ResolveForDuration(nil, 12000, 90))
}

func TestResolveForDuration_SegmentRate(t *testing.T) {
	// Тариф сегмента имеет приоритет над базовым
	assert.Equal(t, int64(22500), ResolveForDuration(ptr.Ptr(int64(15000)), 12000, 90))
}

func TestResolveForDuration_RoundHalfUp(t *testing.T) {
	// 10000 / 60 * 50 = 8333.33... -> 8333
	assert.Equal(t, int64(8333), ResolveForDuration(nil, 10000, 50))
	// 10001 / 60 * 30 = 5000.5 -> 5001
	assert.Equal(t, int64(5001), ResolveForDuration(nil, 10001, 30))
}

func TestResolveForDuration_FullHour(t *testing.T) {
	assert.Equal(t, int64(12000), ResolveForDuration(nil, 12000, 60))
}

func TestEstimateCandidates_Empty(t *testing.T) {
	_, ok := EstimateCandidates(nil)
	assert.False(t, ok)
}

func TestEstimateCandidates_SinglePrice(t *testing.T) {
	est, ok := EstimateCandidates([]domain.CourtCandidate{
		{CourtID: 1, PriceCents: 12000},
		{CourtID: 2, PriceCents: 12000},
	})

	assert.True(t, ok)
	assert.Equal(t, int64(12000), est.ValueCents)
	// Диапазон отсутствует, когда все цены совпадают
	assert.Nil(t, est.Range)
}

func TestEstimateCandidates_PriceRange(t *testing.T) {
	est, ok := EstimateCandidates([]domain.CourtCandidate{
		{CourtID: 1, PriceCents: 10000},
		{CourtID: 2, PriceCents: 14000},
		{CourtID: 3, PriceCents: 13000},
	})

	assert.True(t, ok)
	// (10000 + 14000 + 13000) / 3 = 12333.33... -> 12333
	assert.Equal(t, int64(12333), est.ValueCents)
	if assert.NotNil(t, est.Range) {
		assert.Equal(t, int64(10000), est.Range.MinCents)
		assert.Equal(t, int64(14000), est.Range.MaxCents)
	}
}
