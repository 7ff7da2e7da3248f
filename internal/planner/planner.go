package planner

import (
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// PreselectedDateTime предвыбранные дата/время/длительность
type PreselectedDateTime struct {
	Date            time.Time
	StartTime       types.TimeString
	DurationMinutes int
}

// Preselected входы мастера, уже выбранные вызывающей стороной
// Шаг, чей вход предвыбран, полностью исключается из плана - он не
// посещается, а не просто пропускается.
type Preselected struct {
	ClubID   *int64
	CourtID  *int64
	DateTime *PreselectedDateTime
}

// Plan вычисляет упорядоченный список шагов мастера
//
// Детерминированная чистая функция без I/O. Условные шаги (клуб, дата/время,
// корт) включаются только при отсутствии соответствующего предвыбора;
// подтверждение, оплата и финальный шаг включаются всегда, в фиксированном
// порядке после условных. План вычисляется один раз на сессию мастера и
// далее неизменен.
func Plan(pre Preselected) []domain.StepDescriptor {
	steps := make([]domain.StepDescriptor, 0, 6)

	if pre.ClubID == nil {
		steps = append(steps, domain.NewStepDescriptor(domain.StepClubSelection, true))
	}
	if pre.DateTime == nil {
		steps = append(steps, domain.NewStepDescriptor(domain.StepDateTime, true))
	}
	if pre.CourtID == nil {
		steps = append(steps, domain.NewStepDescriptor(domain.StepCourtSelection, true))
	}

	steps = append(steps,
		domain.NewStepDescriptor(domain.StepConfirmation, true),
		domain.NewStepDescriptor(domain.StepPayment, true),
		domain.NewStepDescriptor(domain.StepFinal, false),
	)

	return steps
}
