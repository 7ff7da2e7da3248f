package domain

// StepID идентификатор шага мастера быстрого бронирования
type StepID string

const (
	StepClubSelection  StepID = "club_selection"
	StepDateTime       StepID = "date_time"
	StepCourtSelection StepID = "court_selection"
	StepConfirmation   StepID = "confirmation"
	StepPayment        StepID = "payment"
	StepFinal          StepID = "final_confirmation"
)

// StepDescriptor описание шага в плане мастера
// План вычисляется один раз при создании сессии и далее неизменен:
// смена выбора по ходу мастера меняет активный шаг, но не состав шагов.
type StepDescriptor struct {
	ID       StepID
	Label    string
	Required bool
}

// stepLabels пользовательские названия шагов
var stepLabels = map[StepID]string{
	StepClubSelection:  "Выбор клуба",
	StepDateTime:       "Дата и время",
	StepCourtSelection: "Выбор корта",
	StepConfirmation:   "Подтверждение",
	StepPayment:        "Оплата",
	StepFinal:          "Бронирование создано",
}

// NewStepDescriptor создает описание шага со стандартным названием
func NewStepDescriptor(id StepID, required bool) StepDescriptor {
	return StepDescriptor{
		ID:       id,
		Label:    stepLabels[id],
		Required: required,
	}
}
