package domain

// Поддерживаемые способы оплаты
const (
	PaymentProviderCard = "card"
	PaymentProviderSBP  = "sbp"
	PaymentProviderSpot = "on_spot"
)

// KnownPaymentProviders возвращает список поддерживаемых способов оплаты
// Порядок фиксирован и совпадает с порядком отображения.
func KnownPaymentProviders() []PaymentProvider {
	return []PaymentProvider{
		{ID: PaymentProviderCard, Name: "Банковская карта"},
		{ID: PaymentProviderSBP, Name: "СБП"},
		{ID: PaymentProviderSpot, Name: "Оплата на месте"},
	}
}

// FindPaymentProvider ищет способ оплаты по идентификатору
func FindPaymentProvider(id string) (PaymentProvider, bool) {
	for _, p := range KnownPaymentProviders() {
		if p.ID == id {
			return p, true
		}
	}
	return PaymentProvider{}, false
}
