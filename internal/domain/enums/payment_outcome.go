package enums

type PaymentOutcome string

const (
	PaymentOutcomePaid    PaymentOutcome = "paid"
	PaymentOutcomePending PaymentOutcome = "pending"
	PaymentOutcomeUnknown PaymentOutcome = "unknown"
)
