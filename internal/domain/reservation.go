package domain

import "time"

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (i Interval) IsValid() bool {
	return i.Start.Before(i.End)
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// TimeSlot is a single bookable hour: the hour starting at Day+Hour.
type TimeSlot struct {
	Day  time.Time
	Hour int
}

func (s TimeSlot) Time() time.Time {
	return time.Date(s.Day.Year(), s.Day.Month(), s.Day.Day(), s.Hour, 0, 0, 0, s.Day.Location())
}

type Reservation struct {
	ID        int64     `json:"id"`
	SpotID    int64     `json:"spot_id"`
	UserID    int64     `json:"user_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	CreatedAt time.Time `json:"created_at"`
}

func (r Reservation) Interval() Interval {
	return Interval{Start: r.Start, End: r.End}
}

// Transaction records one confirmed payment. PaymentRef is the primary
// key, so retrying a confirmation for the same payment cannot record it
// twice. ReservationID points at the first reservation of the batch and
// AmountCents carries the full paid amount.
type Transaction struct {
	PaymentRef    string    `json:"payment_ref"`
	ReservationID int64     `json:"reservation_id"`
	AmountCents   int64     `json:"amount_cents"`
	Paid          bool      `json:"paid"`
	CreatedAt     time.Time `json:"created_at"`
}
