package email

import (
	"context"
	"fmt"

	"github.com/Velimir1992/parkbooking/internal/kafka"
)

type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.ReservationEvent) error {
	fmt.Printf("notify user %d: %s for spot %d, %s to %s\n",
		event.UserID, event.Type, event.SpotID,
		event.Start.Format("2006-01-02 15:04"), event.End.Format("2006-01-02 15:04"))
	return nil
}
