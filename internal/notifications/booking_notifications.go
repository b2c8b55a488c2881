package notifications

import (
	"context"
	"errors"
	"fmt"

	"github.com/9ssi7/exponent"
)

type BookingEvent string

const (
	BookingRequested BookingEvent = "REQUESTED"
	BookingConfirmed BookingEvent = "CONFIRMED"
	BookingCancelled BookingEvent = "CANCELLED"
)

var ErrNoTokens = errors.New("no push tokens")

// TokenSource resolves Expo push tokens for users.
type TokenSource interface {
	TokensByUserIDs(ctx context.Context, userIDs []int64) (map[int64][]string, error)
}

// SendBookingNotification pushes a booking lifecycle update to every device
// the user has registered. Missing tokens are reported, not treated as a
// delivery failure.
func SendBookingNotification(ctx context.Context, push PushSender, tokenSource TokenSource, userID int64, event BookingEvent, bookingRef string) error {
	tokensMap, err := tokenSource.TokensByUserIDs(ctx, []int64{userID})
	if err != nil {
		return err
	}
	tokens := tokensMap[userID]
	if len(tokens) == 0 {
		return ErrNoTokens
	}

	var title, body string
	switch event {
	case BookingRequested:
		title = "New Booking Request"
		body = "A new booking is waiting for your confirmation"
	case BookingConfirmed:
		title = "Booking Confirmed"
		body = fmt.Sprintf("Your booking %s has been confirmed", bookingRef)
	case BookingCancelled:
		title = "Booking Cancelled"
		body = fmt.Sprintf("Booking %s has been cancelled", bookingRef)
	default:
		title = "Booking Update"
		body = fmt.Sprintf("Your booking %s has an update", bookingRef)
	}

	msgs := make([]*exponent.Message, 0, len(tokens))
	for _, t := range tokens {
		token := exponent.Token(t)
		msgs = append(msgs, &exponent.Message{
			To:    []*exponent.Token{&token},
			Title: title,
			Body:  body,
			Data: map[string]string{
				"type":       "booking",
				"event":      string(event),
				"bookingRef": bookingRef,
				"screen":     "my-bookings",
			},
		})
	}

	_, err = push.Publish(ctx, msgs)
	return err
}
