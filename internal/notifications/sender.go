package notifications

import (
	"context"

	"github.com/9ssi7/exponent"
)

// PushSender abstracts the push transport; the concrete adapter speaks to
// Expo through the exponent SDK.
type PushSender interface {
	Publish(ctx context.Context, msgs []*exponent.Message) ([]*exponent.MessageResponse, error)
}
