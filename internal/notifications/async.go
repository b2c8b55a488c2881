package notifications

import (
	"context"
	"errors"
	"log"
	"time"
)

// CallAsync runs a notification send in the background with its own deadline,
// so request handlers never block on the push gateway. Missing-token results
// are expected and not logged as failures.
func CallAsync(fn func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := fn(ctx); err != nil && !errors.Is(err, ErrNoTokens) {
			log.Printf("async notification failed: %v", err)
		}
	}()
}
