package mediator

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Logging reports every dispatched request with its duration and outcome.
func Logging(log logrus.FieldLogger) Middleware {
	return func(ctx context.Context, req any, next Next) (any, error) {
		start := time.Now()
		res, err := next(ctx, req)

		entry := log.WithFields(logrus.Fields{
			"request":  fmt.Sprintf("%T", req),
			"duration": time.Since(start).String(),
		})
		if err != nil {
			entry.WithError(err).Debug("Request handler failed")
		} else {
			entry.Debug("Request handled")
		}

		return res, err
	}
}
