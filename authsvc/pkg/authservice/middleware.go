package authservice

import (
	"context"

	"github.com/go-kit/kit/log"
)

type Middleware func(Service) Service

func LoggingMiddleware(logger log.Logger) Middleware {
	return func(next Service) Service {
		return loggingMiddleware{logger, next}
	}
}

type loggingMiddleware struct {
	logger log.Logger
	next   Service
}

func (mw loggingMiddleware) Validate(ctx context.Context, username, password string) (id string, err error) {
	defer func() {
		mw.logger.Log("method", "Validate", "username", username, "err", err)
	}()
	return mw.next.Validate(ctx, username, password)
}
