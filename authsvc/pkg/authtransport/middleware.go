package authtransport

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/go-kit/kit/endpoint"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/ichigozero/todokit/backend/authsvc"
	"github.com/ichigozero/todokit/backend/authsvc/pkg/authservice"
)

// HTTPToContext moves the Authorization header from the request into
// the context, where NewAuthenticator picks it up.
func HTTPToContext() httptransport.RequestFunc {
	return func(ctx context.Context, r *http.Request) context.Context {
		header := r.Header.Get("Authorization")
		if header == "" {
			return ctx
		}
		return context.WithValue(ctx, authsvc.AuthHeaderContextKey, header)
	}
}

// NewAuthenticator gates an endpoint behind HTTP Basic authentication.
// On success the verified username is attached to the context; any
// failure surfaces as an error the transport maps to a uniform 401.
func NewAuthenticator(svc authservice.Service) endpoint.Middleware {
	return func(next endpoint.Endpoint) endpoint.Endpoint {
		return func(ctx context.Context, request interface{}) (response interface{}, err error) {
			header, ok := ctx.Value(authsvc.AuthHeaderContextKey).(string)
			if !ok {
				return nil, authsvc.ErrAuthHeaderMissing
			}

			username, password, ok := decodeBasicHeader(header)
			if !ok {
				return nil, authsvc.ErrAuthHeaderMissing
			}

			id, err := svc.Validate(ctx, username, password)
			if err != nil {
				return nil, err
			}

			ctx = context.WithValue(ctx, authsvc.UserIDContextKey, id)

			return next(ctx, request)
		}
	}
}

func decodeBasicHeader(header string) (username, password string, ok bool) {
	const prefix = "Basic "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", "", false
	}

	decoded, err := base64.StdEncoding.DecodeString(header[len(prefix):])
	if err != nil {
		return "", "", false
	}

	parts := strings.SplitN(string(decoded), ":", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}
