package requestdata

import (
	"context"
)

type ctxKey struct{}

// RequestData holds the authenticated subject resolved by the auth
// middleware: the identity provider's stable subject id plus profile claims.
type RequestData struct {
	UserID  string
	Email   string
	Name    string
	Picture string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, ctxKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if rd, ok := ctx.Value(ctxKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}
