package helpers

import "context"

type clientKey struct{}

// ClientInfo describes the caller of a request.
type ClientInfo struct {
	IP        string
	UserAgent string
}

func WithClient(ctx context.Context, info ClientInfo) context.Context {
	return context.WithValue(ctx, clientKey{}, info)
}

func ClientFrom(ctx context.Context) (ClientInfo, bool) {
	info, ok := ctx.Value(clientKey{}).(ClientInfo)
	return info, ok
}
