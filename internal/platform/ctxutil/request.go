package ctxutil

import (
	"context"
	"strings"
)

type requestDataKey struct{}

// RequestData carries the caller identity verified by the auth middleware.
// UserID is the identity provider's subject, used verbatim as users.id.
type RequestData struct {
	UserID    string
	Email     string
	FirstName string
	LastName  string
	Username  string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}

// UserID returns the authenticated user id, or "" when the request is anonymous.
func UserID(ctx context.Context) string {
	rd := GetRequestData(ctx)
	if rd == nil {
		return ""
	}
	return strings.TrimSpace(rd.UserID)
}
