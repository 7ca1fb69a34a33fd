package grpc

import (
	"context"
	"strings"

	"github.com/fjod/storefront/internal/identity"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type TokenParser interface {
	Parse(token string) (*identity.Claims, error)
}

// AuthInterceptor puts the subject of a valid "authorization: Bearer <jwt>"
// metadata entry on the context. Calls without the entry continue as
// anonymous; a malformed or invalid token is rejected. A nil parser leaves
// every call anonymous.
func AuthInterceptor(parser TokenParser) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if parser == nil {
			return handler(ctx, req)
		}

		md, _ := metadata.FromIncomingContext(ctx)
		values := md.Get("authorization")
		if len(values) == 0 {
			return handler(ctx, req)
		}

		parts := strings.SplitN(values[0], " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return nil, status.Error(codes.Unauthenticated, "invalid authorization metadata format")
		}

		claims, err := parser.Parse(parts[1])
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}

		return handler(identity.WithUserID(ctx, claims.Subject), req)
	}
}
