package grpc

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const accountKey ctxKey = "account"

// protectedMethods require a bearer access token.
var protectedMethods = map[string]bool{
	FullMethod(MethodMe):        true,
	FullMethod(MethodUpdateMe):  true,
	FullMethod(MethodDeleteMe):  true,
	FullMethod(MethodListUsers): true,
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if !protectedMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.AuthorizationHeaderName); len(values) > 0 {
			accessToken, _ = common.BearerToken(values[0])
		}
	}
	if accessToken == "" {
		return nil, status.Error(codes.Unauthenticated, "not authenticated")
	}

	account, err := s.accounts.AuthenticateFromToken(ctx, accessToken)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return handler(context.WithValue(ctx, accountKey, account), req)
}

func accountFromContext(ctx context.Context) (*models.Account, error) {
	account, ok := ctx.Value(accountKey).(*models.Account)
	if !ok || account == nil {
		return nil, status.Error(codes.Unauthenticated, "not authenticated")
	}
	return account, nil
}
