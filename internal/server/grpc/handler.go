package grpc

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/dto"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

func (s *GRPCServer) Register(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req dto.RegisterRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "Registration request")

	account, err := s.accounts.Register(ctx, req.Email, req.Password, req.FullName)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return encode(dto.NewAccountResponse(account))
}

func (s *GRPCServer) Login(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req dto.LoginRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}

	pair, err := s.accounts.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return encode(dto.NewTokenResponse(pair))
}

func (s *GRPCServer) Refresh(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req dto.RefreshRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}

	pair, err := s.accounts.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return encode(dto.NewTokenResponse(pair))
}

func (s *GRPCServer) Me(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	account, err := accountFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return encode(dto.NewAccountResponse(account))
}

func (s *GRPCServer) UpdateMe(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	account, err := accountFromContext(ctx)
	if err != nil {
		return nil, err
	}
	var req dto.UpdateProfileRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}

	updated, err := s.accounts.UpdateProfile(ctx, account, req.FullName, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return encode(dto.NewAccountResponse(updated))
}

func (s *GRPCServer) DeleteMe(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	account, err := accountFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return encode(dto.DeleteResponse{Deleted: s.accounts.DeleteAccount(ctx, account)})
}

func (s *GRPCServer) ListUsers(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	account, err := accountFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.RequireAdmin(account); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	accounts, err := s.accounts.ListAccounts(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return encode(dto.AccountListResponse{Users: dto.NewAccountList(accounts)})
}

type validatable interface {
	Validate() error
}

// decode maps a Struct onto a dto request through its JSON form and
// validates it.
func decode(in *structpb.Struct, out validatable) error {
	if in == nil {
		in = &structpb.Struct{}
	}
	b, err := protojson.Marshal(in)
	if err != nil {
		return status.Error(codes.InvalidArgument, "malformed request")
	}
	if err := json.Unmarshal(b, out); err != nil {
		return status.Error(codes.InvalidArgument, "malformed request")
	}
	if err := out.Validate(); err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return nil
}

func encode(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

// toStatus maps flow errors to gRPC codes. Anything unrecognised is logged
// and reported as Internal without detail.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, common.Message(err, "unauthorized"))
	case errors.Is(err, common.ErrorForbidden):
		return status.Error(codes.PermissionDenied, common.Message(err, "forbidden"))
	case errors.Is(err, common.ErrorConflict):
		return status.Error(codes.AlreadyExists, common.Message(err, "conflict"))
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, common.Message(err, "not found"))
	}
	s.logger.Error(ctx, "request failed", "error", err)
	return status.Error(codes.Internal, "internal error")
}
