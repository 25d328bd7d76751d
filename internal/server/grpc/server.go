// Package grpc exposes the account flows as the gophauth.AccountService gRPC
// service, with bearer-token authentication in a unary interceptor and the
// standard health service alongside.
package grpc

import (
	"context"
	"errors"
	"net"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Accounts is the part of services.AccountService the transport needs.
type Accounts interface {
	Register(ctx context.Context, email, password, fullName string) (*models.Account, error)
	Login(ctx context.Context, email, password string) (*models.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	AuthenticateFromToken(ctx context.Context, accessToken string) (*models.Account, error)
	UpdateProfile(ctx context.Context, account *models.Account, fullName, password *string) (*models.Account, error)
	DeleteAccount(ctx context.Context, account *models.Account) bool
	ListAccounts(ctx context.Context) ([]*models.Account, error)
	RequireAdmin(account *models.Account) error
}

type GRPCServer struct {
	address  string
	accounts Accounts
	logger   logging.Logger
	health   *health.Server
}

func NewGRPCServer(a string, l logging.Logger, accounts Accounts) (*GRPCServer, error) {
	if accounts == nil {
		return nil, errors.New("accounts service is required")
	}
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		accounts: accounts,
		health:   health.NewServer(),
	}, nil
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))

	srv.RegisterService(&AccountServiceDesc, s)
	healthpb.RegisterHealthServer(srv, s.health)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Stopping gRPC server...")
			s.health.Shutdown()
			srv.GracefulStop()
		case <-stopped:
		}
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}
