// Package httpapi exposes the account flows as a JSON HTTP API routed with
// gorilla/mux.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

const shutdownTimeout = 5 * time.Second

// Accounts is the part of services.AccountService the HTTP API needs.
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

type HTTPServer struct {
	address  string
	appName  string
	accounts Accounts
	logger   logging.Logger
}

func NewHTTPServer(a string, appName string, l logging.Logger, accounts Accounts) (*HTTPServer, error) {
	if accounts == nil {
		return nil, errors.New("accounts service is required")
	}
	return &HTTPServer{
		address:  a,
		appName:  appName,
		logger:   l.With("module", "http_server"),
		accounts: accounts,
	}, nil
}

// Run listens on the configured address and serves until ctx is done.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve handles requests on lis until ctx is done, then shuts down,
// giving in-flight requests shutdownTimeout to finish.
func (s *HTTPServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Stopping HTTP server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				s.logger.Error(ctx, "HTTP shutdown failed", "error", err)
			}
		case <-stopped:
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
