package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

type ctxKey string

const accountKey ctxKey = "account"

// authenticate resolves the bearer token of the request to an account and
// stores it in the request context.
func (s *HTTPServer) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := common.BearerToken(r.Header.Get(common.AuthorizationHeaderName))
		if !ok {
			writeUnauthorized(w, "not authenticated")
			return
		}

		account, err := s.accounts.AuthenticateFromToken(r.Context(), token)
		if err != nil {
			s.writeFlowError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), accountKey, account)))
	})
}

func accountFromRequest(r *http.Request) (*models.Account, bool) {
	account, ok := r.Context().Value(accountKey).(*models.Account)
	return account, ok && account != nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// requestLogger logs method, path, status and latency of every request.
// Headers and bodies are never logged.
func (s *HTTPServer) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
