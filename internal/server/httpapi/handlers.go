package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/dto"
)

const maxBodyBytes = 1 << 20

func (s *HTTPServer) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: fmt.Sprintf("Welcome to %s!", s.appName)})
}

func (s *HTTPServer) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	account, err := s.accounts.Register(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		s.writeFlowError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.NewAccountResponse(account))
}

func (s *HTTPServer) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	pair, err := s.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeFlowError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewTokenResponse(pair))
}

func (s *HTTPServer) Refresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	pair, err := s.accounts.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		s.writeFlowError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewTokenResponse(pair))
}

func (s *HTTPServer) Me(w http.ResponseWriter, r *http.Request) {
	account, ok := accountFromRequest(r)
	if !ok {
		writeUnauthorized(w, "not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, dto.NewAccountResponse(account))
}

func (s *HTTPServer) UpdateMe(w http.ResponseWriter, r *http.Request) {
	account, ok := accountFromRequest(r)
	if !ok {
		writeUnauthorized(w, "not authenticated")
		return
	}
	var req dto.UpdateProfileRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	updated, err := s.accounts.UpdateProfile(r.Context(), account, req.FullName, req.Password)
	if err != nil {
		s.writeFlowError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewAccountResponse(updated))
}

func (s *HTTPServer) DeleteMe(w http.ResponseWriter, r *http.Request) {
	account, ok := accountFromRequest(r)
	if !ok {
		writeUnauthorized(w, "not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, dto.DeleteResponse{Deleted: s.accounts.DeleteAccount(r.Context(), account)})
}

func (s *HTTPServer) ListUsers(w http.ResponseWriter, r *http.Request) {
	account, ok := accountFromRequest(r)
	if !ok {
		writeUnauthorized(w, "not authenticated")
		return
	}
	if err := s.accounts.RequireAdmin(account); err != nil {
		s.writeFlowError(w, r, err)
		return
	}

	accounts, err := s.accounts.ListAccounts(r.Context())
	if err != nil {
		s.writeFlowError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewAccountList(accounts))
}

type validatable interface {
	Validate() error
}

// decodeRequest reads a JSON body into req and validates it. On failure the
// error response is already written and false is returned.
func decodeRequest(w http.ResponseWriter, r *http.Request, req validatable) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body")
		return false
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, dto.ErrorResponse{
			Detail: "validation failed",
			Fields: dto.FieldErrors(err),
		})
		return false
	}
	return true
}

// writeFlowError maps flow errors to HTTP statuses. An already registered
// email is a 400 like any other bad registration. Unrecognised errors are
// logged and reported as 500 without detail.
func (s *HTTPServer) writeFlowError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorUnauthorized):
		writeUnauthorized(w, common.Message(err, "unauthorized"))
	case errors.Is(err, common.ErrorForbidden):
		writeError(w, http.StatusForbidden, common.Message(err, "forbidden"))
	case errors.Is(err, common.ErrorConflict):
		writeError(w, http.StatusBadRequest, common.Message(err, "conflict"))
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, common.Message(err, "not found"))
	default:
		s.logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeUnauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeError(w, http.StatusUnauthorized, detail)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, dto.ErrorResponse{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
