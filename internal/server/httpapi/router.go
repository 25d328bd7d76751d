package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Router builds the route table:
//
//	GET    /               welcome message
//	POST   /auth/register  create an account (201)
//	POST   /auth/login     exchange credentials for a token pair
//	POST   /auth/refresh   exchange a refresh token for a new pair
//	GET    /users/me       current profile            (bearer)
//	PUT    /users/me       update name and/or password (bearer)
//	DELETE /users/me       delete the account         (bearer)
//	GET    /users/         list accounts              (bearer, admin)
func (s *HTTPServer) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestLogger)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.HandleFunc("/", s.Root).Methods(http.MethodGet)

	a := r.PathPrefix("/auth").Subrouter()
	a.HandleFunc("/register", s.Register).Methods(http.MethodPost)
	a.HandleFunc("/login", s.Login).Methods(http.MethodPost)
	a.HandleFunc("/refresh", s.Refresh).Methods(http.MethodPost)

	u := r.PathPrefix("/users").Subrouter()
	u.Use(s.authenticate)
	u.HandleFunc("/me", s.Me).Methods(http.MethodGet)
	u.HandleFunc("/me", s.UpdateMe).Methods(http.MethodPut)
	u.HandleFunc("/me", s.DeleteMe).Methods(http.MethodDelete)
	u.HandleFunc("/", s.ListUsers).Methods(http.MethodGet)
	u.HandleFunc("", s.ListUsers).Methods(http.MethodGet)

	return r
}
