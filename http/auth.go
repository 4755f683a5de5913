package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"warbler/domain"
	"warbler/errs"
)

func (s *Server) registerAuthRoutes(r *mux.Router) {
	r.HandleFunc("/signup", s.handleSignup).Methods("POST")
	r.HandleFunc("/login", s.handleLogin).Methods("POST")
	r.HandleFunc("/logout", s.requireAuth(s.handleLogout)).Methods("POST")
	r.HandleFunc("/home", s.handleHome).Methods("GET")
}

// handleSignup handles the route "POST /signup".
// It creates a new user record from the json body and signs the user in.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	// Parse the request's json body into a User object.
	var user domain.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}

	// Create a new User database record.
	if err := s.us.Create(r.Context(), &user); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	// Put the new user's id into the session.
	if err := s.signIn(w, r, &user); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	// Return the created user.
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(&user); err != nil {
		errs.LogError(r, err)
	}
}

// handleLogin handles the route "POST /login".
// It authenticates the submitted credentials and signs the user in.
// Unknown usernames and wrong passwords produce one and the same response.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}

	user, err := s.us.Authenticate(creds.Username, creds.Password)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	if err := s.signIn(w, r, user); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(user); err != nil {
		errs.LogError(r, err)
	}
}

// handleLogout handles the route "POST /logout".
// It destroys the requesting user's session.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.signOut(w, r); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	response := map[string]string{"message": "successfully logged out"}
	if err := json.NewEncoder(w).Encode(&response); err != nil {
		errs.LogError(r, err)
	}
}

// handleHome handles the route "GET /home". It's the landing spot for
// anonymous requests to routes that require authentication.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{"message": "welcome home"}
	json.NewEncoder(w).Encode(&response)
}

// signIn stores the given user's id in the session cookie.
func (s *Server) signIn(w http.ResponseWriter, r *http.Request, user *domain.User) error {
	session, _ := s.sessions.Get(r, sessionName)
	session.Values[userIDKey] = user.ID
	return session.Save(r, w)
}

// signOut drops the user's id from the session and expires the cookie.
func (s *Server) signOut(w http.ResponseWriter, r *http.Request) error {
	session, _ := s.sessions.Get(r, sessionName)
	delete(session.Values, userIDKey)
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

// The checkUser middleware resolves the session's user id to a full User
// record and puts it into the request context. Requests without a session,
// or with a stale one, pass through anonymously.
func (s *Server) checkUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := s.sessions.Get(r, sessionName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		id, ok := session.Values[userIDKey].(int)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		user, err := s.us.ByID(id)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		r = r.WithContext(setUserInContext(r.Context(), user))
		next.ServeHTTP(w, r)
	})
}

// requireAuth wraps handlers that must only run for authenticated users.
// It assumes the checkUser middleware has already run.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := getUserFromContext(r.Context())
		if user == nil {
			http.Redirect(w, r, "/home", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	}
}
