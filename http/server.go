package http

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"

	"warbler/domain"
)

const (
	// sessionName is the cookie name of the server-side session.
	sessionName = "warbler_session"
	// userIDKey is the fixed session key the authed user's id is stored under.
	userIDKey = "user_id"
)

// Server provides most of the http functionality of this app, namely routing,
// request handling, and middleware. It also performs authentication and
// authorization before handing things over to one of the crud services.
type Server struct {
	router   *mux.Router
	sessions *sessions.CookieStore
	us       domain.UserService
	ms       domain.MessageService
	fs       domain.FollowService
	ls       domain.LikeService
}

// NewServer returns a new instance of the server, registers all necessary
// routes and gives their handlers access to the app services passed in.
func NewServer(
	isProd bool,
	sessionSecret string,
	csrfKey string,
	us domain.UserService,
	ms domain.MessageService,
	fs domain.FollowService,
	ls domain.LikeService,
) *Server {

	// Set up the cookie session store backing the auth system. The cookie
	// only ever holds the authed user's id, signed with the session secret.
	store := sessions.NewCookieStore([]byte(sessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   isProd,
	}

	// Construct a new Server with a gorilla router and the services passed in.
	s := &Server{
		router:   mux.NewRouter(),
		sessions: store,
		us:       us,
		ms:       ms,
		fs:       fs,
		ls:       ls,
	}

	// Register routes of the auth system.
	s.registerAuthRoutes(s.router)

	// Register routes of the crud system.
	s.registerUserRoutes(s.router)
	s.registerMessageRoutes(s.router)
	s.registerFollowRoutes(s.router)
	s.registerLikeRoutes(s.router)

	// Set up middleware that needs to run on every request. CSRF protection
	// only runs in production, the session-less test client couldn't obtain
	// a token otherwise.
	s.router.Use(setContentTypeJSON, s.checkUser)
	if isProd {
		csrfMw := csrf.Protect([]byte(csrfKey), csrf.Path("/"))
		s.router.Use(csrfMw)
	}
	return s
}

// The setContentTypeJSON middleware sets the content type to "application/json".
func setContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// ServeHTTP makes the server usable as a handler, mostly by the test suite.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run starts to listen and serve on the specified port.
func (s *Server) Run(port int) {
	log.Fatal(http.ListenAndServe("localhost:"+strconv.Itoa(port), s.router))
}
