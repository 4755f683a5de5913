package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"warbler/domain"
	"warbler/errs"
)

// registerFollowRoutes is a helper for registering all Follow routes.
func (s *Server) registerFollowRoutes(r *mux.Router) {
	// Start following another user.
	r.HandleFunc("/users/follow/{followed_id:[0-9]+}", s.requireAuth(s.handleCreateFollow)).Methods("POST")

	// Stop following a previously followed user.
	r.HandleFunc("/users/stop-following/{followed_id:[0-9]+}", s.requireAuth(s.handleDeleteFollow)).Methods("POST")
}

// handleCreateFollow handles the route "POST /users/follow/{followed_id}".
// It reads the followed user's ID from the url and creates a new Follow
// record with the authed user as the follower.
func (s *Server) handleCreateFollow(w http.ResponseWriter, r *http.Request) {
	var follow domain.Follow

	followedID, err := strconv.Atoi(mux.Vars(r)["followed_id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}
	follow.FollowedID = followedID

	follower := getUserFromContext(r.Context())
	follow.FollowerID = follower.ID

	if err := s.fs.Create(r.Context(), &follow); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(&follow); err != nil {
		errs.LogError(r, err)
	}
}

// handleDeleteFollow handles the route "POST /users/stop-following/{followed_id}".
// It reads the followed user's ID from the url and deletes the authed user's
// Follow record pointing at them.
func (s *Server) handleDeleteFollow(w http.ResponseWriter, r *http.Request) {
	var follow domain.Follow

	followedID, err := strconv.Atoi(mux.Vars(r)["followed_id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}
	follow.FollowedID = followedID

	follower := getUserFromContext(r.Context())
	follow.FollowerID = follower.ID

	if err := s.fs.Delete(r.Context(), &follow); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
