package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"warbler/domain"
	"warbler/errs"
)

// registerLikeRoutes is a helper for registering all Like routes.
func (s *Server) registerLikeRoutes(r *mux.Router) {
	// Toggle the authed user's like of a message. One endpoint covers both
	// directions - the effect is the negation of the edge's current presence.
	r.HandleFunc("/messages/{id:[0-9]+}/like", s.requireAuth(s.handleToggleLike)).Methods("POST")
}

// handleToggleLike handles the route "POST /messages/{id}/like".
// It reads the message ID from the url and flips the authed user's Like of
// that message: absent edges get created, present edges get removed.
func (s *Server) handleToggleLike(w http.ResponseWriter, r *http.Request) {
	// Parse the message ID from the url.
	messageID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}

	// Get the authed user's ID and set it as the Like's UserID.
	user := getUserFromContext(r.Context())
	like := domain.Like{
		UserID:    user.ID,
		MessageID: messageID,
	}

	// Flip the edge.
	liked, err := s.ls.Toggle(r.Context(), &like)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	// Report the state the toggle left behind.
	response := struct {
		Liked     bool `json:"liked"`
		MessageID int  `json:"message_id"`
	}{
		Liked:     liked,
		MessageID: messageID,
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(&response); err != nil {
		errs.LogError(r, err)
	}
}
