package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"warbler/domain"
	"warbler/errs"
)

// registerMessageRoutes is a helper for registering all Message routes.
func (s *Server) registerMessageRoutes(r *mux.Router) {
	// Get the authed user's home timeline.
	r.HandleFunc("/messages", s.requireAuth(s.handleGetFeed)).Methods("GET")

	// Post a new message.
	r.HandleFunc("/messages/new", s.requireAuth(s.handleCreateMessage)).Methods("POST")

	// Show a single message.
	r.HandleFunc("/messages/{id:[0-9]+}", s.requireAuth(s.handleGetMessage)).Methods("GET")

	// Delete an existing message.
	r.HandleFunc("/messages/{id:[0-9]+}/delete", s.requireAuth(s.handleDeleteMessage)).Methods("DELETE")
}

// handleGetFeed handles the route "GET /messages".
// It returns the messages of the authed user and of everyone they follow,
// newest first.
func (s *Server) handleGetFeed(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r.Context())

	feed, err := s.ms.FeedByUserID(user.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(feed); err != nil {
		errs.LogError(r, err)
	}
}

// handleCreateMessage handles the route "POST /messages/new".
// It reads the message text from the json body and creates a new Message
// record owned by the authed user.
func (s *Server) handleCreateMessage(w http.ResponseWriter, r *http.Request) {
	// Parse the request's json body into a Message object.
	var message domain.Message
	if err := json.NewDecoder(r.Body).Decode(&message); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}

	// Get the authed user's ID and set it as the new Message's UserID.
	user := getUserFromContext(r.Context())
	message.UserID = user.ID

	// Create a new Message database record.
	if err := s.ms.Create(r.Context(), &message); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	// Return the created Message.
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(message); err != nil {
		errs.LogError(r, err)
	}
}

// handleGetMessage handles the route "GET /messages/{id}".
// It displays a single message, its like count, and whether the authed user likes it.
func (s *Server) handleGetMessage(w http.ResponseWriter, r *http.Request) {
	// Parse the message ID from the url.
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}

	// Fetch the message from the database.
	message, err := s.ms.ByID(id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	message.LikeCount = len(message.Likes)
	user := getUserFromContext(r.Context())
	message.AuthLiked = s.ls.IsLiked(user.ID, message.ID)

	// Return the message.
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(&message); err != nil {
		errs.LogError(r, err)
	}
}

// handleDeleteMessage handles the route "DELETE /messages/{id}/delete".
// It deletes the message if it belongs to the authed user.
func (s *Server) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	// Parse the message ID from the url.
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}

	// Delete the message. The service rejects the request if the authed
	// user doesn't own the message.
	user := getUserFromContext(r.Context())
	if err := s.ms.Delete(r.Context(), &domain.Message{ID: id}, user.ID); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
