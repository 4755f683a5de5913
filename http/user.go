package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"warbler/domain"
	"warbler/errs"
)

func (s *Server) registerUserRoutes(r *mux.Router) {
	// Search for users.
	r.HandleFunc("/users", s.requireAuth(s.handleGetUsers)).Methods("GET")

	// Get the profile data of a specific user.
	r.HandleFunc("/users/{user_id:[0-9]+}", s.requireAuth(s.handleGetProfile)).Methods("GET")

	// List who a user follows, who follows them, and what they like.
	r.HandleFunc("/users/{user_id:[0-9]+}/following", s.requireAuth(s.handleGetFollowing)).Methods("GET")
	r.HandleFunc("/users/{user_id:[0-9]+}/followers", s.requireAuth(s.handleGetFollowers)).Methods("GET")
	r.HandleFunc("/users/{user_id:[0-9]+}/likes", s.requireAuth(s.handleGetLikes)).Methods("GET")

	// Update the authed user's profile.
	r.HandleFunc("/users/profile", s.requireAuth(s.handleUpdateProfile)).Methods("PUT")

	// Delete the authed user's account.
	r.HandleFunc("/users/delete", s.requireAuth(s.handleDeleteUser)).Methods("DELETE")
}

// handleGetUsers handles the route "GET /users".
// It lists all users matching the search term in the "q" query parameter,
// or all users if no term is given.
func (s *Server) handleGetUsers(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")

	users, err := s.us.Search(term)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(users); err != nil {
		errs.LogError(r, err)
	}
}

// handleGetProfile handles the route "GET /users/{user_id}".
// It displays the requested user's profile data, messages and relationships.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	// Parse the User ID from the url.
	userID, err := strconv.Atoi(mux.Vars(r)["user_id"])
	if userID <= 0 || err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}

	// Fetch the user from the database.
	user, err := s.us.ByID(userID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	// Check if the authed user is following that user.
	authedUser := getUserFromContext(r.Context())
	if authedUser.ID != userID {
		user.AuthFollowing = s.us.IsFollowing(authedUser.ID, userID)
	}

	// Get the number of messages, followers and followeds of the user.
	if err := s.setUserAssociationCounts(user); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	// Return the user.
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(&user); err != nil {
		errs.LogError(r, err)
	}
}

// handleGetFollowing handles the route "GET /users/{user_id}/following".
// It lists the users whom the requested user is following.
func (s *Server) handleGetFollowing(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(mux.Vars(r)["user_id"])
	if userID <= 0 || err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}

	follows, err := s.fs.FollowedsByUserID(userID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(follows); err != nil {
		errs.LogError(r, err)
	}
}

// handleGetFollowers handles the route "GET /users/{user_id}/followers".
// It lists the users who follow the requested user.
func (s *Server) handleGetFollowers(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(mux.Vars(r)["user_id"])
	if userID <= 0 || err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}

	follows, err := s.fs.FollowersByUserID(userID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(follows); err != nil {
		errs.LogError(r, err)
	}
}

// handleGetLikes handles the route "GET /users/{user_id}/likes".
// It lists the messages the requested user has liked.
func (s *Server) handleGetLikes(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(mux.Vars(r)["user_id"])
	if userID <= 0 || err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}

	likes, err := s.ls.ByUserID(userID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(likes); err != nil {
		errs.LogError(r, err)
	}
}

// handleUpdateProfile handles the route "PUT /users/profile".
// It reads user data from the json body and updates the authed user's record.
// The user has to confirm their current password for the update to go through.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	// Parse the request's json body into a User object plus the password confirmation.
	var input struct {
		domain.User
		CurrentPassword string `json:"current_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid update data."))
		return
	}

	// Check if the authed user is allowed to update that user record.
	authedUser := getUserFromContext(r.Context())
	if authedUser.ID != input.User.ID {
		errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "You are not allowed to update this user."))
		return
	}

	// Update the authed user with the data in the User object.
	user := input.User
	if err := s.us.Update(r.Context(), &user, input.CurrentPassword); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	// Get the number of messages, followers and followeds of the user.
	if err := s.setUserAssociationCounts(&user); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	// Return the updated User.
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(user); err != nil {
		errs.LogError(r, err)
	}
}

// handleDeleteUser handles the route "DELETE /users/delete".
// It deletes the authed user's account, cascading to their messages and
// relationship edges, and destroys the session.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	authedUser := getUserFromContext(r.Context())

	if err := s.us.Delete(r.Context(), authedUser.ID); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	if err := s.signOut(w, r); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// setUserAssociationCounts takes a pointer to a user object, counts its
// followers, followeds and messages, and sets those numbers on the according fields.
func (s *Server) setUserAssociationCounts(user *domain.User) error {
	followerCount, err := s.us.CountFollowers(user.ID)
	if err != nil {
		return err
	}
	user.FollowerCount = followerCount

	followedCount, err := s.us.CountFolloweds(user.ID)
	if err != nil {
		return err
	}
	user.FollowedCount = followedCount

	messageCount, err := s.us.CountMessages(user.ID)
	if err != nil {
		return err
	}
	user.MessageCount = messageCount

	return nil
}
