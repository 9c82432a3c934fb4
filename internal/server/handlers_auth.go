package server

import (
	"net/http"

	"github.com/jonathan/resume-analyzer/internal/types"
)

// authFailed shows the failure on the workspace banner and answers with it.
func (s *Server) authFailed(w http.ResponseWriter, r *http.Request, ws *Workspace, err error) {
	ws.Controller.ShowAuthError(errorMessage(err))
	s.writeError(w, r, err)
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	ws, err := s.workspace(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req types.SignUpRequest
	if err := s.decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}

	sess, err := ws.Sessions.SignUp(r.Context(), req.FullName, req.Email, req.Password)
	if err != nil {
		s.authFailed(w, r, ws, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, types.NewAuthResponse(sess))
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	ws, err := s.workspace(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req types.SignInRequest
	if err := s.decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}

	sess, err := ws.Sessions.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		s.authFailed(w, r, ws, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, types.NewAuthResponse(sess))
}

// handleSignOut signs out; the controller resets to Idle on the event.
func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	ws, err := s.workspace(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := ws.Sessions.SignOut(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.snapshotResponse(w, ws, http.StatusOK)
}

func (s *Server) handlePasswordReset(w http.ResponseWriter, r *http.Request) {
	ws, err := s.workspace(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req types.PasswordResetRequest
	if err := s.decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := ws.Sessions.RequestPasswordReset(r.Context(), req.Email); err != nil {
		s.authFailed(w, r, ws, err)
		return
	}
	s.jsonResponse(w, http.StatusAccepted, map[string]string{
		"message": "If an account exists for that email, a reset link is on its way.",
	})
}

// handleRecover opens a recovery link and enters password-recovery mode.
func (s *Server) handleRecover(w http.ResponseWriter, r *http.Request) {
	ws, err := s.workspace(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req types.RecoverRequest
	if err := s.decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}

	if _, err := ws.Sessions.BeginRecovery(r.Context(), req.Token); err != nil {
		s.authFailed(w, r, ws, err)
		return
	}
	s.snapshotResponse(w, ws, http.StatusOK)
}

func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	ws, err := s.workspace(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req types.PasswordUpdateRequest
	if err := s.decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := ws.Sessions.ConfirmPasswordReset(r.Context(), req.Password); err != nil {
		s.authFailed(w, r, ws, err)
		return
	}
	s.snapshotResponse(w, ws, http.StatusOK)
}
