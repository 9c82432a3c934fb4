package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/resume-analyzer/internal/controller"
)

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 1 << 20

// workspaceResponse is returned when a workspace is created.
type workspaceResponse struct {
	ID       uuid.UUID           `json:"id"`
	Snapshot controller.Snapshot `json:"snapshot"`
}

// workspace resolves the {id} path value.
func (s *Server) workspace(r *http.Request) (*Workspace, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return nil, ErrWorkspaceNotFound
	}
	return s.registry.Get(id)
}

// decodeJSON reads a JSON body into dst and validates it. An empty body
// leaves dst untouched when allowEmpty is set.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		if !(allowEmpty && errors.Is(err, io.EOF)) {
			return &ErrValidation{Field: "body", Message: "invalid JSON"}
		}
	}
	if err := s.validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

// snapshotResponse writes the workspace snapshot with status.
func (s *Server) snapshotResponse(w http.ResponseWriter, ws *Workspace, status int) {
	s.jsonResponse(w, status, ws.Controller.Snapshot())
}
