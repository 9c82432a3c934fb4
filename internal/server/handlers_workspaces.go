package server

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-analyzer/internal/controller"
	"github.com/jonathan/resume-analyzer/internal/ingestion"
	"github.com/jonathan/resume-analyzer/internal/server/middleware"
	"github.com/jonathan/resume-analyzer/internal/session"
	"github.com/jonathan/resume-analyzer/internal/types"
)

// maxUploadBytes bounds an uploaded résumé file.
const maxUploadBytes = 10 << 20

// jobPostingResponse is returned after a job posting import.
type jobPostingResponse struct {
	Posting  *ingestion.JobPosting `json:"posting"`
	Snapshot controller.Snapshot   `json:"snapshot"`
}

// handleCreateWorkspace creates a workspace. A bearer token, when present,
// restores the signed-in session; an invalid one leaves it signed out.
func (s *Server) handleCreateWorkspace(w http.ResponseWriter, r *http.Request) {
	store := session.NewStore(s.backend, s.cfg.ResetURL, s.log)
	if token := middleware.BearerToken(r); token != "" {
		if _, err := store.Restore(r.Context(), token); err != nil {
			s.log.Debug().Err(err).Msg("ignoring invalid session token")
		}
	}

	ctrl := controller.New(controller.Deps{
		Analyzer:    s.ai,
		Sessions:    store,
		Persistence: s.store,
		Logger:      s.log,
	}, s.cfg.Controller)

	ws := s.registry.Add(ctrl, store)
	s.jsonResponse(w, http.StatusCreated, workspaceResponse{ID: ws.ID, Snapshot: ctrl.Snapshot()})
}

func (s *Server) handleGetWorkspace(w http.ResponseWriter, r *http.Request) {
	ws, err := s.workspace(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.snapshotResponse(w, ws, http.StatusOK)
}

func (s *Server) handleDeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, ErrWorkspaceNotFound)
		return
	}
	if err := s.registry.Remove(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleWorkspaceEvents streams snapshots over Server-Sent Events.
func (s *Server) handleWorkspaceEvents(w http.ResponseWriter, r *http.Request) {
	ws, err := s.workspace(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := streamSnapshots(r.Context(), sse, ws, keepAliveInterval); err != nil {
		s.log.Debug().Err(err).Str("workspace_id", ws.ID.String()).Msg("event stream ended")
	}
}

func (s *Server) handleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	ws, err := s.workspace(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req types.DraftRequest
	if err := s.decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}

	if req.ResumeText != nil {
		ws.Controller.SubmitResume(*req.ResumeText)
	}
	if req.JobTitle != nil {
		ws.Controller.SetJobTitle(*req.JobTitle)
	}
	if req.JobDescription != nil {
		ws.Controller.SetJobDescription(*req.JobDescription)
	}
	s.snapshotResponse(w, ws, http.StatusOK)
}

// handleSubmitResume accepts a multipart "file" upload or a JSON body with
// pasted text.
func (s *Server) handleSubmitResume(w http.ResponseWriter, r *http.Request) {
	ws, err := s.workspace(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var req types.ResumeTextRequest
		if err := s.decodeJSON(w, r, &req, false); err != nil {
			s.writeError(w, r, err)
			return
		}
		ws.Controller.SubmitResume(req.Text)
		s.snapshotResponse(w, ws, http.StatusOK)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, &ErrValidation{Field: "file", Message: "required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.errorResponse(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		s.writeError(w, r, err)
		return
	}

	contentType := header.Header.Get("Content-Type")
	text, err := ingestion.ExtractResumeText(header.Filename, contentType, data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ws.Controller.SubmitResume(text)
	s.archiveUpload(ingestion.NewUpload(header.Filename, contentType, data, time.Now()), data)
	s.snapshotResponse(w, ws, http.StatusOK)
}

// archiveUpload stores the original file in the background. Failures are
// logged only.
func (s *Server) archiveUpload(upload ingestion.Upload, data []byte) {
	contentType := upload.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	s.background.Add(1)
	go func() {
		defer s.background.Done()

		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()

		key := upload.ArchiveKey()
		if err := s.archive.Put(ctx, key, contentType, data); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("failed to archive résumé upload")
			return
		}
		s.log.Debug().Str("key", key).Int("size", upload.Size).Msg("archived résumé upload")
	}()
}

func (s *Server) handleImportJobPosting(w http.ResponseWriter, r *http.Request) {
	ws, err := s.workspace(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req types.JobImportRequest
	if err := s.decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}

	posting, err := ingestion.ImportJobPosting(r.Context(), s.pages, req.URL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if posting.Title != "" {
		ws.Controller.SetJobTitle(posting.Title)
	}
	ws.Controller.SetJobDescription(posting.Description)
	s.jsonResponse(w, http.StatusOK, jobPostingResponse{Posting: posting, Snapshot: ws.Controller.Snapshot()})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	ws, err := s.workspace(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ws.Controller.Start()
	s.snapshotResponse(w, ws, http.StatusOK)
}

// handleAnalyze starts an attempt and returns immediately; progress and the
// outcome arrive on the event stream.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ws, err := s.workspace(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := ws.Controller.Analyze(context.WithoutCancel(r.Context())); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.snapshotResponse(w, ws, http.StatusAccepted)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	ws, err := s.workspace(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ws.Controller.Cancel()
	s.snapshotResponse(w, ws, http.StatusOK)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	ws, err := s.workspace(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ws.Controller.Reset()
	s.snapshotResponse(w, ws, http.StatusOK)
}

func (s *Server) handleDismissError(w http.ResponseWriter, r *http.Request) {
	ws, err := s.workspace(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ws.Controller.DismissError()
	s.snapshotResponse(w, ws, http.StatusOK)
}

// handleNavigate moves to the target state. A guarded target leaves the
// state unchanged and still returns the snapshot.
func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	ws, err := s.workspace(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req types.NavigateRequest
	if err := s.decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	target, err := types.ParseAppState(req.Target)
	if err != nil {
		s.writeError(w, r, &ErrValidation{Field: "target", Message: err.Error()})
		return
	}

	ws.Controller.Navigate(target)
	s.snapshotResponse(w, ws, http.StatusOK)
}

func (s *Server) handleOpenHistory(w http.ResponseWriter, r *http.Request) {
	ws, err := s.workspace(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	records, err := ws.Controller.OpenHistory(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if records == nil {
		records = []types.HistoryRecord{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"analyses": records})
}

func (s *Server) handleSelectHistory(w http.ResponseWriter, r *http.Request) {
	ws, err := s.workspace(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	id, err := uuid.Parse(r.PathValue("recordID"))
	if err != nil {
		s.writeError(w, r, ErrRecordNotFound)
		return
	}
	rec, ok := ws.Controller.HistoryEntry(id)
	if !ok {
		s.writeError(w, r, ErrRecordNotFound)
		return
	}

	ws.Controller.SelectHistoryEntry(rec)
	s.snapshotResponse(w, ws, http.StatusOK)
}
