package server

import (
	"net/http"
	"strings"

	"github.com/jonathan/resume-analyzer/internal/analysis"
	"github.com/jonathan/resume-analyzer/internal/llm"
	"github.com/jonathan/resume-analyzer/internal/server/middleware"
	"github.com/jonathan/resume-analyzer/internal/types"
)

// handleSpeech returns the spoken rendition of the body text, or of the
// voice briefing when no text is given. Synthesis failures answer 204.
func (s *Server) handleSpeech(w http.ResponseWriter, r *http.Request) {
	ws, err := s.workspace(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req types.SpeechRequest
	if err := s.decodeJSON(w, r, &req, true); err != nil {
		s.writeError(w, r, err)
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		snap := ws.Controller.Snapshot()
		if !snap.HasResult() {
			s.writeError(w, r, &ErrValidation{Field: "text", Message: "required without an analysis result"})
			return
		}
		text = snap.AnalysisResult.VoiceBriefingText
		if text == "" {
			text = analysis.Briefing(*snap.AnalysisResult, snap.Draft.JobTitle)
		}
	}

	if !ws.speechBusy.CompareAndSwap(false, true) {
		s.writeError(w, r, ErrSpeechBusy)
		return
	}
	defer ws.speechBusy.Store(false)

	pcm, err := s.ai.SynthesizeSpeech(r.Context(), text)
	if err != nil {
		s.log.Warn().Err(err).Str("workspace_id", ws.ID.String()).Msg("speech synthesis failed")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(llm.PCMToWAV(pcm, llm.SpeechSampleRate, 1)); err != nil {
		s.log.Debug().Err(err).Msg("failed to write audio")
	}
}

// handleInterviewQuestion generates a question for the drafted job.
func (s *Server) handleInterviewQuestion(w http.ResponseWriter, r *http.Request) {
	ws, err := s.workspace(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	draft := ws.Controller.Snapshot().Draft
	if strings.TrimSpace(draft.JobTitle) == "" {
		s.writeError(w, r, &ErrValidation{Field: "job_title", Message: "required"})
		return
	}

	question := s.ai.GenerateInterviewQuestion(r.Context(), draft.JobTitle, draft.JobDescription)
	s.jsonResponse(w, http.StatusOK, types.InterviewQuestionResponse{Question: question})
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var req types.ContactMessageRequest
	if err := s.decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.store == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "contact form unavailable")
		return
	}

	if err := s.store.SaveContactMessage(r.Context(), req.Name, req.Email, req.Message); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, map[string]string{"status": "received"})
}

// handleListAnalyses lists the caller's saved analyses. It runs behind
// middleware.AuthMiddleware.
func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	sess, err := middleware.GetSession(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if s.store == nil {
		s.jsonResponse(w, http.StatusOK, map[string]any{"analyses": []types.HistoryRecord{}})
		return
	}

	records, err := s.store.ListAnalyses(r.Context(), sess)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if records == nil {
		records = []types.HistoryRecord{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"analyses": records})
}
