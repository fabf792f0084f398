package main

import (
	"encoding/json"
	"net/http"

	"bizsync/internal/constants"
	apperrors "bizsync/internal/errors"
	"bizsync/internal/features"
	"bizsync/internal/models"
	"bizsync/internal/privacy"
	"bizsync/internal/service"
	"bizsync/internal/validation"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type submitActionRequest struct {
	Type    models.ActionType `json:"type"`
	Payload json.RawMessage   `json:"payload"`
	URL     string            `json:"url"`
	Method  string            `json:"method"`
}

type setTokenRequest struct {
	Token string `json:"token"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{
		Error: apperrors.GetUserMessage(err),
		Code:  string(apperrors.GetCode(err)),
	})
}

// handleSubmitAction accepts a directory mutation. Online submissions are
// applied immediately when possible; everything else lands in the queue.
func (s *Server) handleSubmitAction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := validation.ValidateHTTPRequestSize(r, constants.MaxRequestBodyBytes); err != nil {
			s.writeError(w, http.StatusRequestEntityTooLarge, err)
			return
		}

		var req submitActionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, apperrors.NewValidationError("body", "", "request body must be valid JSON"))
			return
		}

		result, err := s.actions.Submit(r.Context(), req.Type, req.Payload, req.URL, req.Method)
		if err != nil {
			switch apperrors.GetCode(err) {
			case apperrors.ErrCodeValidationFailed, apperrors.ErrCodeInvalidInput:
				s.writeError(w, http.StatusBadRequest, err)
				return
			}
		}
		if result == nil {
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}

		switch result.Outcome {
		case models.OutcomeApplied:
			s.writeJSON(w, http.StatusOK, result)
		case models.OutcomeQueued:
			s.status.Refresh(r.Context())
			s.writeJSON(w, http.StatusAccepted, result)
		default:
			s.logger.WithFields(apperrors.FieldsFromError(err)).Error("Failed to submit action")
			s.writeError(w, http.StatusInternalServerError, err)
		}
	}
}

func (s *Server) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, s.status.Current())
	}
}

func (s *Server) handleSyncNow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := s.engine.SyncNow(r.Context())
		if err != nil {
			s.logger.WithFields(apperrors.FieldsFromError(err)).Error("Manual sync pass failed")
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}
		s.status.Refresh(r.Context())
		s.writeJSON(w, http.StatusOK, summary)
	}
}

func (s *Server) handleClearCache() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.db.Clear(r.Context()); err != nil {
			s.logger.WithFields(apperrors.FieldsFromError(err)).Error("Failed to clear local store")
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}
		s.status.Refresh(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleSetToken() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req setTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, apperrors.NewValidationError("body", "", "request body must be valid JSON"))
			return
		}
		if req.Token == "" {
			s.writeError(w, http.StatusBadRequest, apperrors.NewValidationError("token", "", "token must not be empty"))
			return
		}

		if err := s.db.SetAuthToken(r.Context(), req.Token); err != nil {
			s.logger.WithFields(apperrors.FieldsFromError(err)).Error("Failed to store auth token")
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}

		s.logger.WithFields(logrus.Fields{
			service.LogFieldOperation: "set_token",
			"token":                   privacy.MaskToken(req.Token),
		}).Info("Auth token updated")
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleListFeatures() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, features.GetGlobalManager().ListFlags())
	}
}

func (s *Server) handleListFailedActions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		failed, err := s.db.GetFailedActions(r.Context())
		if err != nil {
			s.logger.WithFields(apperrors.FieldsFromError(err)).Error("Failed to list failed actions")
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}
		s.writeJSON(w, http.StatusOK, failed)
	}
}

func (s *Server) handleRequeueFailedAction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		action, err := s.db.RequeueFailedAction(r.Context(), id)
		if err != nil {
			s.logger.WithFields(apperrors.FieldsFromError(err)).Error("Failed to requeue action")
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}
		if action == nil {
			s.writeError(w, http.StatusNotFound, apperrors.NewNotFoundError("failed action", id))
			return
		}

		s.status.Refresh(r.Context())
		s.writeJSON(w, http.StatusOK, action)
	}
}
