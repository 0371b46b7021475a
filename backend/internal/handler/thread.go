package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/itchan-dev/boardstore/shared/api"
	"github.com/itchan-dev/boardstore/shared/domain"
	"github.com/itchan-dev/boardstore/shared/utils"
)

const reportedText = "reported"

func (h *Handler) CreateThread(w http.ResponseWriter, r *http.Request) {
	board := chi.URLParam(r, "board")

	var body api.CreateThreadRequest
	if err := utils.DecodeValidate(r, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	thread, err := h.thread.Create(r.Context(), domain.ThreadCreationData{
		Board:          board,
		Text:           body.Text,
		DeletePassword: body.DeletePassword,
	})
	if err != nil {
		writeServiceError(w, r, "Error saving thread", err)
		return
	}
	writeJSON(w, http.StatusOK, thread)
}

func (h *Handler) ListThreads(w http.ResponseWriter, r *http.Request) {
	board := chi.URLParam(r, "board")

	threads, err := h.thread.List(r.Context(), board, 0)
	if err != nil {
		writeServiceError(w, r, "Error fetching threads", err)
		return
	}
	writeJSON(w, http.StatusOK, threads)
}

func (h *Handler) DeleteThread(w http.ResponseWriter, r *http.Request) {
	var body api.DeleteThreadRequest
	if err := utils.DecodeRequest(r, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	outcome, err := h.thread.Delete(r.Context(), body.ThreadId, body.DeletePassword)
	if err != nil {
		writeServiceError(w, r, "Error deleting thread", err)
		return
	}
	writeText(w, outcome.String())
}

func (h *Handler) ReportThread(w http.ResponseWriter, r *http.Request) {
	var body api.ReportThreadRequest
	if err := utils.DecodeRequest(r, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.thread.Report(r.Context(), body.ThreadId); err != nil {
		writeServiceError(w, r, "Error reporting thread", err)
		return
	}
	writeText(w, reportedText)
}
