package handler

import (
	"net/http"

	"github.com/itchan-dev/boardstore/shared/api"
	"github.com/itchan-dev/boardstore/shared/domain"
	"github.com/itchan-dev/boardstore/shared/utils"
)

// Reply routes carry the board in the path but address threads by id
// alone; the segment is not checked against the thread's board.

func (h *Handler) CreateReply(w http.ResponseWriter, r *http.Request) {
	var body api.CreateReplyRequest
	if err := utils.DecodeValidate(r, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	reply, found, err := h.reply.Create(r.Context(), domain.ReplyCreationData{
		ThreadId:       body.ThreadId,
		Text:           body.Text,
		DeletePassword: body.DeletePassword,
	})
	if err != nil {
		writeServiceError(w, r, "Error adding reply", err)
		return
	}
	if !found {
		writeJSON(w, http.StatusOK, api.EmptyResponse{})
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (h *Handler) GetThread(w http.ResponseWriter, r *http.Request) {
	threadId := r.URL.Query().Get("thread_id")

	thread, found, err := h.thread.Get(r.Context(), threadId)
	if err != nil {
		writeServiceError(w, r, "Error fetching thread", err)
		return
	}
	if !found {
		writeJSON(w, http.StatusOK, api.EmptyResponse{})
		return
	}
	writeJSON(w, http.StatusOK, thread)
}

func (h *Handler) DeleteReply(w http.ResponseWriter, r *http.Request) {
	var body api.DeleteReplyRequest
	if err := utils.DecodeRequest(r, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	outcome, err := h.reply.Redact(r.Context(), body.ThreadId, body.ReplyId, body.DeletePassword)
	if err != nil {
		writeServiceError(w, r, "Error deleting reply", err)
		return
	}
	writeText(w, outcome.String())
}

func (h *Handler) ReportReply(w http.ResponseWriter, r *http.Request) {
	var body api.ReportReplyRequest
	if err := utils.DecodeRequest(r, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.reply.Report(r.Context(), body.ThreadId, body.ReplyId); err != nil {
		writeServiceError(w, r, "Error reporting reply", err)
		return
	}
	writeText(w, reportedText)
}
