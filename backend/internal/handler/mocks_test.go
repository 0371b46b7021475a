package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/itchan-dev/boardstore/shared/config"
	"github.com/itchan-dev/boardstore/shared/domain"
)

type MockThreadService struct {
	MockCreate func(data domain.ThreadCreationData) (domain.Thread, error)
	MockList   func(board domain.BoardName, limit int) ([]domain.PublicThread, error)
	MockGet    func(id string) (domain.PublicThread, bool, error)
	MockDelete func(id string, password domain.Password) (domain.Outcome, error)
	MockReport func(id string) error
}

func (m *MockThreadService) Create(ctx context.Context, data domain.ThreadCreationData) (domain.Thread, error) {
	if m.MockCreate != nil {
		return m.MockCreate(data)
	}
	return domain.Thread{}, nil
}

func (m *MockThreadService) List(ctx context.Context, board domain.BoardName, limit int) ([]domain.PublicThread, error) {
	if m.MockList != nil {
		return m.MockList(board, limit)
	}
	return []domain.PublicThread{}, nil
}

func (m *MockThreadService) Get(ctx context.Context, id string) (domain.PublicThread, bool, error) {
	if m.MockGet != nil {
		return m.MockGet(id)
	}
	return domain.PublicThread{}, false, nil
}

func (m *MockThreadService) Delete(ctx context.Context, id string, password domain.Password) (domain.Outcome, error) {
	if m.MockDelete != nil {
		return m.MockDelete(id, password)
	}
	return domain.AuthFailure, nil
}

func (m *MockThreadService) Report(ctx context.Context, id string) error {
	if m.MockReport != nil {
		return m.MockReport(id)
	}
	return nil
}

type MockReplyService struct {
	MockCreate func(data domain.ReplyCreationData) (domain.Reply, bool, error)
	MockRedact func(threadId, replyId string, password domain.Password) (domain.Outcome, error)
	MockReport func(threadId, replyId string) error
}

func (m *MockReplyService) Create(ctx context.Context, data domain.ReplyCreationData) (domain.Reply, bool, error) {
	if m.MockCreate != nil {
		return m.MockCreate(data)
	}
	return domain.Reply{}, false, nil
}

func (m *MockReplyService) Redact(ctx context.Context, threadId, replyId string, password domain.Password) (domain.Outcome, error) {
	if m.MockRedact != nil {
		return m.MockRedact(threadId, replyId, password)
	}
	return domain.AuthFailure, nil
}

func (m *MockReplyService) Report(ctx context.Context, threadId, replyId string) error {
	if m.MockReport != nil {
		return m.MockReport(threadId, replyId)
	}
	return nil
}

func setupTestHandler(threads *MockThreadService, replies *MockReplyService) (*Handler, *chi.Mux) {
	h := New(threads, replies, &config.Config{}, &MockHealthChecker{})

	router := chi.NewRouter()
	router.Post("/api/threads/{board}", h.CreateThread)
	router.Get("/api/threads/{board}", h.ListThreads)
	router.Delete("/api/threads/{board}", h.DeleteThread)
	router.Put("/api/threads/{board}", h.ReportThread)
	router.Post("/api/replies/{board}", h.CreateReply)
	router.Get("/api/replies/{board}", h.GetThread)
	router.Delete("/api/replies/{board}", h.DeleteReply)
	router.Put("/api/replies/{board}", h.ReportReply)
	return h, router
}

func serve(router http.Handler, method, target, contentType, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}
