package service

import (
	"context"
	"errors"
	"time"

	"github.com/itchan-dev/boardstore/shared/config"
	"github.com/itchan-dev/boardstore/shared/domain"
	internal_errors "github.com/itchan-dev/boardstore/shared/errors"
)

// to mock service in tests
type ThreadService interface {
	Create(ctx context.Context, data domain.ThreadCreationData) (domain.Thread, error)
	List(ctx context.Context, board domain.BoardName, limit int) ([]domain.PublicThread, error)
	Get(ctx context.Context, id string) (domain.PublicThread, bool, error)
	Delete(ctx context.Context, id string, password domain.Password) (domain.Outcome, error)
	Report(ctx context.Context, id string) error
}

type ThreadStorage interface {
	CreateThread(ctx context.Context, thread domain.Thread) error
	ListThreads(ctx context.Context, board domain.BoardName, limit, replyLimit int) ([]domain.Thread, error)
	GetThread(ctx context.Context, id domain.ThreadId) (domain.Thread, error)
	DeleteThread(ctx context.Context, id domain.ThreadId) error
	ReportThread(ctx context.Context, id domain.ThreadId) error
}

type ThreadValidator interface {
	Board(board domain.BoardName) error
	Password(password domain.Password) error
}

type Thread struct {
	storage   ThreadStorage
	validator ThreadValidator
	cfg       config.Public
	now       func() time.Time
}

func NewThread(storage ThreadStorage, validator ThreadValidator, cfg config.Public) *Thread {
	return &Thread{storage: storage, validator: validator, cfg: cfg, now: now}
}

// now is the service clock. Stored instants are UTC with millisecond
// precision, which every driver round-trips exactly.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func (s *Thread) Create(ctx context.Context, data domain.ThreadCreationData) (domain.Thread, error) {
	if err := s.validator.Board(data.Board); err != nil {
		return domain.Thread{}, err
	}
	if err := s.validator.Password(data.DeletePassword); err != nil {
		return domain.Thread{}, err
	}

	thread := domain.NewThread(data, s.now())
	if err := s.storage.CreateThread(ctx, thread); err != nil {
		return domain.Thread{}, err
	}
	return thread, nil
}

// List returns the most recently bumped threads of board with their last
// few replies. limit <= 0 means the configured page size.
func (s *Thread) List(ctx context.Context, board domain.BoardName, limit int) ([]domain.PublicThread, error) {
	if limit <= 0 {
		limit = s.cfg.ThreadsPerPage
	}

	threads, err := s.storage.ListThreads(ctx, board, limit, s.cfg.RepliesPreview)
	if err != nil {
		return nil, err
	}
	if len(threads) > limit {
		threads = threads[:limit]
	}

	result := make([]domain.PublicThread, 0, len(threads))
	for _, thread := range threads {
		thread.Replies = thread.LastReplies(s.cfg.RepliesPreview)
		result = append(result, domain.RedactThread(thread))
	}
	return result, nil
}

func (s *Thread) Get(ctx context.Context, id string) (domain.PublicThread, bool, error) {
	canonical, err := domain.ParseId(id)
	if err != nil {
		return domain.PublicThread{}, false, nil
	}

	thread, err := s.storage.GetThread(ctx, canonical)
	if errors.Is(err, internal_errors.ErrNotFound) {
		return domain.PublicThread{}, false, nil
	}
	if err != nil {
		return domain.PublicThread{}, false, err
	}
	return domain.RedactThread(thread), true, nil
}

func (s *Thread) Delete(ctx context.Context, id string, password domain.Password) (domain.Outcome, error) {
	canonical, err := domain.ParseId(id)
	if err != nil {
		return decide(opDeleteThread, domain.Invalid, id), nil
	}

	thread, err := s.storage.GetThread(ctx, canonical)
	if errors.Is(err, internal_errors.ErrNotFound) {
		return decide(opDeleteThread, domain.NotFound, canonical), nil
	}
	if err != nil {
		return domain.AuthFailure, err
	}

	decision := authorize(thread.DeletePassword, password)
	if decision == domain.Authorized {
		err := s.storage.DeleteThread(ctx, canonical)
		switch {
		case errors.Is(err, internal_errors.ErrNotFound):
			// deleted concurrently
			decision = domain.NotFound
		case err != nil:
			return domain.AuthFailure, err
		}
	}
	return decide(opDeleteThread, decision, canonical), nil
}

// Report flags the thread if it exists. A nil error is the same
// acknowledgement whether or not anything was flagged.
func (s *Thread) Report(ctx context.Context, id string) error {
	canonical, err := domain.ParseId(id)
	if err != nil {
		decide(opReportThread, domain.Invalid, id)
		return nil
	}

	err = s.storage.ReportThread(ctx, canonical)
	if errors.Is(err, internal_errors.ErrNotFound) {
		decide(opReportThread, domain.NotFound, canonical)
		return nil
	}
	if err != nil {
		return err
	}
	decide(opReportThread, domain.Authorized, canonical)
	return nil
}
