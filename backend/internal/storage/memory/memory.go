// Package memory is an in-process storage driver. Every mutation happens
// under one lock, which gives the same single-document atomicity the
// database drivers get from their servers.
package memory

import (
	"context"
	stderrors "errors"
	"sort"
	"sync"

	"github.com/itchan-dev/boardstore/backend/internal/storage"
	"github.com/itchan-dev/boardstore/shared/domain"
	"github.com/itchan-dev/boardstore/shared/errors"
)

var _ storage.Storage = (*Storage)(nil)

var errDuplicateId = stderrors.New("duplicate thread id")

type Storage struct {
	mu      sync.RWMutex
	threads map[domain.ThreadId]*domain.Thread
}

func New() *Storage {
	return &Storage{threads: make(map[domain.ThreadId]*domain.Thread)}
}

func (s *Storage) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Storage) Cleanup() error {
	return nil
}

func (s *Storage) CreateThread(ctx context.Context, thread domain.Thread) error {
	if err := ctx.Err(); err != nil {
		return errors.Storage("create thread", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.threads[thread.Id]; ok {
		return errors.Storage("create thread", errDuplicateId)
	}
	stored := thread.Clone()
	s.threads[thread.Id] = &stored
	return nil
}

func (s *Storage) ListThreads(ctx context.Context, board domain.BoardName, limit, replyLimit int) ([]domain.Thread, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Storage("list threads", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var threads []domain.Thread
	for _, t := range s.threads {
		if t.Board == board {
			threads = append(threads, *t)
		}
	}
	sort.SliceStable(threads, func(i, j int) bool {
		return threads[i].BumpedOn.After(threads[j].BumpedOn)
	})
	if limit >= 0 && len(threads) > limit {
		threads = threads[:limit]
	}
	for i := range threads {
		threads[i].Replies = threads[i].LastReplies(replyLimit)
		threads[i] = threads[i].Clone()
	}
	return threads, nil
}

func (s *Storage) GetThread(ctx context.Context, id domain.ThreadId) (domain.Thread, error) {
	if err := ctx.Err(); err != nil {
		return domain.Thread{}, errors.Storage("get thread", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.threads[id]
	if !ok {
		return domain.Thread{}, errors.ErrNotFound
	}
	return t.Clone(), nil
}

func (s *Storage) DeleteThread(ctx context.Context, id domain.ThreadId) error {
	if err := ctx.Err(); err != nil {
		return errors.Storage("delete thread", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.threads[id]; !ok {
		return errors.ErrNotFound
	}
	delete(s.threads, id)
	return nil
}

func (s *Storage) ReportThread(ctx context.Context, id domain.ThreadId) error {
	return s.update(ctx, "report thread", id, func(t *domain.Thread) error {
		t.Reported = true
		return nil
	})
}

func (s *Storage) AppendReply(ctx context.Context, threadId domain.ThreadId, reply domain.Reply) error {
	return s.update(ctx, "append reply", threadId, func(t *domain.Thread) error {
		t.Replies = append(t.Replies, reply)
		t.BumpedOn = reply.CreatedOn
		return nil
	})
}

func (s *Storage) SetReplyText(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId, text domain.PostText) error {
	return s.update(ctx, "set reply text", threadId, func(t *domain.Thread) error {
		i := t.FindReply(replyId)
		if i < 0 {
			return errors.ErrNotFound
		}
		t.Replies[i].Text = text
		return nil
	})
}

func (s *Storage) ReportReply(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId) error {
	return s.update(ctx, "report reply", threadId, func(t *domain.Thread) error {
		i := t.FindReply(replyId)
		if i < 0 {
			return errors.ErrNotFound
		}
		t.Replies[i].Reported = true
		return nil
	})
}

func (s *Storage) update(ctx context.Context, op string, id domain.ThreadId, fn func(t *domain.Thread) error) error {
	if err := ctx.Err(); err != nil {
		return errors.Storage(op, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.threads[id]
	if !ok {
		return errors.ErrNotFound
	}
	return fn(t)
}
