package service

import (
	"context"
	"errors"
	"time"

	"github.com/itchan-dev/boardstore/shared/domain"
	internal_errors "github.com/itchan-dev/boardstore/shared/errors"
)

type ReplyService interface {
	Create(ctx context.Context, data domain.ReplyCreationData) (domain.Reply, bool, error)
	Redact(ctx context.Context, threadId, replyId string, password domain.Password) (domain.Outcome, error)
	Report(ctx context.Context, threadId, replyId string) error
}

type ReplyStorage interface {
	GetThread(ctx context.Context, id domain.ThreadId) (domain.Thread, error)
	AppendReply(ctx context.Context, threadId domain.ThreadId, reply domain.Reply) error
	SetReplyText(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId, text domain.PostText) error
	ReportReply(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId) error
}

type ReplyValidator interface {
	Password(password domain.Password) error
}

type Reply struct {
	storage   ReplyStorage
	validator ReplyValidator
	now       func() time.Time
}

func NewReply(storage ReplyStorage, validator ReplyValidator) *Reply {
	return &Reply{storage: storage, validator: validator, now: now}
}

// Create appends a reply and bumps the thread. The bool is false when the
// thread id is malformed or unknown, in which case nothing is written.
func (s *Reply) Create(ctx context.Context, data domain.ReplyCreationData) (domain.Reply, bool, error) {
	if err := s.validator.Password(data.DeletePassword); err != nil {
		return domain.Reply{}, false, err
	}
	threadId, err := domain.ParseId(data.ThreadId)
	if err != nil {
		return domain.Reply{}, false, nil
	}
	data.ThreadId = threadId

	reply := domain.NewReply(data, s.now())
	err = s.storage.AppendReply(ctx, threadId, reply)
	if errors.Is(err, internal_errors.ErrNotFound) {
		return domain.Reply{}, false, nil
	}
	if err != nil {
		return domain.Reply{}, false, err
	}
	return reply, true, nil
}

// Redact replaces the reply text with the placeholder. The reply keeps its
// id, timestamp and position.
func (s *Reply) Redact(ctx context.Context, threadId, replyId string, password domain.Password) (domain.Outcome, error) {
	tid, err := domain.ParseId(threadId)
	if err != nil {
		return decide(opRedactReply, domain.Invalid, threadId), nil
	}
	rid, err := domain.ParseId(replyId)
	if err != nil {
		return decide(opRedactReply, domain.Invalid, replyId), nil
	}

	thread, err := s.storage.GetThread(ctx, tid)
	if errors.Is(err, internal_errors.ErrNotFound) {
		return decide(opRedactReply, domain.NotFound, tid), nil
	}
	if err != nil {
		return domain.AuthFailure, err
	}
	i := thread.FindReply(rid)
	if i < 0 {
		return decide(opRedactReply, domain.NotFound, rid), nil
	}

	decision := authorize(thread.Replies[i].DeletePassword, password)
	if decision == domain.Authorized {
		err := s.storage.SetReplyText(ctx, tid, rid, domain.DeletedReplyText)
		switch {
		case errors.Is(err, internal_errors.ErrNotFound):
			decision = domain.NotFound
		case err != nil:
			return domain.AuthFailure, err
		}
	}
	return decide(opRedactReply, decision, rid), nil
}

func (s *Reply) Report(ctx context.Context, threadId, replyId string) error {
	tid, err := domain.ParseId(threadId)
	if err != nil {
		decide(opReportReply, domain.Invalid, threadId)
		return nil
	}
	rid, err := domain.ParseId(replyId)
	if err != nil {
		decide(opReportReply, domain.Invalid, replyId)
		return nil
	}

	err = s.storage.ReportReply(ctx, tid, rid)
	if errors.Is(err, internal_errors.ErrNotFound) {
		decide(opReportReply, domain.NotFound, rid)
		return nil
	}
	if err != nil {
		return err
	}
	decide(opReportReply, domain.Authorized, rid)
	return nil
}
