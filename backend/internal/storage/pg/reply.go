package pg

import (
	"context"
	"encoding/json"

	"github.com/Masterminds/squirrel"
	"github.com/itchan-dev/boardstore/shared/domain"
	internal_errors "github.com/itchan-dev/boardstore/shared/errors"
)

// rewriteReplyColumn rebuilds the replies array with one element's field
// replaced, keeping the original order.
const rewriteReplyColumn = `(
    SELECT jsonb_agg(
        CASE WHEN r.e->>'_id' = ? THEN jsonb_set(r.e, ?::text[], ?::jsonb) ELSE r.e END
        ORDER BY r.i)
    FROM jsonb_array_elements(replies) WITH ORDINALITY AS r(e, i)
)`

const hasReplyCondition = `replies @> jsonb_build_array(jsonb_build_object('_id', ?::text))`

// AppendReply pushes the reply and bumps the thread in one statement.
func (s *Storage) AppendReply(ctx context.Context, threadId domain.ThreadId, reply domain.Reply) error {
	if !validId(threadId) {
		return internal_errors.ErrNotFound
	}
	doc, err := json.Marshal(reply)
	if err != nil {
		return internal_errors.Storage("append reply", err)
	}

	result, err := s.sq.Update("threads").
		Set("replies", squirrel.Expr("replies || jsonb_build_array(?::jsonb)", string(doc))).
		Set("bumped_on", reply.CreatedOn).
		Where(squirrel.Eq{"id": threadId}).
		ExecContext(ctx)
	return affectedOne("append reply", result, err)
}

func (s *Storage) SetReplyText(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId, text domain.PostText) error {
	return s.setReplyField(ctx, "set reply text", threadId, replyId, "text", text)
}

func (s *Storage) ReportReply(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId) error {
	return s.setReplyField(ctx, "report reply", threadId, replyId, "reported", true)
}

func (s *Storage) setReplyField(ctx context.Context, op string, threadId domain.ThreadId, replyId domain.ReplyId, field string, value any) error {
	if !validId(threadId) {
		return internal_errors.ErrNotFound
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return internal_errors.Storage(op, err)
	}

	result, err := s.sq.Update("threads").
		Set("replies", squirrel.Expr(rewriteReplyColumn, replyId, "{"+field+"}", string(raw))).
		Where(squirrel.Eq{"id": threadId}).
		Where(squirrel.Expr(hasReplyCondition, replyId)).
		ExecContext(ctx)
	return affectedOne(op, result, err)
}
