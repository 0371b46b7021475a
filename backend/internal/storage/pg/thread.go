package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/itchan-dev/boardstore/shared/domain"
	internal_errors "github.com/itchan-dev/boardstore/shared/errors"
)

var threadColumns = []string{"id", "board", "text", "created_on", "bumped_on", "reported", "delete_password"}

// lastRepliesColumn keeps only the trailing n elements of the replies array.
const lastRepliesColumn = `COALESCE((
    SELECT jsonb_agg(r.e ORDER BY r.i)
    FROM jsonb_array_elements(replies) WITH ORDINALITY AS r(e, i)
    WHERE r.i > jsonb_array_length(replies) - ?
), '[]'::jsonb) AS replies`

func (s *Storage) CreateThread(ctx context.Context, thread domain.Thread) error {
	replies, err := json.Marshal(nonNilReplies(thread.Replies))
	if err != nil {
		return internal_errors.Storage("create thread", err)
	}

	_, err = s.sq.Insert("threads").
		Columns(append(threadColumns, "replies")...).
		Values(thread.Id, thread.Board, thread.Text, thread.CreatedOn, thread.BumpedOn,
			thread.Reported, thread.DeletePassword, string(replies)).
		ExecContext(ctx)
	return internal_errors.Storage("create thread", err)
}

func (s *Storage) ListThreads(ctx context.Context, board domain.BoardName, limit, replyLimit int) ([]domain.Thread, error) {
	query := s.sq.Select(threadColumns...)
	if replyLimit >= 0 {
		query = query.Column(squirrel.Expr(lastRepliesColumn, replyLimit))
	} else {
		query = query.Column("replies")
	}
	query = query.From("threads").
		Where(squirrel.Eq{"board": board}).
		OrderBy("bumped_on DESC")
	if limit >= 0 {
		query = query.Limit(uint64(limit))
	}

	rows, err := query.QueryContext(ctx)
	if err != nil {
		return nil, internal_errors.Storage("list threads", err)
	}
	defer rows.Close()

	var threads []domain.Thread
	for rows.Next() {
		thread, err := scanThread(rows)
		if err != nil {
			return nil, internal_errors.Storage("list threads", err)
		}
		threads = append(threads, thread)
	}
	if err := rows.Err(); err != nil {
		return nil, internal_errors.Storage("list threads", fmt.Errorf("rows iteration error: %w", err))
	}
	return threads, nil
}

func (s *Storage) GetThread(ctx context.Context, id domain.ThreadId) (domain.Thread, error) {
	if !validId(id) {
		return domain.Thread{}, internal_errors.ErrNotFound
	}
	row := s.sq.Select(append(threadColumns, "replies")...).
		From("threads").
		Where(squirrel.Eq{"id": id}).
		QueryRowContext(ctx)

	thread, err := scanThread(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Thread{}, internal_errors.ErrNotFound
	}
	if err != nil {
		return domain.Thread{}, internal_errors.Storage("get thread", err)
	}
	return thread, nil
}

func (s *Storage) DeleteThread(ctx context.Context, id domain.ThreadId) error {
	if !validId(id) {
		return internal_errors.ErrNotFound
	}
	result, err := s.sq.Delete("threads").
		Where(squirrel.Eq{"id": id}).
		ExecContext(ctx)
	return affectedOne("delete thread", result, err)
}

func (s *Storage) ReportThread(ctx context.Context, id domain.ThreadId) error {
	if !validId(id) {
		return internal_errors.ErrNotFound
	}
	result, err := s.sq.Update("threads").
		Set("reported", true).
		Where(squirrel.Eq{"id": id}).
		ExecContext(ctx)
	return affectedOne("report thread", result, err)
}

// affectedOne maps "no row touched" to ErrNotFound.
func affectedOne(op string, result sql.Result, err error) error {
	if err != nil {
		return internal_errors.Storage(op, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return internal_errors.Storage(op, err)
	}
	if affected == 0 {
		return internal_errors.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanThread(row rowScanner) (domain.Thread, error) {
	var (
		thread  domain.Thread
		replies []byte
	)
	err := row.Scan(&thread.Id, &thread.Board, &thread.Text, &thread.CreatedOn, &thread.BumpedOn,
		&thread.Reported, &thread.DeletePassword, &replies)
	if err != nil {
		return domain.Thread{}, err
	}
	if err := json.Unmarshal(replies, &thread.Replies); err != nil {
		return domain.Thread{}, fmt.Errorf("failed to decode replies: %w", err)
	}
	thread.Replies = nonNilReplies(thread.Replies)
	thread.CreatedOn = thread.CreatedOn.UTC()
	thread.BumpedOn = thread.BumpedOn.UTC()
	for i := range thread.Replies {
		thread.Replies[i].CreatedOn = thread.Replies[i].CreatedOn.UTC()
	}
	return thread, nil
}

func nonNilReplies(replies []domain.Reply) []domain.Reply {
	if replies == nil {
		return []domain.Reply{}
	}
	return replies
}
