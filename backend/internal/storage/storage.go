// Package storage defines the persistence contract shared by every driver.
//
// A driver stores one document per thread with its replies embedded.
// Absent documents are reported with errors.ErrNotFound; every other
// failure is an *errors.StorageError.
package storage

import (
	"context"

	"github.com/itchan-dev/boardstore/shared/domain"
)

type Storage interface {
	Ping(ctx context.Context) error
	Cleanup() error

	CreateThread(ctx context.Context, thread domain.Thread) error
	// ListThreads returns up to limit threads of board ordered by BumpedOn
	// descending, each carrying at most replyLimit of its last replies
	// (all of them when replyLimit is negative).
	ListThreads(ctx context.Context, board domain.BoardName, limit, replyLimit int) ([]domain.Thread, error)
	GetThread(ctx context.Context, id domain.ThreadId) (domain.Thread, error)
	DeleteThread(ctx context.Context, id domain.ThreadId) error
	ReportThread(ctx context.Context, id domain.ThreadId) error

	// AppendReply appends reply and sets the thread's BumpedOn to
	// reply.CreatedOn in a single atomic step.
	AppendReply(ctx context.Context, threadId domain.ThreadId, reply domain.Reply) error
	SetReplyText(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId, text domain.PostText) error
	ReportReply(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId) error
}
