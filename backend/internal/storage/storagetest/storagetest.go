// Package storagetest is the behavioural suite every storage driver must
// pass. Drivers call Run from their own tests with a factory that returns a
// fresh, empty storage.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/itchan-dev/boardstore/backend/internal/storage"
	"github.com/itchan-dev/boardstore/shared/domain"
	internal_errors "github.com/itchan-dev/boardstore/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Factory func(t *testing.T) storage.Storage

// base is a millisecond-aligned instant so every driver round-trips it.
var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func at(offset time.Duration) time.Time {
	return base.Add(offset)
}

func newThread(board string, created time.Time) domain.Thread {
	return domain.NewThread(domain.ThreadCreationData{
		Board:          board,
		Text:           "thread on " + board,
		DeletePassword: "secret",
	}, created)
}

func newReply(text string, created time.Time) domain.Reply {
	return domain.NewReply(domain.ReplyCreationData{Text: text, DeletePassword: "reply-secret"}, created)
}

func uniqueBoard(t *testing.T) string {
	return fmt.Sprintf("b%d", time.Now().UnixNano())
}

// Run executes the whole suite.
func Run(t *testing.T, newStorage Factory) {
	t.Run("CreateAndGet", func(t *testing.T) { testCreateAndGet(t, newStorage(t)) })
	t.Run("GetMissing", func(t *testing.T) { testGetMissing(t, newStorage(t)) })
	t.Run("ListOrderingAndLimit", func(t *testing.T) { testListOrderingAndLimit(t, newStorage(t)) })
	t.Run("ListTrimsReplies", func(t *testing.T) { testListTrimsReplies(t, newStorage(t)) })
	t.Run("AppendReply", func(t *testing.T) { testAppendReply(t, newStorage(t)) })
	t.Run("ConcurrentAppend", func(t *testing.T) { testConcurrentAppend(t, newStorage(t)) })
	t.Run("SetReplyText", func(t *testing.T) { testSetReplyText(t, newStorage(t)) })
	t.Run("ReportThread", func(t *testing.T) { testReportThread(t, newStorage(t)) })
	t.Run("ReportReply", func(t *testing.T) { testReportReply(t, newStorage(t)) })
	t.Run("DeleteThread", func(t *testing.T) { testDeleteThread(t, newStorage(t)) })
	t.Run("Ping", func(t *testing.T) { require.NoError(t, newStorage(t).Ping(context.Background())) })
}

func requireSameThread(t *testing.T, expected, actual domain.Thread) {
	t.Helper()
	assert.Equal(t, expected.Id, actual.Id)
	assert.Equal(t, expected.Board, actual.Board)
	assert.Equal(t, expected.Text, actual.Text)
	assert.True(t, expected.CreatedOn.Equal(actual.CreatedOn), "created_on: want %v, got %v", expected.CreatedOn, actual.CreatedOn)
	assert.True(t, expected.BumpedOn.Equal(actual.BumpedOn), "bumped_on: want %v, got %v", expected.BumpedOn, actual.BumpedOn)
	assert.Equal(t, expected.Reported, actual.Reported)
	assert.Equal(t, expected.DeletePassword, actual.DeletePassword)
	require.Len(t, actual.Replies, len(expected.Replies))
	for i := range expected.Replies {
		requireSameReply(t, expected.Replies[i], actual.Replies[i])
	}
}

func requireSameReply(t *testing.T, expected, actual domain.Reply) {
	t.Helper()
	assert.Equal(t, expected.Id, actual.Id)
	assert.Equal(t, expected.Text, actual.Text)
	assert.True(t, expected.CreatedOn.Equal(actual.CreatedOn), "reply created_on: want %v, got %v", expected.CreatedOn, actual.CreatedOn)
	assert.Equal(t, expected.Reported, actual.Reported)
	assert.Equal(t, expected.DeletePassword, actual.DeletePassword)
}

func testCreateAndGet(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	thread := newThread(uniqueBoard(t), at(0))
	thread.Text = "ünïcødé <b>text</b> \"quoted\"\nnewline"

	require.NoError(t, s.CreateThread(ctx, thread))

	got, err := s.GetThread(ctx, thread.Id)
	require.NoError(t, err)
	requireSameThread(t, thread, got)
	assert.NotNil(t, got.Replies, "replies must be an empty sequence, not nil")
}

func testGetMissing(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	missing := domain.NewId()

	_, err := s.GetThread(ctx, missing)
	assert.ErrorIs(t, err, internal_errors.ErrNotFound)
	assert.ErrorIs(t, s.DeleteThread(ctx, missing), internal_errors.ErrNotFound)
	assert.ErrorIs(t, s.ReportThread(ctx, missing), internal_errors.ErrNotFound)
	assert.ErrorIs(t, s.AppendReply(ctx, missing, newReply("r", at(0))), internal_errors.ErrNotFound)
	assert.ErrorIs(t, s.SetReplyText(ctx, missing, domain.NewId(), "x"), internal_errors.ErrNotFound)
	assert.ErrorIs(t, s.ReportReply(ctx, missing, domain.NewId()), internal_errors.ErrNotFound)
}

func testListOrderingAndLimit(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	board := uniqueBoard(t)
	other := board + "x"

	var created []domain.Thread
	for i := 0; i < 5; i++ {
		th := newThread(board, at(time.Duration(i)*time.Second))
		require.NoError(t, s.CreateThread(ctx, th))
		created = append(created, th)
	}
	require.NoError(t, s.CreateThread(ctx, newThread(other, at(time.Hour))))

	// bump the oldest thread to the top
	require.NoError(t, s.AppendReply(ctx, created[0].Id, newReply("bump", at(time.Minute))))

	threads, err := s.ListThreads(ctx, board, 3, 3)
	require.NoError(t, err)
	require.Len(t, threads, 3)
	assert.Equal(t, created[0].Id, threads[0].Id)
	assert.Equal(t, created[4].Id, threads[1].Id)
	assert.Equal(t, created[3].Id, threads[2].Id)
	for i := 1; i < len(threads); i++ {
		assert.False(t, threads[i].BumpedOn.After(threads[i-1].BumpedOn), "threads must be ordered by bumped_on desc")
	}
	for _, th := range threads {
		assert.Equal(t, board, th.Board)
	}

	all, err := s.ListThreads(ctx, board, 10, 3)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	none, err := s.ListThreads(ctx, board+"-empty", 10, 3)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testListTrimsReplies(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	board := uniqueBoard(t)
	th := newThread(board, at(0))
	require.NoError(t, s.CreateThread(ctx, th))

	var replies []domain.Reply
	for i := 0; i < 5; i++ {
		r := newReply(fmt.Sprintf("reply %d", i), at(time.Duration(i+1)*time.Second))
		require.NoError(t, s.AppendReply(ctx, th.Id, r))
		replies = append(replies, r)
	}

	threads, err := s.ListThreads(ctx, board, 10, 3)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	require.Len(t, threads[0].Replies, 3)
	for i, r := range threads[0].Replies {
		requireSameReply(t, replies[2+i], r)
	}

	untrimmed, err := s.ListThreads(ctx, board, 10, -1)
	require.NoError(t, err)
	require.Len(t, untrimmed, 1)
	assert.Len(t, untrimmed[0].Replies, 5)

	// listing never trims the stored document
	stored, err := s.GetThread(ctx, th.Id)
	require.NoError(t, err)
	assert.Len(t, stored.Replies, 5)
}

func testAppendReply(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	th := newThread(uniqueBoard(t), at(0))
	require.NoError(t, s.CreateThread(ctx, th))

	first := newReply("first", at(time.Second))
	second := newReply("second", at(2*time.Second))
	require.NoError(t, s.AppendReply(ctx, th.Id, first))
	require.NoError(t, s.AppendReply(ctx, th.Id, second))

	got, err := s.GetThread(ctx, th.Id)
	require.NoError(t, err)
	require.Len(t, got.Replies, 2)
	requireSameReply(t, first, got.Replies[0])
	requireSameReply(t, second, got.Replies[1])
	assert.True(t, got.BumpedOn.Equal(second.CreatedOn), "bumped_on must equal the last reply's created_on")
	assert.True(t, got.CreatedOn.Equal(th.CreatedOn), "created_on must not change")
}

func testConcurrentAppend(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	th := newThread(uniqueBoard(t), at(0))
	require.NoError(t, s.CreateThread(ctx, th))

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- s.AppendReply(ctx, th.Id, newReply(fmt.Sprintf("r%d", i), at(time.Duration(i+1)*time.Millisecond)))
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := s.GetThread(ctx, th.Id)
	require.NoError(t, err)
	assert.Len(t, got.Replies, n, "no reply may be lost")
}

func testSetReplyText(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	th := newThread(uniqueBoard(t), at(0))
	require.NoError(t, s.CreateThread(ctx, th))
	first := newReply("first", at(time.Second))
	target := newReply("target", at(2*time.Second))
	last := newReply("last", at(3*time.Second))
	for _, r := range []domain.Reply{first, target, last} {
		require.NoError(t, s.AppendReply(ctx, th.Id, r))
	}

	require.NoError(t, s.SetReplyText(ctx, th.Id, target.Id, domain.DeletedReplyText))

	got, err := s.GetThread(ctx, th.Id)
	require.NoError(t, err)
	require.Len(t, got.Replies, 3)
	requireSameReply(t, first, got.Replies[0])
	requireSameReply(t, last, got.Replies[2])
	redacted := target
	redacted.Text = domain.DeletedReplyText
	requireSameReply(t, redacted, got.Replies[1])
	assert.True(t, got.BumpedOn.Equal(last.CreatedOn), "editing a reply must not bump")

	assert.ErrorIs(t, s.SetReplyText(ctx, th.Id, domain.NewId(), "x"), internal_errors.ErrNotFound)
}

func testReportThread(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	th := newThread(uniqueBoard(t), at(0))
	require.NoError(t, s.CreateThread(ctx, th))

	require.NoError(t, s.ReportThread(ctx, th.Id))
	require.NoError(t, s.ReportThread(ctx, th.Id))

	got, err := s.GetThread(ctx, th.Id)
	require.NoError(t, err)
	assert.True(t, got.Reported)
	assert.True(t, got.BumpedOn.Equal(th.BumpedOn), "reporting must not bump")
}

func testReportReply(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	th := newThread(uniqueBoard(t), at(0))
	require.NoError(t, s.CreateThread(ctx, th))
	r := newReply("report me", at(time.Second))
	other := newReply("leave me", at(2*time.Second))
	require.NoError(t, s.AppendReply(ctx, th.Id, r))
	require.NoError(t, s.AppendReply(ctx, th.Id, other))

	require.NoError(t, s.ReportReply(ctx, th.Id, r.Id))
	require.NoError(t, s.ReportReply(ctx, th.Id, r.Id))

	got, err := s.GetThread(ctx, th.Id)
	require.NoError(t, err)
	require.Len(t, got.Replies, 2)
	assert.True(t, got.Replies[0].Reported)
	assert.Equal(t, "report me", got.Replies[0].Text)
	assert.False(t, got.Replies[1].Reported)
	assert.False(t, got.Reported, "reporting a reply must not flag the thread")

	assert.ErrorIs(t, s.ReportReply(ctx, th.Id, domain.NewId()), internal_errors.ErrNotFound)
}

func testDeleteThread(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	board := uniqueBoard(t)
	th := newThread(board, at(0))
	keep := newThread(board, at(time.Second))
	require.NoError(t, s.CreateThread(ctx, th))
	require.NoError(t, s.CreateThread(ctx, keep))
	require.NoError(t, s.AppendReply(ctx, th.Id, newReply("gone with the thread", at(2*time.Second))))

	require.NoError(t, s.DeleteThread(ctx, th.Id))

	_, err := s.GetThread(ctx, th.Id)
	assert.ErrorIs(t, err, internal_errors.ErrNotFound)
	assert.ErrorIs(t, s.DeleteThread(ctx, th.Id), internal_errors.ErrNotFound)

	threads, err := s.ListThreads(ctx, board, 10, 3)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, keep.Id, threads[0].Id)
}
