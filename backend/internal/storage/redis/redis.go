// Package redis keeps threads in Redis hashes. Every mutation runs as a
// single Lua script, so readers never observe a half-applied change.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/itchan-dev/boardstore/backend/internal/storage"
	"github.com/itchan-dev/boardstore/shared/config"
	"github.com/itchan-dev/boardstore/shared/domain"
	internal_errors "github.com/itchan-dev/boardstore/shared/errors"
	"github.com/itchan-dev/boardstore/shared/logger"
	goredis "github.com/redis/go-redis/v9"
)

var _ storage.Storage = (*Storage)(nil)

type Storage struct {
	client *goredis.Client
}

func New(ctx context.Context, cfg config.Redis) (*Storage, error) {
	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	logger.Log.Info("connecting to redis", "addr", opts.Addr, "db", opts.DB)

	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Log.Info("successfully connected to redis")
	return NewWithClient(client), nil
}

func NewWithClient(client *goredis.Client) *Storage {
	return &Storage{client: client}
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Storage) Cleanup() error {
	return s.client.Close()
}

func threadKey(id domain.ThreadId) string {
	return "thread:" + id
}

func repliesKey(id domain.ThreadId) string {
	return threadKey(id) + ":replies"
}

func replyKey(threadId domain.ThreadId, replyId domain.ReplyId) string {
	return threadKey(threadId) + ":reply:" + replyId
}

func boardKey(board domain.BoardName) string {
	return "board:" + board + ":threads"
}

func (s *Storage) CreateThread(ctx context.Context, thread domain.Thread) error {
	args := []any{
		thread.Id, thread.Board, thread.Text,
		millis(thread.CreatedOn), millis(thread.BumpedOn),
		flag(thread.Reported), thread.DeletePassword,
	}
	for _, r := range thread.Replies {
		args = append(args, r.Id, r.Text, millis(r.CreatedOn), flag(r.Reported), r.DeletePassword)
	}

	keys := []string{threadKey(thread.Id), repliesKey(thread.Id), boardKey(thread.Board)}
	err := createThreadScript.Run(ctx, s.client, keys, args...).Err()
	return internal_errors.Storage("create thread", err)
}

func (s *Storage) ListThreads(ctx context.Context, board domain.BoardName, limit, replyLimit int) ([]domain.Thread, error) {
	raw, err := listThreadsScript.Run(ctx, s.client, []string{boardKey(board)}, limit, replyLimit).Slice()
	if err != nil {
		return nil, internal_errors.Storage("list threads", err)
	}

	threads := make([]domain.Thread, 0, len(raw))
	for _, item := range raw {
		thread, err := decodeThread(item)
		if err != nil {
			return nil, internal_errors.Storage("list threads", err)
		}
		threads = append(threads, thread)
	}
	return threads, nil
}

func (s *Storage) GetThread(ctx context.Context, id domain.ThreadId) (domain.Thread, error) {
	raw, err := getThreadScript.Run(ctx, s.client, nil, id, -1).Result()
	if errors.Is(err, goredis.Nil) {
		return domain.Thread{}, internal_errors.ErrNotFound
	}
	if err != nil {
		return domain.Thread{}, internal_errors.Storage("get thread", err)
	}
	thread, err := decodeThread(raw)
	if err != nil {
		return domain.Thread{}, internal_errors.Storage("get thread", err)
	}
	return thread, nil
}

func (s *Storage) DeleteThread(ctx context.Context, id domain.ThreadId) error {
	return s.runMutation(ctx, "delete thread", deleteThreadScript,
		[]string{threadKey(id), repliesKey(id)}, id)
}

func (s *Storage) ReportThread(ctx context.Context, id domain.ThreadId) error {
	return s.runMutation(ctx, "report thread", setFieldScript,
		[]string{threadKey(id)}, "reported", flag(true))
}

func (s *Storage) AppendReply(ctx context.Context, threadId domain.ThreadId, reply domain.Reply) error {
	return s.runMutation(ctx, "append reply", appendReplyScript,
		[]string{threadKey(threadId), repliesKey(threadId), replyKey(threadId, reply.Id)},
		reply.Id, reply.Text, millis(reply.CreatedOn), flag(reply.Reported), reply.DeletePassword, threadId)
}

func (s *Storage) SetReplyText(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId, text domain.PostText) error {
	return s.runMutation(ctx, "set reply text", setFieldScript,
		[]string{threadKey(threadId), replyKey(threadId, replyId)}, "text", text)
}

func (s *Storage) ReportReply(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId) error {
	return s.runMutation(ctx, "report reply", setFieldScript,
		[]string{threadKey(threadId), replyKey(threadId, replyId)}, "reported", flag(true))
}

// runMutation runs a script that answers 1 when it applied the change and
// 0 when the target is absent.
func (s *Storage) runMutation(ctx context.Context, op string, script *goredis.Script, keys []string, args ...any) error {
	applied, err := script.Run(ctx, s.client, keys, args...).Int()
	if err != nil {
		return internal_errors.Storage(op, err)
	}
	if applied == 0 {
		return internal_errors.ErrNotFound
	}
	return nil
}

func millis(t time.Time) int64 {
	return t.UnixMilli()
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// decodeThread parses the {id, fields, {{rid, fields}...}} shape produced
// by load_thread.
func decodeThread(raw any) (domain.Thread, error) {
	parts, ok := raw.([]any)
	if !ok || len(parts) != 3 {
		return domain.Thread{}, fmt.Errorf("unexpected thread shape %T", raw)
	}
	id, _ := parts[0].(string)
	fields, err := fieldMap(parts[1])
	if err != nil {
		return domain.Thread{}, err
	}

	thread := domain.Thread{
		Id:             id,
		Board:          fields["board"],
		Text:           fields["text"],
		Reported:       fields["reported"] == "1",
		DeletePassword: fields["delete_password"],
	}
	if thread.CreatedOn, err = parseMillis(fields["created_on"]); err != nil {
		return domain.Thread{}, err
	}
	if thread.BumpedOn, err = parseMillis(fields["bumped_on"]); err != nil {
		return domain.Thread{}, err
	}

	rawReplies, _ := parts[2].([]any)
	thread.Replies = make([]domain.Reply, 0, len(rawReplies))
	for _, item := range rawReplies {
		reply, err := decodeReply(item)
		if err != nil {
			return domain.Thread{}, err
		}
		thread.Replies = append(thread.Replies, reply)
	}
	return thread, nil
}

func decodeReply(raw any) (domain.Reply, error) {
	parts, ok := raw.([]any)
	if !ok || len(parts) != 2 {
		return domain.Reply{}, fmt.Errorf("unexpected reply shape %T", raw)
	}
	id, _ := parts[0].(string)
	fields, err := fieldMap(parts[1])
	if err != nil {
		return domain.Reply{}, err
	}
	created, err := parseMillis(fields["created_on"])
	if err != nil {
		return domain.Reply{}, err
	}
	return domain.Reply{
		Id:             id,
		Text:           fields["text"],
		CreatedOn:      created,
		Reported:       fields["reported"] == "1",
		DeletePassword: fields["delete_password"],
	}, nil
}

// fieldMap turns a flat HGETALL reply into a map.
func fieldMap(raw any) (map[string]string, error) {
	flat, ok := raw.([]any)
	if !ok || len(flat)%2 != 0 {
		return nil, fmt.Errorf("unexpected hash shape %T", raw)
	}
	fields := make(map[string]string, len(flat)/2)
	for i := 0; i < len(flat); i += 2 {
		key, _ := flat[i].(string)
		value, _ := flat[i+1].(string)
		fields[key] = value
	}
	return fields, nil
}

func parseMillis(s string) (time.Time, error) {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad timestamp %q: %w", s, err)
	}
	return time.UnixMilli(ms).UTC(), nil
}
