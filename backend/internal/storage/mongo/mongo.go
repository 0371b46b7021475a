// Package mongo stores each thread as one MongoDB document with its
// replies embedded. Mutations are single UpdateOne/DeleteOne calls, which
// MongoDB applies atomically per document.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/itchan-dev/boardstore/backend/internal/storage"
	"github.com/itchan-dev/boardstore/shared/config"
	"github.com/itchan-dev/boardstore/shared/domain"
	internal_errors "github.com/itchan-dev/boardstore/shared/errors"
	"github.com/itchan-dev/boardstore/shared/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const collectionName = "threads"

var _ storage.Storage = (*Storage)(nil)

type Storage struct {
	client  *mongo.Client
	threads *mongo.Collection
}

type threadDoc struct {
	Id             string     `bson:"_id"`
	Board          string     `bson:"board"`
	Text           string     `bson:"text"`
	CreatedOn      time.Time  `bson:"created_on"`
	BumpedOn       time.Time  `bson:"bumped_on"`
	Reported       bool       `bson:"reported"`
	DeletePassword string     `bson:"delete_password"`
	Replies        []replyDoc `bson:"replies"`
}

type replyDoc struct {
	Id             string    `bson:"_id"`
	Text           string    `bson:"text"`
	CreatedOn      time.Time `bson:"created_on"`
	Reported       bool      `bson:"reported"`
	DeletePassword string    `bson:"delete_password"`
}

func New(ctx context.Context, cfg config.Mongo) (*Storage, error) {
	logger.Log.Info("connecting to mongodb", "database", cfg.Database)
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	threads := client.Database(cfg.Database).Collection(collectionName)
	_, err = threads.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "board", Value: 1}, {Key: "bumped_on", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create index: %w", err)
	}
	logger.Log.Info("successfully connected to mongodb")

	return &Storage{client: client, threads: threads}, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Storage) Cleanup() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Storage) CreateThread(ctx context.Context, thread domain.Thread) error {
	_, err := s.threads.InsertOne(ctx, toThreadDoc(thread))
	return internal_errors.Storage("create thread", err)
}

func (s *Storage) ListThreads(ctx context.Context, board domain.BoardName, limit, replyLimit int) ([]domain.Thread, error) {
	opts := options.Find().SetSort(bson.D{{Key: "bumped_on", Value: -1}})
	if limit >= 0 {
		opts.SetLimit(int64(limit))
	}
	if replyLimit >= 0 {
		opts.SetProjection(bson.M{"replies": bson.M{"$slice": -replyLimit}})
	}

	cursor, err := s.threads.Find(ctx, bson.M{"board": board}, opts)
	if err != nil {
		return nil, internal_errors.Storage("list threads", err)
	}
	var docs []threadDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, internal_errors.Storage("list threads", err)
	}

	threads := make([]domain.Thread, len(docs))
	for i := range docs {
		threads[i] = docs[i].toDomain()
		if replyLimit == 0 {
			threads[i].Replies = []domain.Reply{}
		}
	}
	return threads, nil
}

func (s *Storage) GetThread(ctx context.Context, id domain.ThreadId) (domain.Thread, error) {
	var doc threadDoc
	err := s.threads.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Thread{}, internal_errors.ErrNotFound
	}
	if err != nil {
		return domain.Thread{}, internal_errors.Storage("get thread", err)
	}
	return doc.toDomain(), nil
}

func (s *Storage) DeleteThread(ctx context.Context, id domain.ThreadId) error {
	result, err := s.threads.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return internal_errors.Storage("delete thread", err)
	}
	if result.DeletedCount == 0 {
		return internal_errors.ErrNotFound
	}
	return nil
}

func (s *Storage) ReportThread(ctx context.Context, id domain.ThreadId) error {
	return s.updateOne(ctx, "report thread",
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"reported": true}})
}

// AppendReply pushes the reply and bumps the thread in one update.
func (s *Storage) AppendReply(ctx context.Context, threadId domain.ThreadId, reply domain.Reply) error {
	return s.updateOne(ctx, "append reply",
		bson.M{"_id": threadId},
		bson.M{
			"$push": bson.M{"replies": toReplyDoc(reply)},
			"$set":  bson.M{"bumped_on": reply.CreatedOn},
		})
}

func (s *Storage) SetReplyText(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId, text domain.PostText) error {
	return s.updateOne(ctx, "set reply text",
		bson.M{"_id": threadId, "replies._id": replyId},
		bson.M{"$set": bson.M{"replies.$.text": text}})
}

func (s *Storage) ReportReply(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId) error {
	return s.updateOne(ctx, "report reply",
		bson.M{"_id": threadId, "replies._id": replyId},
		bson.M{"$set": bson.M{"replies.$.reported": true}})
}

func (s *Storage) updateOne(ctx context.Context, op string, filter, update bson.M) error {
	result, err := s.threads.UpdateOne(ctx, filter, update)
	if err != nil {
		return internal_errors.Storage(op, err)
	}
	if result.MatchedCount == 0 {
		return internal_errors.ErrNotFound
	}
	return nil
}

func toThreadDoc(t domain.Thread) threadDoc {
	replies := make([]replyDoc, len(t.Replies))
	for i, r := range t.Replies {
		replies[i] = toReplyDoc(r)
	}
	return threadDoc{
		Id:             t.Id,
		Board:          t.Board,
		Text:           t.Text,
		CreatedOn:      t.CreatedOn,
		BumpedOn:       t.BumpedOn,
		Reported:       t.Reported,
		DeletePassword: t.DeletePassword,
		Replies:        replies,
	}
}

func toReplyDoc(r domain.Reply) replyDoc {
	return replyDoc{
		Id:             r.Id,
		Text:           r.Text,
		CreatedOn:      r.CreatedOn,
		Reported:       r.Reported,
		DeletePassword: r.DeletePassword,
	}
}

func (d threadDoc) toDomain() domain.Thread {
	replies := make([]domain.Reply, len(d.Replies))
	for i, r := range d.Replies {
		replies[i] = domain.Reply{
			Id:             r.Id,
			Text:           r.Text,
			CreatedOn:      r.CreatedOn.UTC(),
			Reported:       r.Reported,
			DeletePassword: r.DeletePassword,
		}
	}
	return domain.Thread{
		Id:             d.Id,
		Board:          d.Board,
		Text:           d.Text,
		CreatedOn:      d.CreatedOn.UTC(),
		BumpedOn:       d.BumpedOn.UTC(),
		Reported:       d.Reported,
		DeletePassword: d.DeletePassword,
		Replies:        replies,
	}
}
