// Package mongostore implements store.Store on the MongoDB Go driver.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"

	"plannercheck/internal/config"
	"plannercheck/internal/store"
)

// OpTimeout bounds every individual store call.
const OpTimeout = 10 * time.Second

// Store implements store.Store against one MongoDB database.
type Store struct {
	client    *mongo.Client
	db        *mongo.Database
	logger    *zap.Logger
	opTimeout time.Duration
}

// New creates a client for cfg.Settings.MongoURI and selects
// cfg.Settings.Database. The driver connects lazily; call Ping to verify
// reachability. Server selection is bounded by Settings.ConnectTimeout.
func New(ctx context.Context, cfg *config.Config) (*Store, error) {
	s := cfg.Settings
	if strings.TrimSpace(s.MongoURI) == "" {
		return nil, errors.New("mongo connection string is empty")
	}

	opts := options.Client().
		ApplyURI(s.MongoURI).
		SetServerSelectionTimeout(s.ConnectTimeout).
		SetConnectTimeout(s.ConnectTimeout).
		SetAppName(config.AppName)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %w", err)
	}

	cfg.Logger.Debug("mongo client created",
		zap.String("uri", config.RedactURI(s.MongoURI)),
		zap.String("database", s.Database),
		zap.Duration("server_selection_timeout", s.ConnectTimeout))

	return &Store{
		client:    client,
		db:        client.Database(s.Database),
		logger:    cfg.Logger.Named("mongostore"),
		opTimeout: OpTimeout,
	}, nil
}

// Ping implements store.Store.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	start := time.Now()
	err := s.client.Ping(ctx, readpref.Primary())
	s.logger.Debug("ping", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
	return wrapError(err)
}

// CollectionNames implements store.Store.
func (s *Store) CollectionNames(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	names, err := s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, wrapError(err)
	}
	s.logger.Debug("collections listed", zap.Int("count", len(names)))
	return names, nil
}

// Count implements store.Store.
func (s *Store) Count(ctx context.Context, collection string, filter store.Filter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	n, err := s.db.Collection(collection).CountDocuments(ctx, toBSON(filter))
	if err != nil {
		return 0, wrapError(err)
	}
	s.logger.Debug("count", zap.String("collection", collection), zap.Int64("documents", n))
	return n, nil
}

// Find implements store.Store.
func (s *Store) Find(ctx context.Context, collection string, filter store.Filter, limit int64) ([]store.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cur, err := s.db.Collection(collection).Find(ctx, toBSON(filter), opts)
	if err != nil {
		return nil, wrapError(err)
	}
	defer cur.Close(ctx)

	var raw []bson.M
	if err := cur.All(ctx, &raw); err != nil {
		return nil, wrapError(err)
	}

	docs := make([]store.Document, 0, len(raw))
	for _, m := range raw {
		docs = append(docs, normalizeDoc(m))
	}
	s.logger.Debug("find", zap.String("collection", collection), zap.Int("documents", len(docs)))
	return docs, nil
}

// FindOne implements store.Store.
func (s *Store) FindOne(ctx context.Context, collection string, filter store.Filter) (store.Document, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	var m bson.M
	err := s.db.Collection(collection).FindOne(ctx, toBSON(filter)).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, wrapError(err)
	}
	return normalizeDoc(m), true, nil
}

// Close implements store.Store.
func (s *Store) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func toBSON(filter store.Filter) bson.M {
	if filter == nil {
		return bson.M{}
	}
	return bson.M(filter)
}

// normalizeDoc converts driver values into plain Go values.
func normalizeDoc(m bson.M) store.Document {
	doc := make(store.Document, len(m))
	for k, v := range m {
		doc[k] = normalize(v)
	}
	return doc
}

func normalize(v any) any {
	switch val := v.(type) {
	case bson.ObjectID:
		return val.Hex()
	case bson.DateTime:
		return val.Time().UTC()
	case bson.M:
		return normalizeDoc(val)
	case bson.D:
		doc := make(store.Document, len(val))
		for _, e := range val {
			doc[e.Key] = normalize(e.Value)
		}
		return doc
	case bson.A:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}
		return out
	default:
		return v
	}
}

// wrapError wraps driver errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || mongo.IsTimeout(err) {
		return fmt.Errorf("store request timed out: %w", err)
	}
	return err
}
