package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"certificate-automation/certifier-portal/certifier-portal-backend/internal/common"
	"certificate-automation/certifier-portal/certifier-portal-backend/internal/config"
)

// MongoStore keeps documents in a MongoDB database.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

// NewMongoStore connects to the configured deployment and pings it.
func NewMongoStore(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*MongoStore, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	opts := options.Client().
		ApplyURI(cfg.GetDatabaseURL()).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	logger.Info("Connected to document store", zap.String("database", cfg.Name))

	return &MongoStore{
		client: client,
		db:     client.Database(cfg.Name),
		logger: logger,
	}, nil
}

// bind attaches the request scope's session to ctx, starting it if needed.
func (s *MongoStore) bind(ctx context.Context) (context.Context, error) {
	scope := ScopeFrom(ctx)
	if scope == nil {
		return ctx, nil
	}
	sess, err := scope.acquire(s.client)
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	return mongo.NewSessionContext(ctx, sess), nil
}

func (s *MongoStore) FindByID(ctx context.Context, collection, id string, out interface{}) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%s %q: %w", collection, id, common.ErrNotFound)
	}
	return s.findOne(ctx, collection, bson.M{"_id": oid}, out)
}

func (s *MongoStore) FindByField(ctx context.Context, collection, field string, value interface{}, out interface{}) error {
	return s.findOne(ctx, collection, bson.M{field: value}, out)
}

func (s *MongoStore) findOne(ctx context.Context, collection string, filter bson.M, out interface{}) error {
	ctx, err := s.bind(ctx)
	if err != nil {
		return err
	}

	err = s.db.Collection(collection).FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s: %w", collection, common.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", collection, err)
	}
	return nil
}

func (s *MongoStore) FindAllByField(ctx context.Context, collection, field string, value interface{}, out interface{}) error {
	ctx, err := s.bind(ctx)
	if err != nil {
		return err
	}

	cursor, err := s.db.Collection(collection).Find(ctx, bson.M{field: value})
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", collection, err)
	}
	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", collection, err)
	}
	return nil
}

func (s *MongoStore) Insert(ctx context.Context, collection string, doc interface{}) (string, error) {
	ctx, err := s.bind(ctx)
	if err != nil {
		return "", err
	}

	res, err := s.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to insert into %s: %w", collection, err)
	}

	switch id := res.InsertedID.(type) {
	case primitive.ObjectID:
		return id.Hex(), nil
	case string:
		return id, nil
	default:
		return fmt.Sprint(id), nil
	}
}

func (s *MongoStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%s %q: %w", collection, id, common.ErrNotFound)
	}

	ctx, err = s.bind(ctx)
	if err != nil {
		return err
	}

	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", collection, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s %q: %w", collection, id, common.ErrNotFound)
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
