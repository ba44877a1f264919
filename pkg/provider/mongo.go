package provider

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/blockscape/pkg/blocks"
	"github.com/matzehuels/blockscape/pkg/errors"
)

// Default MongoDB names.
const (
	DefaultMongoDatabase   = "blockscape"
	DefaultMongoCollection = "points"
)

const mongoConnectTimeout = 10 * time.Second

// MongoProvider reads point documents from a MongoDB collection. Documents
// carry the ten record fields under their snake_case names (see
// [blocks.Point]); a range query returns them ordered by block number, then
// insertion order.
type MongoProvider struct {
	client *mongo.Client
	coll   *mongo.Collection
	src    blocks.PhaseSource
}

// NewMongoProvider connects to uri and verifies the connection.
func NewMongoProvider(ctx context.Context, uri, database, collection string) (*MongoProvider, error) {
	if database == "" {
		database = DefaultMongoDatabase
	}
	if collection == "" {
		collection = DefaultMongoCollection
	}

	ctx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongodb")
	}
	return NewMongoProviderFromCollection(client.Database(database).Collection(collection)), nil
}

// NewMongoProviderFromCollection wraps an existing collection handle.
func NewMongoProviderFromCollection(coll *mongo.Collection) *MongoProvider {
	return &MongoProvider{client: coll.Database().Client(), coll: coll, src: blocks.SharedSource}
}

// Name returns "mongo:<database>.<collection>".
func (m *MongoProvider) Name() string {
	return "mongo:" + m.coll.Database().Name() + "." + m.coll.Name()
}

// Fetch queries documents with block_number in [start, end].
func (m *MongoProvider) Fetch(ctx context.Context, start, end int) ([]blocks.Point, error) {
	if err := errors.ValidateBlockRange(start, end); err != nil {
		return nil, err
	}
	return instrument(ctx, "mongo", start, end, func() ([]blocks.Point, error) {
		filter := bson.M{"block_number": bson.M{"$gte": start, "$lte": end}}
		opts := options.Find().SetSort(bson.D{{Key: "block_number", Value: 1}, {Key: "_id", Value: 1}})

		cur, err := m.coll.Find(ctx, filter, opts)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeNetwork, err, "query blocks %d..%d", start, end)
		}
		points := []blocks.Point{}
		if err := cur.All(ctx, &points); err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedPayload, err, "decode point documents")
		}
		blocks.AssignPhases(points, m.src)
		return points, nil
	})
}

// Insert writes points as documents. It is used to seed a collection from
// another source.
func (m *MongoProvider) Insert(ctx context.Context, points []blocks.Point) error {
	if len(points) == 0 {
		return nil
	}
	docs := make([]any, len(points))
	for i := range points {
		docs[i] = points[i]
	}
	if _, err := m.coll.InsertMany(ctx, docs); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "insert %d points", len(points))
	}
	return nil
}

// Close disconnects the client.
func (m *MongoProvider) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
