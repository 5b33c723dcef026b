package ingestion

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/veritasworks/veritas-core/internal/models"
	"github.com/veritasworks/veritas-core/internal/monitoring"
	"github.com/veritasworks/veritas-core/pkg/logger"
)

const cleanedArticlesCollection = "cleaned_articles"

// processedMarker is the flag this layer sets on documents it has consumed.
const processedMarker = "trust_processed"

// MongoSource reads cleaned articles from MongoDB and writes back the
// processed marker plus the validation result blob.
type MongoSource struct {
	coll *mongo.Collection
	log  logger.Logger
}

// ConnectMongo dials the cleaned-articles store and verifies the connection
// with a ping before returning a source.
func ConnectMongo(ctx context.Context, url, database string, log logger.Logger) (*MongoSource, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(url))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w: %v", models.ErrTransientStore, err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping mongo: %w: %v", models.ErrTransientStore, err)
	}
	log.Info("connected to cleaned-articles store", "database", database)
	return NewMongoSource(client.Database(database), log), nil
}

// NewMongoSource wraps an already connected database handle.
func NewMongoSource(db *mongo.Database, log logger.Logger) *MongoSource {
	return &MongoSource{coll: db.Collection(cleanedArticlesCollection), log: log}
}

// FetchUnprocessed returns cleaned articles this layer has not consumed yet,
// filtered by minimum credibility, oldest first.
func (m *MongoSource) FetchUnprocessed(ctx context.Context, limit, skip int64, minQuality float64) ([]*models.Article, error) {
	filter := bson.M{
		processedMarker:    bson.M{"$ne": true},
		"quality.is_clean": true,
	}
	if minQuality > 0 {
		filter["quality.credibility_score"] = bson.M{"$gte": minQuality}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "extraction.publish_timestamp", Value: 1}}).
		SetLimit(limit).
		SetSkip(skip)
	return m.fetch(ctx, "fetch_unprocessed", filter, opts)
}

// FetchSince returns cleaned articles published at or after the given time.
func (m *MongoSource) FetchSince(ctx context.Context, since time.Time, limit int64) ([]*models.Article, error) {
	filter := bson.M{
		"quality.is_clean":             true,
		"extraction.publish_timestamp": bson.M{"$gte": since},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "extraction.publish_timestamp", Value: 1}}).
		SetLimit(limit)
	return m.fetch(ctx, "fetch_since", filter, opts)
}

// FetchByIDs returns the named articles, skipping unknown ids.
func (m *MongoSource) FetchByIDs(ctx context.Context, ids []string) ([]*models.Article, error) {
	filter := bson.M{"article_id": bson.M{"$in": ids}}
	return m.fetch(ctx, "fetch_by_ids", filter, options.Find())
}

// MarkProcessed flags the document and stores the validation result on it.
func (m *MongoSource) MarkProcessed(ctx context.Context, articleID string, result *models.ValidationResult) error {
	update := bson.M{"$set": bson.M{
		processedMarker:      true,
		"trust_processed_at": time.Now().UTC(),
		"validation_result":  result,
	}}
	res, err := m.coll.UpdateOne(ctx, bson.M{"article_id": articleID}, update)
	monitoring.RecordStoreOperation("mark_processed", "mongo", err)
	if err != nil {
		return fmt.Errorf("mark processed %s: %w: %v", articleID, models.ErrTransientStore, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("mark processed %s: %w", articleID, models.ErrNotFound)
	}
	return nil
}

// CountUnprocessed reports the backlog size.
func (m *MongoSource) CountUnprocessed(ctx context.Context) (int64, error) {
	n, err := m.coll.CountDocuments(ctx, bson.M{
		processedMarker:    bson.M{"$ne": true},
		"quality.is_clean": true,
	})
	monitoring.RecordStoreOperation("count_unprocessed", "mongo", err)
	if err != nil {
		return 0, fmt.Errorf("count unprocessed: %w: %v", models.ErrTransientStore, err)
	}
	return n, nil
}

// fetch runs one query and normalizes every returned document. Malformed
// documents are counted and skipped, never returned as errors: one bad row
// must not stall the batch.
func (m *MongoSource) fetch(ctx context.Context, operation string, filter bson.M, opts *options.FindOptions) ([]*models.Article, error) {
	cursor, err := m.coll.Find(ctx, filter, opts)
	monitoring.RecordStoreOperation(operation, "mongo", err)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", operation, models.ErrTransientStore, err)
	}
	defer cursor.Close(ctx)

	var out []*models.Article
	for cursor.Next(ctx) {
		var doc articleDocument
		if err := cursor.Decode(&doc); err != nil {
			m.log.Warn("cleaned article decode failed", "operation", operation, "error", err)
			monitoring.RecordError("decode_failed", "ingestion")
			continue
		}
		article, err := normalizeDocument(&doc)
		if err != nil {
			m.log.Warn("cleaned article rejected", "article_id", doc.ArticleID, "error", err)
			monitoring.RecordArticleProcessed("skipped")
			continue
		}
		out = append(out, article)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", operation, models.ErrTransientStore, err)
	}
	return out, nil
}
