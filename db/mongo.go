package db

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"youth-press/config"
	"youth-press/quota"
)

var (
	clientOnce sync.Once
	client     *mongo.Client
	db         *mongo.Database
)

// Init initializes the global Mongo client and database using config values.
func Init(ctx context.Context) error {
	var initErr error
	clientOnce.Do(func() {
		cfg := config.GetConfig().Mongo

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		cl, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
		if err != nil {
			initErr = err
			return
		}
		// Ping to verify connection
		if err := cl.Ping(ctx, readpref.Primary()); err != nil {
			initErr = err
			return
		}
		client = cl
		db = client.Database(cfg.Database)

		// Ensure indexes for all collections
		if err := ensureIndexes(ctx, db); err != nil {
			initErr = err
			return
		}
		config.InfoWithFields("MongoDB connected and indexes ensured", config.Fields{
			"database": cfg.Database,
		})
	})
	return initErr
}

func Client() *mongo.Client     { return client }
func Database() *mongo.Database { return db }

// Disconnect closes the global client if Init succeeded.
func Disconnect(ctx context.Context) error {
	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}

// Capabilities describes optional fields the deployed schema accepts.
type Capabilities struct {
	// StoreRawResponse is false when the articles validator forbids
	// ai_raw_response.
	StoreRawResponse bool
}

// ProbeCapabilities inspects the articles collection validator once. A
// collection without a validator, or one whose $jsonSchema declares
// ai_raw_response or allows additional properties, can store the field.
func ProbeCapabilities(ctx context.Context, d *mongo.Database) (Capabilities, error) {
	specs, err := d.ListCollectionSpecifications(ctx, bson.D{{Key: "name", Value: "articles"}})
	if err != nil {
		return Capabilities{}, err
	}
	if len(specs) == 0 || specs[0].Options == nil {
		return Capabilities{StoreRawResponse: true}, nil
	}
	return Capabilities{StoreRawResponse: schemaAllowsRaw(specs[0].Options)}, nil
}

func schemaAllowsRaw(collOptions bson.Raw) bool {
	schema, err := collOptions.LookupErr("validator", "$jsonSchema")
	if err != nil {
		return true
	}
	doc, ok := schema.DocumentOK()
	if !ok {
		return true
	}
	if _, err := doc.LookupErr("properties", "ai_raw_response"); err == nil {
		return true
	}
	additional, err := doc.LookupErr("additionalProperties")
	if err != nil {
		return true
	}
	allowed, ok := additional.BooleanOK()
	return !ok || allowed
}

func ensureIndexes(ctx context.Context, d *mongo.Database) error {
	// articles: unique slug, author listing, pending queue
	{
		_, err := d.Collection("articles").Indexes().CreateMany(ctx, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "slug", Value: 1}},
				Options: options.Index().SetName("uniq_slug").SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "author_id", Value: 1}, {Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_author_status_created"),
			},
		})
		if err != nil {
			return err
		}
	}

	// article_media: one slot per article
	if _, err := d.Collection("article_media").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "article_id", Value: 1}, {Key: "sort_order", Value: 1}},
		Options: options.Index().SetName("idx_article_sort"),
	}); err != nil {
		return err
	}

	// discussions: one per article
	if _, err := d.Collection("discussions").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "article_id", Value: 1}},
		Options: options.Index().SetName("uniq_article_id").SetUnique(true),
	}); err != nil {
		return err
	}

	// posts: public reads by discussion, moderator queue by flag
	{
		_, err := d.Collection("posts").Indexes().CreateMany(ctx, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "discussion_id", Value: 1}, {Key: "flagged", Value: 1}, {Key: "created_at", Value: 1}},
				Options: options.Index().SetName("idx_discussion_flagged_created"),
			},
			{
				Keys:    bson.D{{Key: "flagged", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_flagged_created"),
			},
		})
		if err != nil {
			return err
		}
	}

	// moderation_logs: newest first, optionally per moderator
	if _, err := d.Collection("moderation_logs").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "moderator_id", Value: 1}, {Key: "created_at", Value: -1}},
		Options: options.Index().SetName("idx_moderator_created"),
	}); err != nil {
		return err
	}

	// rate_events: count by key, expire after the retention window
	{
		_, err := d.Collection("rate_events").Indexes().CreateMany(ctx, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "key", Value: 1}, {Key: "at", Value: 1}},
				Options: options.Index().SetName("idx_key_at"),
			},
			{
				Keys:    bson.D{{Key: "at", Value: 1}},
				Options: options.Index().SetName("ttl_at").SetExpireAfterSeconds(int32(quota.Retention / time.Second)),
			},
		})
		if err != nil {
			return err
		}
	}

	// ai_logs: per article lookups
	if _, err := d.Collection("ai_logs").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "article_id", Value: 1}, {Key: "requested_at", Value: -1}},
		Options: options.Index().SetName("idx_article_requested"),
	}); err != nil {
		return err
	}
	return nil
}

// IsDuplicateKey reports whether err is a unique index violation.
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

// IsDocumentValidationFailure reports whether the server refused a write
// because the document failed the collection validator (code 121).
func IsDocumentValidationFailure(err error) bool {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 121 {
				return true
			}
		}
	}
	var se mongo.ServerError
	if errors.As(err, &se) {
		return se.HasErrorCode(121)
	}
	return false
}
