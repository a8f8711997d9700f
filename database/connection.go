package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const ReportsCollection = "reports"

// MongoSettings tunes the client pool. Zero values fall back to defaults.
type MongoSettings struct {
	MaxPoolSize    uint64
	MinPoolSize    uint64
	ConnectTimeout time.Duration
}

func (s MongoSettings) withDefaults() MongoSettings {
	if s.MaxPoolSize == 0 {
		s.MaxPoolSize = 50
	}
	if s.MinPoolSize == 0 {
		s.MinPoolSize = 2
	}
	if s.ConnectTimeout <= 0 {
		s.ConnectTimeout = 10 * time.Second
	}
	return s
}

// Connect opens the report database and makes sure its indexes exist.
// The returned func disconnects the client.
func Connect(uri, dbName string, settings MongoSettings) (*mongo.Database, func(), error) {
	settings = settings.withDefaults()

	ctx, cancel := context.WithTimeout(context.Background(), settings.ConnectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(settings.MaxPoolSize).
		SetMinPoolSize(settings.MinPoolSize).
		SetMaxConnIdleTime(30 * time.Second).
		SetRetryWrites(true).
		SetRetryReads(true).
		SetReadPreference(readpref.PrimaryPreferred())

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(dbName)
	logrus.Infof("✅ Connected to MongoDB database %s", dbName)

	if err := EnsureMongoIndexes(db); err != nil {
		logrus.Warnf("Index warning: %v", err)
	}

	disconnect := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			logrus.Errorf("Error disconnecting from MongoDB: %v", err)
			return
		}
		logrus.Info("🔌 Disconnected from MongoDB")
	}

	return db, disconnect, nil
}
