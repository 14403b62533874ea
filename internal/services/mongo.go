package services

import (
	"context"
	"crypto/tls"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectMongo dials and pings the cluster. All Mongo stores share the
// returned client.
func ConnectMongo(ctx context.Context, mongoURI, dbName string) (*mongo.Client, *mongo.Database, error) {
	// Atlas occasionally fails TLS negotiation in some environments unless we force TLS 1.2.
	opts := options.Client().ApplyURI(mongoURI)
	if opts.TLSConfig != nil {
		opts.SetTLSConfig(&tls.Config{
			MinVersion: tls.VersionTLS12,
			MaxVersion: tls.VersionTLS12,
		})
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, err
	}

	log.Printf("MongoDB connected: db=%s", dbName)
	return client, client.Database(dbName), nil
}

// MongoTransactor runs fn inside a multi-document transaction when the
// deployment supports one (replica set or sharded cluster). On a
// standalone server fn runs without a transaction.
type MongoTransactor struct {
	client    *mongo.Client
	supported bool
}

func NewMongoTransactor(ctx context.Context, client *mongo.Client) *MongoTransactor {
	var hello struct {
		SetName string `bson:"setName"`
		Msg     string `bson:"msg"`
	}
	err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&hello)
	supported := err == nil && (hello.SetName != "" || hello.Msg == "isdbgrid")
	if !supported {
		log.Printf("[Mongo] transactions unavailable, running unwrapped err=%v", err)
	}
	return &MongoTransactor{client: client, supported: supported}
}

func (t *MongoTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !t.supported {
		return fn(ctx)
	}

	sess, err := t.client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
