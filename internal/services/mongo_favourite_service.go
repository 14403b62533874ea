package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bengalmatrimony/backend/internal/models"
)

type MongoFavouriteService struct {
	col *mongo.Collection
}

type mongoFavouriteDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserEmail   string             `bson:"userEmail"`
	BiodataID   int                `bson:"biodataId"`
	Biodata     models.Biodata     `bson:"biodata"`
	IsFavourite bool               `bson:"isFavourite"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func NewMongoFavouriteService(ctx context.Context, db *mongo.Database) *MongoFavouriteService {
	col := db.Collection("favourites")

	// Best-effort indexes.
	_, _ = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userEmail", Value: 1}, {Key: "biodataId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})

	return &MongoFavouriteService{col: col}
}

func favouriteDocToModel(d mongoFavouriteDoc) *models.Favourite {
	return &models.Favourite{
		ID:          d.ID.Hex(),
		UserEmail:   d.UserEmail,
		BiodataID:   d.BiodataID,
		Biodata:     d.Biodata,
		IsFavourite: d.IsFavourite,
		CreatedAt:   d.CreatedAt,
	}
}

func (s *MongoFavouriteService) Add(ctx context.Context, f *models.Favourite) (*models.Favourite, error) {
	doc := mongoFavouriteDoc{
		ID:          primitive.NewObjectID(),
		UserEmail:   NormalizeEmail(f.UserEmail),
		BiodataID:   f.BiodataID,
		Biodata:     f.Biodata,
		IsFavourite: true,
		CreatedAt:   f.CreatedAt,
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	if _, err := s.col.InsertOne(ctx, doc); err != nil {
		// Duplicate key (already favourited).
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrAlreadyFavourited
		}
		return nil, err
	}
	return favouriteDocToModel(doc), nil
}

func (s *MongoFavouriteService) ListByEmail(ctx context.Context, email string) ([]*models.Favourite, error) {
	cur, err := s.col.Find(ctx,
		bson.M{"userEmail": NormalizeEmail(email)},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]*models.Favourite, 0)
	for cur.Next(ctx) {
		var d mongoFavouriteDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, favouriteDocToModel(d))
	}
	return out, cur.Err()
}

func (s *MongoFavouriteService) GetByID(ctx context.Context, id string) (*models.Favourite, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrFavouriteNotFound
	}

	var d mongoFavouriteDoc
	if err := s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrFavouriteNotFound
		}
		return nil, err
	}
	return favouriteDocToModel(d), nil
}

func (s *MongoFavouriteService) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrFavouriteNotFound
	}

	res, err := s.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrFavouriteNotFound
	}
	return nil
}

func (s *MongoFavouriteService) DeleteByEmail(ctx context.Context, email string) error {
	_, err := s.col.DeleteMany(ctx, bson.M{"userEmail": NormalizeEmail(email)})
	return err
}
