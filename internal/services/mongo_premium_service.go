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

type MongoPremiumRequestService struct {
	col *mongo.Collection
}

type mongoPremiumRequestDoc struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	Email       string               `bson:"email"`
	Status      models.PremiumStatus `bson:"status"`
	RequestedAt time.Time            `bson:"requestedAt"`
}

func NewMongoPremiumRequestService(ctx context.Context, db *mongo.Database) *MongoPremiumRequestService {
	col := db.Collection("premiumRequests")

	// Best-effort indexes.
	_, _ = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "requestedAt", Value: 1}}},
	})

	return &MongoPremiumRequestService{col: col}
}

func premiumRequestDocToModel(d mongoPremiumRequestDoc) *models.PremiumRequest {
	status := d.Status
	if status == "" {
		status = models.PremiumPending
	}
	return &models.PremiumRequest{
		ID:          d.ID.Hex(),
		Email:       d.Email,
		Status:      status,
		RequestedAt: d.RequestedAt,
	}
}

func (s *MongoPremiumRequestService) Create(ctx context.Context, req *models.PremiumRequest) (*models.PremiumRequest, error) {
	doc := mongoPremiumRequestDoc{
		ID:          primitive.NewObjectID(),
		Email:       NormalizeEmail(req.Email),
		Status:      req.Status,
		RequestedAt: req.RequestedAt,
	}
	if doc.Status == "" {
		doc.Status = models.PremiumPending
	}
	if doc.RequestedAt.IsZero() {
		doc.RequestedAt = time.Now().UTC()
	}

	if _, err := s.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrPremiumRequestExists
		}
		return nil, err
	}
	return premiumRequestDocToModel(doc), nil
}

func (s *MongoPremiumRequestService) List(ctx context.Context) ([]*models.PremiumRequest, error) {
	cur, err := s.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "requestedAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]*models.PremiumRequest, 0)
	for cur.Next(ctx) {
		var d mongoPremiumRequestDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, premiumRequestDocToModel(d))
	}
	return out, cur.Err()
}

func (s *MongoPremiumRequestService) GetByID(ctx context.Context, id string) (*models.PremiumRequest, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrPremiumRequestNotFound
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

func (s *MongoPremiumRequestService) GetByEmail(ctx context.Context, email string) (*models.PremiumRequest, error) {
	return s.findOne(ctx, bson.M{"email": NormalizeEmail(email)})
}

func (s *MongoPremiumRequestService) SetStatus(ctx context.Context, id string, status models.PremiumStatus) (*models.PremiumRequest, error) {
	if !status.Valid() {
		return nil, ErrInvalidPremiumStatus
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrPremiumRequestNotFound
	}

	var d mongoPremiumRequestDoc
	err = s.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"status": status}},
		options.FindOneAndUpdate().SetReturnDocument(options.Before),
	).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPremiumRequestNotFound
		}
		return nil, err
	}
	return premiumRequestDocToModel(d), nil
}

func (s *MongoPremiumRequestService) Delete(ctx context.Context, id string) (*models.PremiumRequest, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrPremiumRequestNotFound
	}

	var d mongoPremiumRequestDoc
	if err := s.col.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPremiumRequestNotFound
		}
		return nil, err
	}
	return premiumRequestDocToModel(d), nil
}

func (s *MongoPremiumRequestService) DeleteByEmail(ctx context.Context, email string) error {
	_, err := s.col.DeleteMany(ctx, bson.M{"email": NormalizeEmail(email)})
	return err
}

func (s *MongoPremiumRequestService) findOne(ctx context.Context, filter bson.M) (*models.PremiumRequest, error) {
	var d mongoPremiumRequestDoc
	if err := s.col.FindOne(ctx, filter).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPremiumRequestNotFound
		}
		return nil, err
	}
	return premiumRequestDocToModel(d), nil
}
