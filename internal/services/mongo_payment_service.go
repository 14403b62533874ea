package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bengalmatrimony/backend/internal/models"
)

// MongoPaymentService is the payments ledger. It only ever inserts.
type MongoPaymentService struct {
	col *mongo.Collection
}

type mongoPaymentDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	BiodataID int                `bson:"biodataId,omitempty"`
	Amount    int64              `bson:"amount"`
	Currency  string             `bson:"currency,omitempty"`
	PaymentID string             `bson:"paymentId"`
	Status    string             `bson:"status"`
	Date      time.Time          `bson:"date"`
}

func NewMongoPaymentService(ctx context.Context, db *mongo.Database) *MongoPaymentService {
	col := db.Collection("payments")

	// Best-effort indexes.
	_, _ = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "paymentId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "date", Value: -1}}},
	})

	return &MongoPaymentService{col: col}
}

func paymentDocToModel(d mongoPaymentDoc) *models.Payment {
	return &models.Payment{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Email:     d.Email,
		BiodataID: d.BiodataID,
		Amount:    d.Amount,
		Currency:  d.Currency,
		PaymentID: d.PaymentID,
		Status:    d.Status,
		Date:      d.Date,
	}
}

func (s *MongoPaymentService) Record(ctx context.Context, p *models.Payment) (*models.Payment, error) {
	doc := mongoPaymentDoc{
		ID:        primitive.NewObjectID(),
		Name:      p.Name,
		Email:     NormalizeEmail(p.Email),
		BiodataID: p.BiodataID,
		Amount:    p.Amount,
		Currency:  p.Currency,
		PaymentID: p.PaymentID,
		Status:    p.Status,
		Date:      p.Date,
	}

	if _, err := s.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrPaymentExists
		}
		return nil, err
	}
	return paymentDocToModel(doc), nil
}

func (s *MongoPaymentService) List(ctx context.Context) ([]*models.Payment, error) {
	return s.find(ctx, bson.M{})
}

func (s *MongoPaymentService) ListByEmail(ctx context.Context, email string) ([]*models.Payment, error) {
	return s.find(ctx, bson.M{"email": NormalizeEmail(email)})
}

func (s *MongoPaymentService) UnlockedBiodataIDs(ctx context.Context, email string) ([]int, error) {
	cur, err := s.col.Find(ctx,
		bson.M{"email": NormalizeEmail(email), "status": models.PaymentStatusSucceeded},
		options.Find().SetProjection(bson.M{"biodataId": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	ids := make([]int, 0)
	for cur.Next(ctx) {
		var d mongoPaymentDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		ids = append(ids, d.BiodataID)
	}
	return ids, cur.Err()
}

func (s *MongoPaymentService) find(ctx context.Context, filter bson.M) ([]*models.Payment, error) {
	cur, err := s.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]*models.Payment, 0)
	for cur.Next(ctx) {
		var d mongoPaymentDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, paymentDocToModel(d))
	}
	return out, cur.Err()
}
