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

type MongoMessageService struct {
	col *mongo.Collection
}

type mongoMessageDoc struct {
	ID      primitive.ObjectID `bson:"_id,omitempty"`
	Name    string             `bson:"name"`
	Email   string             `bson:"email"`
	Message string             `bson:"message"`
	Date    time.Time          `bson:"date"`
}

func NewMongoMessageService(ctx context.Context, db *mongo.Database) *MongoMessageService {
	col := db.Collection("messages")
	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "date", Value: -1}}})
	return &MongoMessageService{col: col}
}

func (s *MongoMessageService) Create(ctx context.Context, m *models.ContactMessage) (*models.ContactMessage, error) {
	doc := mongoMessageDoc{
		ID:      primitive.NewObjectID(),
		Name:    m.Name,
		Email:   m.Email,
		Message: m.Message,
		Date:    m.Date,
	}
	if doc.Date.IsZero() {
		doc.Date = time.Now().UTC()
	}

	if _, err := s.col.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	return &models.ContactMessage{ID: doc.ID.Hex(), Name: doc.Name, Email: doc.Email, Message: doc.Message, Date: doc.Date}, nil
}

func (s *MongoMessageService) List(ctx context.Context) ([]*models.ContactMessage, error) {
	cur, err := s.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]*models.ContactMessage, 0)
	for cur.Next(ctx) {
		var d mongoMessageDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, &models.ContactMessage{ID: d.ID.Hex(), Name: d.Name, Email: d.Email, Message: d.Message, Date: d.Date})
	}
	return out, cur.Err()
}

func (s *MongoMessageService) Delete(ctx context.Context, id string) error {
	return deleteByHexID(ctx, s.col, id, ErrMessageNotFound)
}

type MongoStoryService struct {
	col *mongo.Collection
}

type mongoStoryDoc struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	SelfBiodataID    int                `bson:"yourBiodataId"`
	PartnerBiodataID int                `bson:"partnerBiodataId"`
	CoupleImage      string             `bson:"coupleImage"`
	DateOfMarriage   string             `bson:"dateOfMarriage"`
	Review           string             `bson:"review"`
	Rating           float64            `bson:"rating"`
	CreatedAt        time.Time          `bson:"createdAt"`
}

func NewMongoStoryService(ctx context.Context, db *mongo.Database) *MongoStoryService {
	col := db.Collection("successStories")
	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "dateOfMarriage", Value: -1}}})
	return &MongoStoryService{col: col}
}

func storyDocToModel(d mongoStoryDoc) *models.SuccessStory {
	return &models.SuccessStory{
		ID:               d.ID.Hex(),
		SelfBiodataID:    d.SelfBiodataID,
		PartnerBiodataID: d.PartnerBiodataID,
		CoupleImage:      d.CoupleImage,
		DateOfMarriage:   d.DateOfMarriage,
		Review:           d.Review,
		Rating:           d.Rating,
		CreatedAt:        d.CreatedAt,
	}
}

func (s *MongoStoryService) Create(ctx context.Context, st *models.SuccessStory) (*models.SuccessStory, error) {
	doc := mongoStoryDoc{
		ID:               primitive.NewObjectID(),
		SelfBiodataID:    st.SelfBiodataID,
		PartnerBiodataID: st.PartnerBiodataID,
		CoupleImage:      st.CoupleImage,
		DateOfMarriage:   st.DateOfMarriage,
		Review:           st.Review,
		Rating:           st.Rating,
		CreatedAt:        st.CreatedAt,
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	if _, err := s.col.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	return storyDocToModel(doc), nil
}

func (s *MongoStoryService) List(ctx context.Context, limit int) ([]*models.SuccessStory, error) {
	opts := options.Find().SetSort(bson.D{{Key: "dateOfMarriage", Value: -1}, {Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]*models.SuccessStory, 0)
	for cur.Next(ctx) {
		var d mongoStoryDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, storyDocToModel(d))
	}
	return out, cur.Err()
}

func (s *MongoStoryService) Delete(ctx context.Context, id string) error {
	return deleteByHexID(ctx, s.col, id, ErrStoryNotFound)
}

func (s *MongoStoryService) Count(ctx context.Context) (int, error) {
	n, err := s.col.CountDocuments(ctx, bson.M{})
	return int(n), err
}

func deleteByHexID(ctx context.Context, col *mongo.Collection, id string, notFound error) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return notFound
	}
	res, err := col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return notFound
	}
	return nil
}
