package services

import (
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bengalmatrimony/backend/internal/models"
)

const biodataCounterID = "biodataId"

type MongoBiodataService struct {
	col      *mongo.Collection
	counters *mongo.Collection
}

type mongoCounterDoc struct {
	ID  string `bson:"_id"`
	Seq int    `bson:"seq"`
}

// NewMongoBiodataService wires the biodatas collection and seeds the id
// counter so it never hands out an id already in use.
func NewMongoBiodataService(ctx context.Context, db *mongo.Database) (*MongoBiodataService, error) {
	col := db.Collection("biodatas")
	counters := db.Collection("counters")

	// Best-effort indexes.
	_, _ = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "biodataId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "contactEmail", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "age", Value: 1}}},
		{Keys: bson.D{{Key: "premium", Value: 1}}},
	})

	svc := &MongoBiodataService{col: col, counters: counters}
	if err := svc.seedCounter(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *MongoBiodataService) seedCounter(ctx context.Context) error {
	var top models.Biodata
	err := s.col.FindOne(ctx, bson.M{},
		options.FindOne().SetSort(bson.D{{Key: "biodataId", Value: -1}}).SetProjection(bson.M{"biodataId": 1}),
	).Decode(&top)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}

	_, err = s.counters.UpdateOne(ctx,
		bson.M{"_id": biodataCounterID},
		bson.M{"$max": bson.M{"seq": top.BiodataID}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return err
	}
	log.Printf("[Biodata] counter seeded max=%d", top.BiodataID)
	return nil
}

func (s *MongoBiodataService) nextID(ctx context.Context) (int, error) {
	var c mongoCounterDoc
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": biodataCounterID},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&c)
	if err != nil {
		return 0, err
	}
	return c.Seq, nil
}

func (s *MongoBiodataService) List(ctx context.Context) ([]*models.Biodata, error) {
	return s.find(ctx, bson.M{}, 0)
}

func (s *MongoBiodataService) ListPremium(ctx context.Context, limit int) ([]*models.Biodata, error) {
	return s.find(ctx, bson.M{"premium": bson.M{"$in": models.PremiumFilterValues}}, limit)
}

func (s *MongoBiodataService) GetByID(ctx context.Context, id int) (*models.Biodata, error) {
	var b models.Biodata
	if err := s.col.FindOne(ctx, bson.M{"biodataId": id}).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrBiodataNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (s *MongoBiodataService) ListByEmail(ctx context.Context, email string) ([]*models.Biodata, error) {
	return s.find(ctx, bson.M{"contactEmail": NormalizeEmail(email)}, 0)
}

func (s *MongoBiodataService) Create(ctx context.Context, email string, in *models.BiodataInput) (*models.Biodata, error) {
	email = NormalizeEmail(email)

	n, err := s.col.CountDocuments(ctx, bson.M{"contactEmail": email})
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, ErrBiodataExists
	}

	id, err := s.nextID(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	b := &models.Biodata{
		BiodataID:    id,
		ContactEmail: email,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	in.ApplyTo(b)

	if _, err := s.col.InsertOne(ctx, b); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrBiodataExists
		}
		return nil, err
	}
	return b, nil
}

func (s *MongoBiodataService) Update(ctx context.Context, id int, in *models.BiodataInput) (*models.Biodata, error) {
	set := in.SetFields()
	set["updatedAt"] = time.Now().UTC()

	var b models.Biodata
	err := s.col.FindOneAndUpdate(ctx,
		bson.M{"biodataId": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&b)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrBiodataNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (s *MongoBiodataService) SetPremiumByEmail(ctx context.Context, email string, premium bool) error {
	_, err := s.col.UpdateMany(ctx,
		bson.M{"contactEmail": NormalizeEmail(email)},
		bson.M{"$set": bson.M{"premium": premium}},
	)
	return err
}

func (s *MongoBiodataService) ReplaceProfileImage(ctx context.Context, from, to string) (int, error) {
	res, err := s.col.UpdateMany(ctx,
		bson.M{"profileImage": from},
		bson.M{"$set": bson.M{"profileImage": to, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return 0, err
	}
	return int(res.ModifiedCount), nil
}

func (s *MongoBiodataService) Delete(ctx context.Context, id int) (*models.Biodata, error) {
	var b models.Biodata
	if err := s.col.FindOneAndDelete(ctx, bson.M{"biodataId": id}).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrBiodataNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (s *MongoBiodataService) Stats(ctx context.Context) (*models.BiodataStats, error) {
	count := func(filter bson.M) (int, error) {
		n, err := s.col.CountDocuments(ctx, filter)
		return int(n), err
	}

	var st models.BiodataStats
	var err error
	if st.Total, err = count(bson.M{}); err != nil {
		return nil, err
	}
	if st.Male, err = count(bson.M{"biodataType": "Male"}); err != nil {
		return nil, err
	}
	if st.Female, err = count(bson.M{"biodataType": "Female"}); err != nil {
		return nil, err
	}
	if st.Premium, err = count(bson.M{"premium": bson.M{"$in": models.PremiumFilterValues}}); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *MongoBiodataService) find(ctx context.Context, filter bson.M, limit int) ([]*models.Biodata, error) {
	opts := options.Find().SetSort(bson.D{{Key: "age", Value: 1}, {Key: "biodataId", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]*models.Biodata, 0)
	for cur.Next(ctx) {
		var b models.Biodata
		if err := cur.Decode(&b); err != nil {
			return nil, err
		}
		out = append(out, &b)
	}
	return out, cur.Err()
}
