package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bengalmatrimony/backend/internal/models"
)

type MongoUserService struct {
	col *mongo.Collection
}

type mongoUserDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Email          string             `bson:"email"`
	Name           string             `bson:"name"`
	Photo          string             `bson:"photo,omitempty"`
	Role           models.Role        `bson:"role"`
	Premium        models.BoolFlag    `bson:"premium"`
	ImageStrikes   int                `bson:"imageStrikes,omitempty"`
	CreationTime   time.Time          `bson:"creationTime"`
	LastSignInTime time.Time          `bson:"lastSignInTime"`
}

func NewMongoUserService(ctx context.Context, db *mongo.Database) *MongoUserService {
	col := db.Collection("users")

	// Best-effort indexes.
	_, _ = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "creationTime", Value: 1}}},
	})

	return &MongoUserService{col: col}
}

func userDocToModel(d mongoUserDoc) *models.User {
	role := d.Role
	if role == "" {
		role = models.RoleUser
	}
	return &models.User{
		ID:             d.ID.Hex(),
		Email:          d.Email,
		Name:           d.Name,
		Photo:          d.Photo,
		Role:           role,
		Premium:        d.Premium,
		ImageStrikes:   d.ImageStrikes,
		CreationTime:   d.CreationTime,
		LastSignInTime: d.LastSignInTime,
	}
}

func (s *MongoUserService) Create(ctx context.Context, u *models.User) (*models.User, error) {
	role := u.Role
	if role == "" {
		role = models.RoleUser
	}
	doc := mongoUserDoc{
		ID:             primitive.NewObjectID(),
		Email:          NormalizeEmail(u.Email),
		Name:           u.Name,
		Photo:          u.Photo,
		Role:           role,
		Premium:        u.Premium,
		CreationTime:   u.CreationTime,
		LastSignInTime: u.LastSignInTime,
	}

	if _, err := s.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	return userDocToModel(doc), nil
}

func (s *MongoUserService) List(ctx context.Context) ([]*models.User, error) {
	cur, err := s.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "creationTime", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]*models.User, 0)
	for cur.Next(ctx) {
		var d mongoUserDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, userDocToModel(d))
	}
	return out, cur.Err()
}

func (s *MongoUserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

func (s *MongoUserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": NormalizeEmail(email)})
}

func (s *MongoUserService) UpdateLastSignIn(ctx context.Context, email string, at time.Time) error {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"email": NormalizeEmail(email)},
		bson.M{"$set": bson.M{"lastSignInTime": at}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *MongoUserService) UpdateProfile(ctx context.Context, email string, req *models.UpdateProfileRequest) (*models.User, error) {
	set := bson.M{}
	if req.Name != nil {
		set["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Photo != nil {
		set["photo"] = strings.TrimSpace(*req.Photo)
	}
	if len(set) == 0 {
		return s.GetByEmail(ctx, email)
	}
	return s.update(ctx, bson.M{"email": NormalizeEmail(email)}, bson.M{"$set": set})
}

func (s *MongoUserService) SetRole(ctx context.Context, id string, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return s.update(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"role": role}})
}

func (s *MongoUserService) SetPremium(ctx context.Context, id string, premium bool) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return s.update(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"premium": premium}})
}

func (s *MongoUserService) SetPremiumByEmail(ctx context.Context, email string, premium bool) (*models.User, error) {
	return s.update(ctx, bson.M{"email": NormalizeEmail(email)}, bson.M{"$set": bson.M{"premium": premium}})
}

func (s *MongoUserService) AddStrike(ctx context.Context, email string) error {
	_, err := s.update(ctx, bson.M{"email": NormalizeEmail(email)}, bson.M{"$inc": bson.M{"imageStrikes": 1}})
	return err
}

func (s *MongoUserService) Delete(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUserNotFound
	}

	var d mongoUserDoc
	if err := s.col.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return userDocToModel(d), nil
}

func (s *MongoUserService) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var d mongoUserDoc
	if err := s.col.FindOne(ctx, filter).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return userDocToModel(d), nil
}

func (s *MongoUserService) update(ctx context.Context, filter bson.M, update bson.M) (*models.User, error) {
	var d mongoUserDoc
	err := s.col.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return userDocToModel(d), nil
}
