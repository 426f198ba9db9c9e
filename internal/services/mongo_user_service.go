package services

import (
	"bytes"
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nightowl/sleepsite/internal/models"
)

type MongoUserService struct {
	usersCol *mongo.Collection
	bucket   *gridfs.Bucket
}

type mongoUserDoc struct {
	ID          string `bson:"_id"`
	GID         string `bson:"gid,omitempty"`
	GName       string `bson:"gname,omitempty"`
	GProfilePic string `bson:"gprofile_pic,omitempty"`
	FirstName   string `bson:"fname,omitempty"`
	LastName    string `bson:"lname,omitempty"`
	Email       string `bson:"email"`
	Pronouns    string `bson:"pronouns,omitempty"`

	Consent        bool   `bson:"consent"`
	AdultFirstName string `bson:"adult_fname,omitempty"`
	AdultLastName  string `bson:"adult_lname,omitempty"`
	AdultEmail     string `bson:"adult_email,omitempty"`

	ImageID          primitive.ObjectID `bson:"image_id,omitempty"`
	ImageContentType string             `bson:"image_content_type,omitempty"`

	CreatedAt time.Time `bson:"created_at"`
}

func NewMongoUserService(ctx context.Context, client *mongo.Client, dbName string) (*MongoUserService, error) {
	db := client.Database(dbName)
	col := db.Collection("users")

	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName("avatars"))
	if err != nil {
		return nil, err
	}

	// Best-effort indexes.
	_, _ = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "gid", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
	})

	log.Printf("MongoDB users collection ready: db=%s", dbName)
	return &MongoUserService{usersCol: col, bucket: bucket}, nil
}

func userDocToModel(d mongoUserDoc) *models.User {
	return &models.User{
		ID:             d.ID,
		GID:            d.GID,
		GName:          d.GName,
		GProfilePic:    d.GProfilePic,
		FirstName:      d.FirstName,
		LastName:       d.LastName,
		Email:          d.Email,
		Pronouns:       d.Pronouns,
		Consent:        d.Consent,
		AdultFirstName: d.AdultFirstName,
		AdultLastName:  d.AdultLastName,
		AdultEmail:     d.AdultEmail,
		CreatedAt:      d.CreatedAt,
	}
}

func (s *MongoUserService) GetByID(id string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var doc mongoUserDoc
	if err := s.usersCol.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return userDocToModel(doc), nil
}

func (s *MongoUserService) GetByEmail(email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var doc mongoUserDoc
	if err := s.usersCol.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return userDocToModel(doc), nil
}

func (s *MongoUserService) UpsertByEmail(profile *models.GoogleProfile) (*models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Provider fields refresh on every login; fname/lname are seeded at
	// creation and then belong to the user.
	set := bson.M{
		"gid":          profile.Sub,
		"gname":        profile.Name,
		"gprofile_pic": profile.Picture,
	}
	setOnInsert := bson.M{
		"_id":        uuid.New().String(),
		"email":      profile.Email,
		"fname":      profile.GivenName,
		"lname":      profile.FamilyName,
		"consent":    false,
		"created_at": time.Now().UTC(),
	}

	_, err := s.usersCol.UpdateOne(
		ctx,
		bson.M{"email": profile.Email},
		bson.M{"$set": set, "$setOnInsert": setOnInsert},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return nil, err
	}

	var doc mongoUserDoc
	if err := s.usersCol.FindOne(ctx, bson.M{"email": profile.Email}).Decode(&doc); err != nil {
		return nil, err
	}
	return userDocToModel(doc), nil
}

func (s *MongoUserService) UpdateProfile(id string, req *models.ProfileRequest) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var doc mongoUserDoc
	if err := s.usersCol.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrUserNotFound
		}
		return err
	}

	set := bson.M{
		"fname":    req.FirstName,
		"lname":    req.LastName,
		"pronouns": req.Pronouns,
	}

	if len(req.Image) > 0 {
		// Drop the previous avatar first so no orphaned files pile up
		// in the bucket.
		if !doc.ImageID.IsZero() {
			if err := s.bucket.Delete(doc.ImageID); err != nil && err != gridfs.ErrFileNotFound {
				return err
			}
		}
		fileID, err := s.bucket.UploadFromStream(id, bytes.NewReader(req.Image))
		if err != nil {
			return err
		}
		set["image_id"] = fileID
		set["image_content_type"] = req.ImageContentType
	}

	_, err := s.usersCol.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return err
}

func (s *MongoUserService) UpdateConsent(id string, req *models.ConsentRequest) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := s.usersCol.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"consent":     req.ConsentValue(),
		"adult_fname": req.AdultFirstName,
		"adult_lname": req.AdultLastName,
		"adult_email": req.AdultEmail,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *MongoUserService) Image(id string) (*models.UserImage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var doc mongoUserDoc
	if err := s.usersCol.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if doc.ImageID.IsZero() {
		return nil, ErrImageNotFound
	}

	var buf bytes.Buffer
	if _, err := s.bucket.DownloadToStream(doc.ImageID, &buf); err != nil {
		if err == gridfs.ErrFileNotFound {
			return nil, ErrImageNotFound
		}
		return nil, err
	}

	return &models.UserImage{
		Data:        buf.Bytes(),
		ContentType: doc.ImageContentType,
	}, nil
}
