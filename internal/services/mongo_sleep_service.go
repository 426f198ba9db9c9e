package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nightowl/sleepsite/internal/models"
)

type MongoSleepService struct {
	sleepsCol *mongo.Collection
}

type mongoSleepDoc struct {
	ID          string    `bson:"_id"`
	SleeperID   string    `bson:"sleeper_id"`
	Rating      int       `bson:"rating"`
	Feel        int       `bson:"feel"`
	Start       time.Time `bson:"start"`
	End         time.Time `bson:"end"`
	SleepDate   time.Time `bson:"sleep_date"`
	Hours       float64   `bson:"hours"`
	MinsToSleep int       `bson:"minstosleep"`
}

func NewMongoSleepService(ctx context.Context, client *mongo.Client, dbName string) (*MongoSleepService, error) {
	col := client.Database(dbName).Collection("sleeps")

	// Best-effort indexes.
	_, _ = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "sleep_date", Value: 1}}},
		{Keys: bson.D{{Key: "sleeper_id", Value: 1}}},
	})

	log.Printf("MongoDB sleeps collection ready: db=%s", dbName)
	return &MongoSleepService{sleepsCol: col}, nil
}

func sleepDocToModel(d mongoSleepDoc) *models.Sleep {
	return &models.Sleep{
		ID:          d.ID,
		SleeperID:   d.SleeperID,
		Rating:      d.Rating,
		Feel:        d.Feel,
		Start:       d.Start,
		End:         d.End,
		SleepDate:   d.SleepDate,
		Hours:       d.Hours,
		MinsToSleep: d.MinsToSleep,
	}
}

func (s *MongoSleepService) Create(sleeperID string, req *models.SleepRequest) (*models.Sleep, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	doc := mongoSleepDoc{
		ID:          uuid.New().String(),
		SleeperID:   sleeperID,
		Rating:      req.Rating,
		Feel:        req.Feel,
		Start:       req.Start,
		End:         req.End,
		SleepDate:   req.SleepDate(),
		Hours:       req.Hours(),
		MinsToSleep: req.MinsToSleep,
	}

	if _, err := s.sleepsCol.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	return sleepDocToModel(doc), nil
}

func (s *MongoSleepService) GetByID(id string) (*models.Sleep, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var doc mongoSleepDoc
	if err := s.sleepsCol.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrSleepNotFound
		}
		return nil, err
	}
	return sleepDocToModel(doc), nil
}

func (s *MongoSleepService) Update(actorID, id string, req *models.SleepRequest) (*models.Sleep, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var doc mongoSleepDoc
	if err := s.sleepsCol.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrSleepNotFound
		}
		return nil, err
	}

	if doc.SleeperID != actorID {
		return nil, ErrUnauthorized
	}

	doc.Rating = req.Rating
	doc.Feel = req.Feel
	doc.Start = req.Start
	doc.End = req.End
	doc.SleepDate = req.SleepDate()
	doc.Hours = req.Hours()
	doc.MinsToSleep = req.MinsToSleep

	_, err := s.sleepsCol.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"rating":      doc.Rating,
		"feel":        doc.Feel,
		"start":       doc.Start,
		"end":         doc.End,
		"sleep_date":  doc.SleepDate,
		"hours":       doc.Hours,
		"minstosleep": doc.MinsToSleep,
	}})
	if err != nil {
		return nil, err
	}
	return sleepDocToModel(doc), nil
}

func (s *MongoSleepService) Delete(id string) (*models.Sleep, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var doc mongoSleepDoc
	if err := s.sleepsCol.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrSleepNotFound
		}
		return nil, err
	}
	return sleepDocToModel(doc), nil
}

func (s *MongoSleepService) ListAll() ([]*models.Sleep, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cur, err := s.sleepsCol.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "sleep_date", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var results []*models.Sleep
	for cur.Next(ctx) {
		var doc mongoSleepDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		results = append(results, sleepDocToModel(doc))
	}
	return results, cur.Err()
}
