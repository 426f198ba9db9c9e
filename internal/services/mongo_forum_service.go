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

type MongoForumService struct {
	blogsCol    *mongo.Collection
	commentsCol *mongo.Collection
}

type mongoBlogDoc struct {
	ID         string    `bson:"_id"`
	AuthorID   string    `bson:"author_id"`
	AuthorName string    `bson:"author_name"`
	Subject    string    `bson:"subject"`
	Content    string    `bson:"content"`
	Tag        string    `bson:"tag"`
	CreatedAt  time.Time `bson:"created_at"`
	ModifiedAt time.Time `bson:"modified_at"`
}

type mongoCommentDoc struct {
	ID         string    `bson:"_id"`
	AuthorID   string    `bson:"author_id"`
	AuthorName string    `bson:"author_name"`
	BlogID     string    `bson:"blog_id"`
	ParentID   string    `bson:"parent_id,omitempty"`
	Content    string    `bson:"content"`
	CreatedAt  time.Time `bson:"created_at"`
	ModifiedAt time.Time `bson:"modified_at"`
}

func NewMongoForumService(ctx context.Context, client *mongo.Client, dbName string) (*MongoForumService, error) {
	db := client.Database(dbName)
	blogs := db.Collection("blogs")
	comments := db.Collection("comments")

	// Best-effort indexes.
	_, _ = blogs.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "author_id", Value: 1}}},
	})
	_, _ = comments.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "blog_id", Value: 1}}},
		{Keys: bson.D{{Key: "parent_id", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})

	log.Printf("MongoDB forum collections ready: db=%s", dbName)
	return &MongoForumService{blogsCol: blogs, commentsCol: comments}, nil
}

func blogDocToModel(d mongoBlogDoc) *models.Blog {
	return &models.Blog{
		ID:         d.ID,
		AuthorID:   d.AuthorID,
		AuthorName: d.AuthorName,
		Subject:    d.Subject,
		Content:    d.Content,
		Tag:        d.Tag,
		CreatedAt:  d.CreatedAt,
		ModifiedAt: d.ModifiedAt,
	}
}

func commentDocToModel(d mongoCommentDoc) *models.Comment {
	return &models.Comment{
		ID:         d.ID,
		AuthorID:   d.AuthorID,
		AuthorName: d.AuthorName,
		BlogID:     d.BlogID,
		ParentID:   d.ParentID,
		Content:    d.Content,
		CreatedAt:  d.CreatedAt,
		ModifiedAt: d.ModifiedAt,
	}
}

func (s *MongoForumService) CreateBlog(authorID, authorName string, req *models.BlogRequest) (*models.Blog, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	now := time.Now().UTC()
	doc := mongoBlogDoc{
		ID:         uuid.New().String(),
		AuthorID:   authorID,
		AuthorName: authorName,
		Subject:    req.Subject,
		Content:    req.Content,
		Tag:        req.Tag,
		CreatedAt:  now,
		ModifiedAt: now,
	}

	if _, err := s.blogsCol.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	return blogDocToModel(doc), nil
}

func (s *MongoForumService) GetBlog(id string) (*models.Blog, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var doc mongoBlogDoc
	if err := s.blogsCol.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrBlogNotFound
		}
		return nil, err
	}
	return blogDocToModel(doc), nil
}

func (s *MongoForumService) UpdateBlog(actorID, id string, req *models.BlogRequest) (*models.Blog, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var doc mongoBlogDoc
	if err := s.blogsCol.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrBlogNotFound
		}
		return nil, err
	}

	if doc.AuthorID != actorID {
		return nil, ErrUnauthorized
	}

	doc.Subject = req.Subject
	doc.Content = req.Content
	doc.Tag = req.Tag
	doc.ModifiedAt = time.Now().UTC()

	_, err := s.blogsCol.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"subject":     doc.Subject,
		"content":     doc.Content,
		"tag":         doc.Tag,
		"modified_at": doc.ModifiedAt,
	}})
	if err != nil {
		return nil, err
	}
	return blogDocToModel(doc), nil
}

func (s *MongoForumService) DeleteBlog(actorID, id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var doc mongoBlogDoc
	if err := s.blogsCol.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrBlogNotFound
		}
		return err
	}

	if doc.AuthorID != actorID {
		return ErrUnauthorized
	}

	// Cascade before removing the blog itself so a crash in between
	// leaves no comments pointing at a live blog.
	if _, err := s.commentsCol.DeleteMany(ctx, bson.M{"blog_id": id}); err != nil {
		return err
	}
	_, err := s.blogsCol.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (s *MongoForumService) ListBlogs() ([]*models.Blog, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cur, err := s.blogsCol.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var results []*models.Blog
	for cur.Next(ctx) {
		var doc mongoBlogDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		results = append(results, blogDocToModel(doc))
	}
	return results, cur.Err()
}

func (s *MongoForumService) CreateComment(authorID, authorName, blogID string, req *models.CommentRequest) (*models.Comment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.blogsCol.FindOne(ctx, bson.M{"_id": blogID}).Err(); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrBlogNotFound
		}
		return nil, err
	}

	now := time.Now().UTC()
	doc := mongoCommentDoc{
		ID:         uuid.New().String(),
		AuthorID:   authorID,
		AuthorName: authorName,
		BlogID:     blogID,
		ParentID:   req.ParentID,
		Content:    req.Content,
		CreatedAt:  now,
		ModifiedAt: now,
	}

	if _, err := s.commentsCol.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	return commentDocToModel(doc), nil
}

func (s *MongoForumService) GetComment(id string) (*models.Comment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var doc mongoCommentDoc
	if err := s.commentsCol.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return commentDocToModel(doc), nil
}

func (s *MongoForumService) UpdateComment(actorID, id string, req *models.CommentRequest) (*models.Comment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var doc mongoCommentDoc
	if err := s.commentsCol.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	if doc.AuthorID != actorID {
		return nil, ErrUnauthorized
	}

	doc.Content = req.Content
	doc.ModifiedAt = time.Now().UTC()

	_, err := s.commentsCol.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"content":     doc.Content,
		"modified_at": doc.ModifiedAt,
	}})
	if err != nil {
		return nil, err
	}
	return commentDocToModel(doc), nil
}

func (s *MongoForumService) DeleteComment(id string) (*models.Comment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var doc mongoCommentDoc
	if err := s.commentsCol.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	// Cascade replies breadth-first. Reply chains are shallow in
	// practice; one query per level is fine.
	ids := []string{id}
	for len(ids) > 0 {
		cur, err := s.commentsCol.Find(ctx, bson.M{"parent_id": bson.M{"$in": ids}})
		if err != nil {
			return nil, err
		}
		var next []string
		for cur.Next(ctx) {
			var child mongoCommentDoc
			if err := cur.Decode(&child); err != nil {
				cur.Close(ctx)
				return nil, err
			}
			next = append(next, child.ID)
		}
		cur.Close(ctx)
		if len(next) == 0 {
			break
		}
		if _, err := s.commentsCol.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": next}}); err != nil {
			return nil, err
		}
		ids = next
	}

	return commentDocToModel(doc), nil
}

func (s *MongoForumService) ListComments(blogID string) ([]*models.Comment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cur, err := s.commentsCol.Find(ctx, bson.M{"blog_id": blogID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var results []*models.Comment
	for cur.Next(ctx) {
		var doc mongoCommentDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		results = append(results, commentDocToModel(doc))
	}
	return results, cur.Err()
}
