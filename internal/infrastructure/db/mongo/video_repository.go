package mongo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tubehub/api/internal/core/domain"
	"github.com/tubehub/api/internal/core/ports"
)

const collectionVideos = "videos"

// VideoRepository stores video metadata. Reads go through an aggregation
// that joins the owning user from the users collection.
type VideoRepository struct {
	col *mongo.Collection
}

func NewVideoRepository(db *mongo.Database) *VideoRepository {
	return &VideoRepository{col: db.Collection(collectionVideos)}
}

type mongoVideo struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	VideoFile   mongoMedia         `bson:"videoFile"`
	Thumbnail   mongoMedia         `bson:"thumbnail"`
	Duration    float64            `bson:"duration"`
	Views       int64              `bson:"views"`
	Likes       int64              `bson:"likes"`
	Shares      int64              `bson:"shares"`
	IsPublished bool               `bson:"isPublished"`
	Owner       primitive.ObjectID `bson:"owner"`
	Category    string             `bson:"category"`
	Tags        []string           `bson:"tags"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`

	// OwnerDoc is only filled by the owner lookup; it is never stored.
	OwnerDoc *mongoVideoOwner `bson:"ownerDoc,omitempty"`
}

type mongoVideoOwner struct {
	ID       primitive.ObjectID `bson:"_id"`
	Username string             `bson:"username"`
	FullName string             `bson:"fullName"`
	Avatar   *mongoMedia        `bson:"avatar,omitempty"`
}

// ownerLookup joins the public owner fields into ownerDoc.
func ownerLookup() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: collectionUsers},
			{Key: "localField", Value: "owner"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "ownerDoc"},
			{Key: "pipeline", Value: bson.A{
				bson.D{{Key: "$project", Value: bson.D{
					{Key: "username", Value: 1},
					{Key: "fullName", Value: 1},
					{Key: "avatar", Value: 1},
				}}},
			}},
		}}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "ownerDoc", Value: bson.D{{Key: "$first", Value: "$ownerDoc"}}},
		}}},
	}
}

func (r *VideoRepository) Create(ctx context.Context, v *domain.Video) (*domain.Video, error) {
	owner, err := primitive.ObjectIDFromHex(v.Owner.ID)
	if err != nil {
		return nil, domain.ErrInvalidOwnerID
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoVideo{
		Title:       v.Title,
		Description: v.Description,
		VideoFile:   mongoMedia{PublicID: v.VideoFile.PublicID, URL: v.VideoFile.URL},
		Thumbnail:   mongoMedia{PublicID: v.Thumbnail.PublicID, URL: v.Thumbnail.URL},
		Duration:    v.Duration,
		IsPublished: v.IsPublished,
		Owner:       owner,
		Category:    v.Category,
		Tags:        v.Tags,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
	if doc.Tags == nil {
		doc.Tags = []string{}
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert video: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return fromMongoVideo(&doc), nil
}

func (r *VideoRepository) FindByID(ctx context.Context, id string) (*domain.Video, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrVideoNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := append(mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "_id", Value: oid}}}},
	}, ownerLookup()...)

	rows, err := r.aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrVideoNotFound
	}
	return fromMongoVideo(&rows[0]), nil
}

func (r *VideoRepository) IncrementViews(ctx context.Context, id string) (*domain.Video, error) {
	if err := r.increment(ctx, id, "views"); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *VideoRepository) IncrementShares(ctx context.Context, id string) error {
	return r.increment(ctx, id, "shares")
}

func (r *VideoRepository) increment(ctx context.Context, id, field string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrVideoNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$inc": bson.M{field: 1}})
	if err != nil {
		return fmt.Errorf("increment video %s: %w", field, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrVideoNotFound
	}
	return nil
}

// List runs the filter as the first $match, then sorts and pages before
// joining owners so the lookup only touches the returned page.
func (r *VideoRepository) List(ctx context.Context, filter ports.ListVideosFilter) ([]*domain.Video, int64, error) {
	match, err := videoListMatch(filter)
	if err != nil {
		return nil, 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	total, err := r.col.CountDocuments(ctx, match)
	if err != nil {
		return nil, 0, fmt.Errorf("count videos: %w", err)
	}

	direction := -1
	if filter.Ascending {
		direction = 1
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: filter.SortBy, Value: direction}, {Key: "_id", Value: direction}}}},
		{{Key: "$skip", Value: int64((filter.Page - 1) * filter.Limit)}},
		{{Key: "$limit", Value: int64(filter.Limit)}},
	}
	pipeline = append(pipeline, ownerLookup()...)

	rows, err := r.aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, err
	}

	videos := make([]*domain.Video, 0, len(rows))
	for i := range rows {
		videos = append(videos, fromMongoVideo(&rows[i]))
	}
	return videos, total, nil
}

// videoListMatch builds the $match document of a listing. The search text
// is escaped so it matches literally.
func videoListMatch(filter ports.ListVideosFilter) (bson.D, error) {
	match := bson.D{}
	if filter.OwnerID != "" {
		owner, err := primitive.ObjectIDFromHex(filter.OwnerID)
		if err != nil {
			return nil, domain.ErrInvalidOwnerID
		}
		match = append(match, bson.E{Key: "owner", Value: owner})
	}
	if filter.Query != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Query), Options: "i"}
		match = append(match, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "title", Value: re}},
			bson.D{{Key: "description", Value: re}},
			bson.D{{Key: "tags", Value: re}},
		}})
	}
	if !filter.IncludeUnpublished {
		match = append(match, bson.E{Key: "isPublished", Value: true})
	}
	return match, nil
}

func (r *VideoRepository) Update(ctx context.Context, id, ownerID string, update ports.VideoUpdate) (*domain.Video, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Category != nil {
		set["category"] = *update.Category
	}
	if update.Tags != nil {
		set["tags"] = *update.Tags
	}
	if update.IsPublished != nil {
		set["isPublished"] = *update.IsPublished
	}
	if update.Thumbnail != nil {
		set["thumbnail"] = mongoMedia{PublicID: update.Thumbnail.PublicID, URL: update.Thumbnail.URL}
	}

	if err := r.updateOwned(ctx, id, ownerID, bson.M{"$set": set}); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// TogglePublish flips isPublished server-side with an update pipeline.
func (r *VideoRepository) TogglePublish(ctx context.Context, id, ownerID string) (*domain.Video, error) {
	toggle := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "isPublished", Value: bson.D{{Key: "$not", Value: bson.A{"$isPublished"}}}},
			{Key: "updatedAt", Value: "$$NOW"},
		}}},
	}
	if err := r.updateOwned(ctx, id, ownerID, toggle); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *VideoRepository) Delete(ctx context.Context, id, ownerID string) error {
	filter, err := ownedFilter(id, ownerID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrVideoNotOwned
	}
	return nil
}

func (r *VideoRepository) updateOwned(ctx context.Context, id, ownerID string, update any) error {
	filter, err := ownedFilter(id, ownerID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update video: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrVideoNotOwned
	}
	return nil
}

// ownedFilter matches a video only through its owner.
func ownedFilter(id, ownerID string) (bson.M, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrVideoNotOwned
	}
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, domain.ErrVideoNotOwned
	}
	return bson.M{"_id": oid, "owner": owner}, nil
}

func (r *VideoRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]mongoVideo, error) {
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate videos: %w", err)
	}

	var rows []mongoVideo
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode videos: %w", err)
	}
	return rows, nil
}

// EnsureIndexes creates the indexes used by owner listings and the public
// feed.
func (r *VideoRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "isPublished", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "title", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func fromMongoVideo(row *mongoVideo) *domain.Video {
	v := &domain.Video{
		ID:          row.ID.Hex(),
		Title:       row.Title,
		Description: row.Description,
		VideoFile:   domain.MediaRef{PublicID: row.VideoFile.PublicID, URL: row.VideoFile.URL},
		Thumbnail:   domain.MediaRef{PublicID: row.Thumbnail.PublicID, URL: row.Thumbnail.URL},
		Duration:    row.Duration,
		Views:       row.Views,
		Likes:       row.Likes,
		Shares:      row.Shares,
		IsPublished: row.IsPublished,
		Owner:       domain.VideoOwner{ID: row.Owner.Hex()},
		Category:    row.Category,
		Tags:        row.Tags,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if v.Tags == nil {
		v.Tags = []string{}
	}
	if o := row.OwnerDoc; o != nil {
		v.Owner.Username = o.Username
		v.Owner.FullName = o.FullName
		if o.Avatar != nil {
			v.Owner.Avatar = &domain.MediaRef{PublicID: o.Avatar.PublicID, URL: o.Avatar.URL}
		}
	}
	return v
}
