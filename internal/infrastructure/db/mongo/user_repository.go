package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tubehub/api/internal/core/domain"
	"github.com/tubehub/api/internal/core/ports"
)

const collectionUsers = "users"

// publicProjection strips secret fields from anything handed downstream.
var publicProjection = bson.M{"password": 0, "refreshToken": 0}

// UserRepository is the credential store and profile store over the users
// collection.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

type mongoMedia struct {
	PublicID string `bson:"publicId,omitempty"`
	URL      string `bson:"url,omitempty"`
}

type mongoSocialLinks struct {
	X         string `bson:"x,omitempty"`
	Instagram string `bson:"instagram,omitempty"`
	Facebook  string `bson:"facebook,omitempty"`
	Website   string `bson:"website,omitempty"`
}

type mongoNotificationSettings struct {
	EmailNotification    bool `bson:"emailNotification"`
	SubscriptionActivity bool `bson:"subscriptionActivity"`
	CommentActivity      bool `bson:"commentActivity"`
}

type mongoUser struct {
	ID                   primitive.ObjectID        `bson:"_id,omitempty"`
	Username             string                    `bson:"username"`
	Email                string                    `bson:"email"`
	FullName             string                    `bson:"fullName"`
	Avatar               *mongoMedia               `bson:"avatar,omitempty"`
	CoverImage           *mongoMedia               `bson:"coverImage,omitempty"`
	Password             string                    `bson:"password,omitempty"`
	RefreshToken         string                    `bson:"refreshToken,omitempty"`
	IsVerified           bool                      `bson:"isVerified"`
	IsAdmin              bool                      `bson:"isAdmin"`
	WatchHistory         []primitive.ObjectID      `bson:"watchHistory"`
	ChannelDescription   string                    `bson:"channelDescription"`
	ChannelTags          []string                  `bson:"channelTags"`
	SocialLinks          mongoSocialLinks          `bson:"socialLinks"`
	NotificationSettings mongoNotificationSettings `bson:"notificationSettings"`
	CreatedAt            time.Time                 `bson:"createdAt"`
	UpdatedAt            time.Time                 `bson:"updatedAt"`
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toMongoUser(user)
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return fromMongoUser(&doc), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindPublicByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid}, options.FindOne().SetProjection(publicProjection))
}

// FindByLogin matches on username OR email.
func (r *UserRepository) FindByLogin(ctx context.Context, username, email string) (*domain.User, error) {
	var or bson.A
	if username != "" {
		or = append(or, bson.M{"username": username})
	}
	if email != "" {
		or = append(or, bson.M{"email": email})
	}
	if len(or) == 0 {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"$or": or})
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username}, options.FindOne().SetProjection(publicProjection))
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.col.FindOne(ctx, filter, opts...).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return fromMongoUser(&mu), nil
}

func (r *UserRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{"refreshToken": token, "updatedAt": time.Now().UTC()}})
}

func (r *UserRepository) ClearRefreshToken(ctx context.Context, id string) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{"refreshToken": "", "updatedAt": time.Now().UTC()}})
}

// SwapRefreshToken is a single-document compare-and-swap: the filter only
// matches while the stored token still equals presented.
func (r *UserRepository) SwapRefreshToken(ctx context.Context, id, presented, next string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid, "refreshToken": presented},
		bson.M{"$set": bson.M{"refreshToken": next, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return false, fmt.Errorf("swap refresh token: %w", err)
	}
	return res.MatchedCount == 1, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{"password": passwordHash, "updatedAt": time.Now().UTC()}})
}

// AddToWatchHistory records videoID once per user.
func (r *UserRepository) AddToWatchHistory(ctx context.Context, id, videoID string) error {
	vid, err := primitive.ObjectIDFromHex(videoID)
	if err != nil {
		return domain.ErrVideoNotFound
	}
	return r.updateByID(ctx, id, bson.M{"$addToSet": bson.M{"watchHistory": vid}})
}

func (r *UserRepository) updateByID(ctx context.Context, id string, update bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdateAccount(ctx context.Context, id string, update ports.AccountUpdate) (*domain.User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.FullName != nil {
		set["fullName"] = *update.FullName
	}
	if update.Email != nil {
		set["email"] = *update.Email
	}

	user, err := r.findOneAndSet(ctx, id, set, publicProjection)
	if err != nil && mongo.IsDuplicateKeyError(err) {
		return nil, domain.ErrEmailTaken
	}
	return user, err
}

func (r *UserRepository) UpdateChannel(ctx context.Context, id string, update ports.ChannelUpdate) (*domain.User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.Description != nil {
		set["channelDescription"] = *update.Description
	}
	if update.Tags != nil {
		set["channelTags"] = *update.Tags
	}
	if update.SocialLinks != nil {
		set["socialLinks"] = mongoSocialLinks(*update.SocialLinks)
	}
	return r.findOneAndSet(ctx, id, set, publicProjection)
}

func (r *UserRepository) UpdateNotificationSettings(ctx context.Context, id string, update ports.NotificationUpdate) (*domain.NotificationSettings, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.EmailNotification != nil {
		set["notificationSettings.emailNotification"] = *update.EmailNotification
	}
	if update.SubscriptionActivity != nil {
		set["notificationSettings.subscriptionActivity"] = *update.SubscriptionActivity
	}
	if update.CommentActivity != nil {
		set["notificationSettings.commentActivity"] = *update.CommentActivity
	}

	user, err := r.findOneAndSet(ctx, id, set, bson.M{"notificationSettings": 1})
	if err != nil {
		return nil, err
	}
	return &user.NotificationSettings, nil
}

func (r *UserRepository) findOneAndSet(ctx context.Context, id string, set bson.M, projection bson.M) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(projection)

	var mu mongoUser
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return fromMongoUser(&mu), nil
}

// EnsureIndexes creates the unique identity indexes on the users collection.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "fullName", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func toMongoUser(u *domain.User) mongoUser {
	doc := mongoUser{
		Username:             u.Username,
		Email:                u.Email,
		FullName:             u.FullName,
		Password:             u.PasswordHash,
		RefreshToken:         u.RefreshToken,
		IsVerified:           u.IsVerified,
		IsAdmin:              u.IsAdmin,
		WatchHistory:         []primitive.ObjectID{},
		ChannelDescription:   u.ChannelDescription,
		ChannelTags:          u.ChannelTags,
		SocialLinks:          mongoSocialLinks(u.SocialLinks),
		NotificationSettings: mongoNotificationSettings(u.NotificationSettings),
		CreatedAt:            u.CreatedAt,
		UpdatedAt:            u.UpdatedAt,
	}
	if u.ID != "" {
		if oid, err := primitive.ObjectIDFromHex(u.ID); err == nil {
			doc.ID = oid
		}
	}
	if doc.ChannelTags == nil {
		doc.ChannelTags = []string{}
	}
	for _, h := range u.WatchHistory {
		if oid, err := primitive.ObjectIDFromHex(h); err == nil {
			doc.WatchHistory = append(doc.WatchHistory, oid)
		}
	}
	if u.Avatar != nil {
		doc.Avatar = &mongoMedia{PublicID: u.Avatar.PublicID, URL: u.Avatar.URL}
	}
	if u.CoverImage != nil {
		doc.CoverImage = &mongoMedia{PublicID: u.CoverImage.PublicID, URL: u.CoverImage.URL}
	}
	return doc
}

func fromMongoUser(mu *mongoUser) *domain.User {
	u := &domain.User{
		ID:                   mu.ID.Hex(),
		Username:             mu.Username,
		Email:                mu.Email,
		FullName:             mu.FullName,
		PasswordHash:         mu.Password,
		RefreshToken:         mu.RefreshToken,
		IsVerified:           mu.IsVerified,
		IsAdmin:              mu.IsAdmin,
		WatchHistory:         make([]string, 0, len(mu.WatchHistory)),
		ChannelDescription:   mu.ChannelDescription,
		ChannelTags:          mu.ChannelTags,
		SocialLinks:          domain.SocialLinks(mu.SocialLinks),
		NotificationSettings: domain.NotificationSettings(mu.NotificationSettings),
		CreatedAt:            mu.CreatedAt,
		UpdatedAt:            mu.UpdatedAt,
	}
	for _, h := range mu.WatchHistory {
		u.WatchHistory = append(u.WatchHistory, h.Hex())
	}
	if u.ChannelTags == nil {
		u.ChannelTags = []string{}
	}
	if mu.Avatar != nil {
		u.Avatar = &domain.MediaRef{PublicID: mu.Avatar.PublicID, URL: mu.Avatar.URL}
	}
	if mu.CoverImage != nil {
		u.CoverImage = &domain.MediaRef{PublicID: mu.CoverImage.PublicID, URL: mu.CoverImage.URL}
	}
	return u
}
