package repository

import (
	"context"
	"fmt"

	"devconnect/metrics"
	"devconnect/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type ProfileRepository struct {
	coll *mongo.Collection
}

func NewProfileRepository(coll *mongo.Collection) *ProfileRepository {
	return &ProfileRepository{coll: coll}
}

func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	if profile.ID.IsZero() {
		profile.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, profile); err != nil {
		return fmt.Errorf("insert profile: %w", translate(err))
	}
	return nil
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Profile, error) {
	var profile models.Profile
	if err := r.coll.FindOne(ctx, bson.M{"user": userID}).Decode(&profile); err != nil {
		return nil, fmt.Errorf("find profile for %s: %w", userID.Hex(), translate(err))
	}
	return &profile, nil
}

func (r *ProfileRepository) List(ctx context.Context) ([]*models.Profile, error) {
	defer metrics.TrackQuery("find", "profiles")()

	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find profiles: %w", err)
	}
	defer cursor.Close(ctx)

	profiles := []*models.Profile{}
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	return profiles, nil
}

func (r *ProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	defer metrics.TrackQuery("replace", "profiles")()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": profile.ID}, profile)
	if err != nil {
		return fmt.Errorf("replace profile %s: %w", profile.ID.Hex(), translate(err))
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("replace profile %s: %w", profile.ID.Hex(), ErrNotFound)
	}
	return nil
}

func (r *ProfileRepository) DeleteByUserID(ctx context.Context, userID primitive.ObjectID) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"user": userID}); err != nil {
		return fmt.Errorf("delete profile for %s: %w", userID.Hex(), err)
	}
	return nil
}
