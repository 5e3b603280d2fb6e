package repository

import (
	"context"
	"testing"
	"time"

	"devconnect/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const ns = "devconnect.test"

func newMock(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func duplicateKeyResponse() bson.D {
	return mtest.CreateWriteErrorsResponse(mtest.WriteError{
		Index:   0,
		Code:    11000,
		Message: "E11000 duplicate key error",
	})
}

func TestUserRepository(t *testing.T) {
	mt := newMock(t)
	ctx := context.Background()

	mt.Run("create assigns id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewUserRepository(mt.Coll)

		u := &models.User{Name: "Alice", Email: "a@x.com"}
		require.NoError(mt, repo.Create(ctx, u))
		assert.False(mt, u.ID.IsZero())
	})

	mt.Run("create duplicate email", func(mt *mtest.T) {
		mt.AddMockResponses(duplicateKeyResponse())
		repo := NewUserRepository(mt.Coll)

		err := repo.Create(ctx, &models.User{Email: "a@x.com"})
		assert.ErrorIs(mt, err, ErrDuplicate)
	})

	mt.Run("get by email", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "name", Value: "Alice"},
			{Key: "email", Value: "a@x.com"},
			{Key: "password", Value: "hash"},
			{Key: "avatar", Value: "//gravatar"},
		}))
		repo := NewUserRepository(mt.Coll)

		u, err := repo.GetByEmail(ctx, "a@x.com")
		require.NoError(mt, err)
		assert.Equal(mt, id, u.ID)
		assert.Equal(mt, "Alice", u.Name)
		assert.Equal(mt, "hash", u.Password)
	})

	mt.Run("get by id missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		repo := NewUserRepository(mt.Coll)

		_, err := repo.GetByID(ctx, primitive.NewObjectID())
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("get by ids", func(mt *mtest.T) {
		a, b := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: a}, {Key: "name", Value: "A"}},
			bson.D{{Key: "_id", Value: b}, {Key: "name", Value: "B"}},
		))
		repo := NewUserRepository(mt.Coll)

		got, err := repo.GetByIDs(ctx, []primitive.ObjectID{a, b})
		require.NoError(mt, err)
		require.Len(mt, got, 2)
		assert.Equal(mt, "B", got[b].Name)
	})
}

func TestProfileRepository(t *testing.T) {
	mt := newMock(t)
	ctx := context.Background()

	mt.Run("get by user id", func(mt *mtest.T) {
		userID := primitive.NewObjectID()
		expID := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "user", Value: userID},
			{Key: "status", Value: "Developer"},
			{Key: "skills", Value: bson.A{"js", "go"}},
			{Key: "social", Value: bson.D{{Key: "twitter", Value: "https://twitter.com/a"}}},
			{Key: "experience", Value: bson.A{bson.D{
				{Key: "_id", Value: expID},
				{Key: "title", Value: "Engineer"},
				{Key: "company", Value: "Acme"},
				{Key: "from", Value: primitive.NewDateTimeFromTime(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))},
			}}},
		}))
		repo := NewProfileRepository(mt.Coll)

		p, err := repo.GetByUserID(ctx, userID)
		require.NoError(mt, err)
		assert.Equal(mt, userID, p.UserID)
		assert.Equal(mt, []string{"js", "go"}, p.Skills)
		assert.Equal(mt, "https://twitter.com/a", p.Social.Twitter)
		require.Len(mt, p.Experience, 1)
		assert.Equal(mt, expID, p.Experience[0].ID)
		assert.Nil(mt, p.Experience[0].To)
	})

	mt.Run("update missing document", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))
		repo := NewProfileRepository(mt.Coll)

		err := repo.Update(ctx, &models.Profile{ID: primitive.NewObjectID()})
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("update", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))
		repo := NewProfileRepository(mt.Coll)

		assert.NoError(mt, repo.Update(ctx, &models.Profile{ID: primitive.NewObjectID(), Status: "Dev"}))
	})

	mt.Run("create duplicate user", func(mt *mtest.T) {
		mt.AddMockResponses(duplicateKeyResponse())
		repo := NewProfileRepository(mt.Coll)

		err := repo.Create(ctx, &models.Profile{UserID: primitive.NewObjectID()})
		assert.ErrorIs(mt, err, ErrDuplicate)
	})
}

func TestPostRepository(t *testing.T) {
	mt := newMock(t)
	ctx := context.Background()

	mt.Run("list", func(mt *mtest.T) {
		newer, older := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: newer}, {Key: "text", Value: "second"}, {Key: "likes", Value: bson.A{}}},
			bson.D{{Key: "_id", Value: older}, {Key: "text", Value: "first"}, {Key: "likes", Value: bson.A{}}},
		))
		repo := NewPostRepository(mt.Coll)

		posts, err := repo.List(ctx)
		require.NoError(mt, err)
		require.Len(mt, posts, 2)
		assert.Equal(mt, newer, posts[0].ID)
		assert.Equal(mt, "first", posts[1].Text)
	})

	mt.Run("list empty", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		repo := NewPostRepository(mt.Coll)

		posts, err := repo.List(ctx)
		require.NoError(mt, err)
		assert.NotNil(mt, posts)
		assert.Empty(mt, posts)
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))
		repo := NewPostRepository(mt.Coll)

		err := repo.Delete(ctx, primitive.NewObjectID())
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("delete by user", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 3}))
		repo := NewPostRepository(mt.Coll)

		n, err := repo.DeleteByUserID(ctx, primitive.NewObjectID())
		require.NoError(mt, err)
		assert.Equal(mt, int64(3), n)
	})
}
