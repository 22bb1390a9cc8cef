package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/storefront/ecommerce-api/internal/core/domain"
)

const usersNS = "ecommerce.users"

func userDoc(id primitive.ObjectID, email, digest string, admin bool) bson.D {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: "Ada"},
		{Key: "email", Value: email},
		{Key: "password", Value: digest},
		{Key: "isAdmin", Value: admin},
		{Key: "createdAt", Value: created},
		{Key: "updatedAt", Value: created},
	}
}

func commandFailure() bson.D {
	return mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Name: "BadValue", Message: "boom"})
}

func TestUserDocument_PasswordKey(t *testing.T) {
	raw, err := bson.Marshal(mongoUser{ID: primitive.NewObjectID(), Email: "ada@x.com", PasswordHash: "$2a$10$digest"})
	require.NoError(t, err)

	assert.Equal(t, "$2a$10$digest", bson.Raw(raw).Lookup("password").StringValue())
	_, err = bson.Raw(raw).LookupErr("passwordHash")
	assert.Error(t, err, "digest must only be stored under the password key")
}

func TestUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewUserRepository(mt.DB)

		created, err := repo.Create(ctx, &domain.User{Name: "Ada", Email: "ada@x.com", PasswordHash: "digest", Role: domain.RoleElevated})
		require.NoError(mt, err)
		assert.NotEmpty(mt, created.ID)
		assert.Equal(mt, "digest", created.PasswordHash)
		assert.Equal(mt, domain.RoleElevated, created.Role)
	})

	mt.Run("create duplicate email", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: ecommerce.users index: email_unique",
		}))
		repo := NewUserRepository(mt.DB)

		_, err := repo.Create(ctx, &domain.User{Name: "Ada", Email: "ada@x.com", PasswordHash: "digest"})
		assert.ErrorIs(mt, err, domain.ErrUserExists)
	})

	mt.Run("create driver failure", func(mt *mtest.T) {
		mt.AddMockResponses(commandFailure())
		repo := NewUserRepository(mt.DB)

		_, err := repo.Create(ctx, &domain.User{Name: "Ada", Email: "ada@x.com"})
		var se *domain.StorageError
		require.True(mt, errors.As(err, &se), "got %v", err)
		assert.Equal(mt, "insert user", se.Op)
		assert.ErrorIs(mt, err, domain.ErrStorage)
	})

	mt.Run("find by email reads password key", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch, userDoc(id, "ada@x.com", "$2a$10$stored", true)))
		repo := NewUserRepository(mt.DB)

		u, err := repo.FindByEmail(ctx, "ada@x.com")
		require.NoError(mt, err)
		assert.Equal(mt, id.Hex(), u.ID)
		assert.Equal(mt, "$2a$10$stored", u.PasswordHash)
		assert.Equal(mt, domain.RoleElevated, u.Role)
		assert.Equal(mt, time.UTC, u.CreatedAt.Location())
	})

	mt.Run("find by email no documents", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch))
		repo := NewUserRepository(mt.DB)

		_, err := repo.FindByEmail(ctx, "ghost@x.com")
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)
	})

	mt.Run("find by email driver failure", func(mt *mtest.T) {
		mt.AddMockResponses(commandFailure())
		repo := NewUserRepository(mt.DB)

		_, err := repo.FindByEmail(ctx, "ada@x.com")
		var se *domain.StorageError
		assert.True(mt, errors.As(err, &se), "got %v", err)
		assert.NotErrorIs(mt, err, domain.ErrUserNotFound)
	})

	mt.Run("malformed id is not found", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)

		_, err := repo.FindByID(ctx, "not-an-object-id")
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)
		_, err = repo.UpdateName(ctx, "zzz", "Ada")
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)
		_, err = repo.Delete(ctx, "123")
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)
		assert.Empty(mt, mt.GetAllStartedEvents(), "malformed ids must not reach the server")
	})

	mt.Run("list", func(mt *mtest.T) {
		first, second := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch,
			userDoc(first, "a@x.com", "d1", false),
			userDoc(second, "b@x.com", "d2", true),
		))
		repo := NewUserRepository(mt.DB)

		users, err := repo.List(ctx)
		require.NoError(mt, err)
		require.Len(mt, users, 2)
		assert.Equal(mt, first.Hex(), users[0].ID)
		assert.Equal(mt, domain.RoleElevated, users[1].Role)
	})

	mt.Run("update password hash writes password key", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: userDoc(id, "ada@x.com", "new-digest", false)}))
		repo := NewUserRepository(mt.DB)

		require.NoError(mt, repo.UpdatePasswordHash(ctx, id.Hex(), "new-digest"))

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "findAndModify", evt.CommandName)
		assert.Equal(mt, "new-digest", evt.Command.Lookup("update", "$set", "password").StringValue())
	})

	mt.Run("update missing user", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))
		repo := NewUserRepository(mt.DB)

		_, err := repo.UpdateName(ctx, primitive.NewObjectID().Hex(), "Ada")
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)
	})

	mt.Run("delete returns removed user", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: userDoc(id, "ada@x.com", "d", false)}))
		repo := NewUserRepository(mt.DB)

		u, err := repo.Delete(ctx, id.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, "ada@x.com", u.Email)
	})

	mt.Run("delete driver failure", func(mt *mtest.T) {
		mt.AddMockResponses(commandFailure())
		repo := NewUserRepository(mt.DB)

		_, err := repo.Delete(ctx, primitive.NewObjectID().Hex())
		var se *domain.StorageError
		require.True(mt, errors.As(err, &se), "got %v", err)
		assert.Equal(mt, "delete user", se.Op)
	})
}
