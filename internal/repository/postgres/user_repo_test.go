package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kmorrow/todo-list-api/internal/domain"
	"github.com/kmorrow/todo-list-api/internal/repository/postgres"
	"github.com/kmorrow/todo-list-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_Create(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	tests := []struct {
		name    string
		user    *domain.User
		wantErr bool
	}{
		{
			name: "successful creation",
			user: &domain.User{
				ID:           uuid.New(),
				Username:     "testuser",
				Email:        "testuser@example.com",
				PasswordHash: "hashedpassword",
				IsActive:     true,
				CreatedAt:    time.Now(),
				UpdatedAt:    time.Now(),
			},
			wantErr: false,
		},
		{
			name: "duplicate username",
			user: &domain.User{
				ID:           uuid.New(),
				Username:     "testuser", // Same as above
				Email:        "other@example.com",
				PasswordHash: "hashedpassword2",
				IsActive:     true,
				CreatedAt:    time.Now(),
				UpdatedAt:    time.Now(),
			},
			wantErr: true,
		},
		{
			name: "duplicate email",
			user: &domain.User{
				ID:           uuid.New(),
				Username:     "otheruser",
				Email:        "testuser@example.com", // Same as first
				PasswordHash: "hashedpassword3",
				IsActive:     true,
				CreatedAt:    time.Now(),
				UpdatedAt:    time.Now(),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.user)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestUserRepository_Lookups(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().
		WithUsername("lookup_user").
		WithEmail("lookup@example.com").
		Build(t, testDB.DB)

	t.Run("by id", func(t *testing.T) {
		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Username, got.Username)

		_, err = repo.GetByID(ctx, uuid.New())
		assert.Error(t, err)
	})

	t.Run("by username", func(t *testing.T) {
		got, err := repo.GetByUsername(ctx, "lookup_user")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)

		_, err = repo.GetByUsername(ctx, "nonexistent")
		assert.Error(t, err)
	})

	t.Run("by email", func(t *testing.T) {
		got, err := repo.GetByEmail(ctx, "lookup@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)

		_, err = repo.GetByEmail(ctx, "nonexistent@example.com")
		assert.Error(t, err)
	})
}

func TestUserRepository_TouchLastActive(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	// Push the stamp into the past, then touch.
	past := time.Now().Add(-time.Hour)
	require.NoError(t, testDB.DB.Model(&domain.User{}).Where("id = ?", user.ID).Update("last_active_at", past).Error)

	require.NoError(t, repo.TouchLastActive(ctx, user.ID))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.LastActiveAt.After(past))
}

func TestRefreshTokenRepository(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewRefreshTokenRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	add := func(owner uuid.UUID, token string) {
		t.Helper()
		require.NoError(t, repo.Add(ctx, &domain.RefreshToken{
			ID:        uuid.New(),
			UserID:    owner,
			Token:     token,
			CreatedAt: time.Now(),
		}))
	}

	add(user.ID, "token-a")
	add(user.ID, "token-b")
	add(other.ID, "token-c")

	t.Run("exists is scoped to the owner", func(t *testing.T) {
		ok, err := repo.Exists(ctx, user.ID, "token-a")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.Exists(ctx, user.ID, "token-c")
		require.NoError(t, err)
		assert.False(t, ok, "another user's token must not count")

		ok, err = repo.Exists(ctx, user.ID, "unknown")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("delete removes one token", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, user.ID, "token-a"))

		ok, err := repo.Exists(ctx, user.ID, "token-a")
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = repo.Exists(ctx, user.ID, "token-b")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("delete by user clears the whole set", func(t *testing.T) {
		require.NoError(t, repo.DeleteByUserID(ctx, user.ID))

		ok, err := repo.Exists(ctx, user.ID, "token-b")
		require.NoError(t, err)
		assert.False(t, ok)

		// Other users are untouched.
		ok, err = repo.Exists(ctx, other.ID, "token-c")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}
