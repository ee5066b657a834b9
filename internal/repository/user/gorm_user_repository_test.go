package user

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/iyunix/go-assistant/internal/database"
	"github.com/iyunix/go-assistant/internal/domain"
)

func newTestRepo(t *testing.T) UserRepository {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return NewGormUserRepository(db)
}

func TestCreateAndFindByEmail(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.User{Name: "Ada", Email: " Ada@Example.com ", Password: "hash"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "ada@example.com", created.Email)

	found, err := repo.FindByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", byID.Name)

	exists, err := repo.ExistsByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCreateDuplicateEmail(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, &domain.User{Name: "A", Email: "dup@example.com", Password: "x"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &domain.User{Name: "B", Email: "DUP@example.com", Password: "y"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestFindMissingUser(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.FindByEmail(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = repo.FindByID(ctx, "")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
