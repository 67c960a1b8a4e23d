package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/dom/groupbuilder/internal/domain"
	"github.com/dom/groupbuilder/internal/repository/postgres"
	"github.com/dom/groupbuilder/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCharacterRepository_CreateAndGet(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewCharacterRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	character := &domain.Character{
		ID:        uuid.New(),
		UserID:    user.ID,
		Name:      "Thrall",
		CreatedAt: time.Now(),
	}
	require.NoError(t, repo.Create(ctx, character))

	got, err := repo.GetByID(ctx, character.ID)
	require.NoError(t, err)
	assert.Equal(t, "Thrall", got.Name)
	assert.Equal(t, user.ID, got.UserID)
}

func TestCharacterRepository_GetByIDAndUserID(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewCharacterRepository(testDB.DB)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	character := testutil.NewCharacterBuilder().WithOwner(owner).Build(t, testDB.DB)

	tests := []struct {
		name    string
		userID  uuid.UUID
		wantErr bool
	}{
		{name: "owner", userID: owner.ID},
		{name: "other user", userID: other.ID, wantErr: true},
		{name: "unknown user", userID: uuid.New(), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.GetByIDAndUserID(ctx, character.ID, tt.userID)
			if tt.wantErr {
				assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, character.ID, got.ID)
		})
	}
}

func TestCharacterRepository_GetByUserID(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewCharacterRepository(testDB.DB)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	testutil.NewCharacterBuilder().WithOwner(owner).WithName("first").Build(t, testDB.DB)
	testutil.NewCharacterBuilder().WithOwner(owner).WithName("second").Build(t, testDB.DB)
	testutil.NewCharacterBuilder().WithOwner(other).Build(t, testDB.DB)

	got, err := repo.GetByUserID(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Name)
	assert.Equal(t, "second", got[1].Name)

	none, err := repo.GetByUserID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCharacterRepository_DeleteRequiresEntriesGone(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	characters := postgres.NewCharacterRepository(testDB.DB)
	entries := postgres.NewEntryRepository(testDB.DB)
	ctx := context.Background()

	character := testutil.NewCharacterBuilder().Build(t, testDB.DB)
	testutil.NewEntryBuilder().ForCharacter(character).Build(t, testDB.DB)

	assert.Error(t, characters.Delete(ctx, character.ID))

	require.NoError(t, entries.DeleteByCharacterID(ctx, character.ID))
	require.NoError(t, characters.Delete(ctx, character.ID))

	_, err := characters.GetByID(ctx, character.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
