package repository_test

import (
	"context"
	"testing"

	"github.com/fekuna/omnipos-menu-service/internal/category/dto"
	"github.com/fekuna/omnipos-menu-service/internal/category/repository"
	"github.com/fekuna/omnipos-menu-service/pkg/database/databasetest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMalformedIDs(t *testing.T) {
	db := databasetest.New(t)
	repo := repository.NewSQLRepository(db)
	// every remaining call must be answered without a query
	require.NoError(t, db.Close())

	ctx := context.Background()

	t.Run("FindByID reports a missing category", func(t *testing.T) {
		c, err := repo.FindByID(ctx, "42")
		assert.NoError(t, err)
		assert.Nil(t, c)
	})

	t.Run("Sibling and filtered lists are empty", func(t *testing.T) {
		parent := "42"
		siblings, err := repo.FindSiblings(ctx, &parent)
		assert.NoError(t, err)
		assert.Empty(t, siblings)

		list, total, err := repo.FindAll(ctx, &dto.CategoryFilters{ParentID: &parent})
		assert.NoError(t, err)
		assert.Empty(t, list)
		assert.Zero(t, total)
	})

	t.Run("Well-formed ids still reach the database", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New().String())
		assert.Error(t, err)
	})
}
