package usecase_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fekuna/omnipos-menu-service/internal/category"
	"github.com/fekuna/omnipos-menu-service/internal/category/dto"
	"github.com/fekuna/omnipos-menu-service/internal/category/repository"
	"github.com/fekuna/omnipos-menu-service/internal/category/usecase"
	"github.com/fekuna/omnipos-menu-service/internal/event"
	"github.com/fekuna/omnipos-menu-service/internal/model"
	"github.com/fekuna/omnipos-menu-service/pkg/cache"
	"github.com/fekuna/omnipos-menu-service/pkg/database"
	"github.com/fekuna/omnipos-menu-service/pkg/database/databasetest"
	"github.com/fekuna/omnipos-menu-service/pkg/logger"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeImages struct {
	deleted []string
}

func (f *fakeImages) Save(context.Context, string, string, io.Reader) (string, error) {
	return "", nil
}

func (f *fakeImages) Delete(_ context.Context, ref string) error {
	f.deleted = append(f.deleted, ref)
	return nil
}

type fixture struct {
	uc     category.UseCase
	repo   *repository.SQLRepository
	db     *sqlx.DB
	images *fakeImages
}

func newFixture(t *testing.T, rc *cache.RedisClient) *fixture {
	t.Helper()
	db := databasetest.New(t)
	repo := repository.NewSQLRepository(db)
	images := &fakeImages{}
	log := logger.NewNop()
	uc := usecase.NewCategoryUseCase(repo, database.NewTransactor(db), rc, images, event.NewDispatcher(nil, nil, log), log)
	return &fixture{uc: uc, repo: repo, db: db, images: images}
}

func (f *fixture) create(t *testing.T, name string, parent *model.Category) *model.Category {
	t.Helper()
	input := &dto.CreateCategoryInput{Name: name}
	if parent != nil {
		input.ParentID = &parent.ID
	}
	c, err := f.uc.CreateCategory(context.Background(), input)
	require.NoError(t, err)
	return c
}

// group returns the names of a sibling group in number order and checks
// that the numbers are 1..n.
func (f *fixture) group(t *testing.T, parent *model.Category) []string {
	t.Helper()
	var parentID *string
	if parent != nil {
		parentID = &parent.ID
	}
	siblings, err := f.repo.FindSiblings(context.Background(), parentID)
	require.NoError(t, err)

	names := make([]string, len(siblings))
	for i, s := range siblings {
		assert.Equal(t, i+1, s.Number, "number of %s", s.Name)
		names[i] = s.Name
	}
	return names
}

func strPtr(s string) *string { return &s }

func TestCreateCategory(t *testing.T) {
	f := newFixture(t, nil)

	t.Run("Appends root categories in order", func(t *testing.T) {
		f.create(t, "Soups", nil)
		f.create(t, "Salads", nil)
		c := f.create(t, "Drinks", nil)

		assert.Equal(t, 3, c.Number)
		assert.Nil(t, c.ParentID)
		assert.Equal(t, []string{"Soups", "Salads", "Drinks"}, f.group(t, nil))
	})

	t.Run("Numbers children per parent", func(t *testing.T) {
		drinks := f.create(t, "Hot drinks", nil)
		tea := f.create(t, "Tea", drinks)
		coffee := f.create(t, "Coffee", drinks)

		assert.Equal(t, 1, tea.Number)
		assert.Equal(t, 2, coffee.Number)
		assert.Equal(t, drinks.ID, *coffee.ParentID)
	})

	t.Run("Treats an empty parent id as root", func(t *testing.T) {
		c, err := f.uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{Name: "Desserts", ParentID: strPtr("")})
		require.NoError(t, err)
		assert.Nil(t, c.ParentID)
	})

	t.Run("Fails for an unknown parent", func(t *testing.T) {
		_, err := f.uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{Name: "Orphan", ParentID: strPtr("missing")})
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

func TestUpdateCategory(t *testing.T) {
	t.Run("Re-parenting renumbers both sibling groups", func(t *testing.T) {
		f := newFixture(t, nil)
		a := f.create(t, "A", nil)
		b := f.create(t, "B", nil)
		f.create(t, "C", nil)
		f.create(t, "A1", a)

		updated, err := f.uc.UpdateCategory(context.Background(), &dto.UpdateCategoryInput{ID: b.ID, Name: "B", ParentID: &a.ID})
		require.NoError(t, err)

		assert.Equal(t, 2, updated.Number)
		assert.Equal(t, []string{"A", "C"}, f.group(t, nil))
		assert.Equal(t, []string{"A1", "B"}, f.group(t, a))
	})

	t.Run("Moving back to root appends at the end", func(t *testing.T) {
		f := newFixture(t, nil)
		a := f.create(t, "A", nil)
		a1 := f.create(t, "A1", a)
		f.create(t, "B", nil)

		_, err := f.uc.UpdateCategory(context.Background(), &dto.UpdateCategoryInput{ID: a1.ID, Name: "A1"})
		require.NoError(t, err)

		assert.Equal(t, []string{"A", "B", "A1"}, f.group(t, nil))
		assert.Empty(t, f.group(t, a))
	})

	t.Run("Keeping the parent keeps the number", func(t *testing.T) {
		f := newFixture(t, nil)
		f.create(t, "A", nil)
		b := f.create(t, "B", nil)

		updated, err := f.uc.UpdateCategory(context.Background(), &dto.UpdateCategoryInput{ID: b.ID, Name: "Bravo"})
		require.NoError(t, err)
		assert.Equal(t, 2, updated.Number)
		assert.Equal(t, []string{"A", "Bravo"}, f.group(t, nil))
	})

	t.Run("Rejects moving under a descendant and leaves the tree unchanged", func(t *testing.T) {
		f := newFixture(t, nil)
		a := f.create(t, "A", nil)
		b := f.create(t, "B", a)
		c := f.create(t, "C", b)

		_, err := f.uc.UpdateCategory(context.Background(), &dto.UpdateCategoryInput{ID: a.ID, Name: "A", ParentID: &c.ID})
		assert.ErrorIs(t, err, model.ErrCycleRejected)

		_, err = f.uc.UpdateCategory(context.Background(), &dto.UpdateCategoryInput{ID: a.ID, Name: "A", ParentID: &a.ID})
		assert.ErrorIs(t, err, model.ErrCycleRejected)

		stored, err := f.repo.FindByID(context.Background(), a.ID)
		require.NoError(t, err)
		assert.Nil(t, stored.ParentID)
		assert.Equal(t, []string{"A"}, f.group(t, nil))
		assert.Equal(t, []string{"B"}, f.group(t, a))
		assert.Equal(t, []string{"C"}, f.group(t, b))
	})

	t.Run("Replacing the image releases the old one", func(t *testing.T) {
		f := newFixture(t, nil)
		c, err := f.uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{Name: "A", ImageURL: strPtr("http://img/old.png")})
		require.NoError(t, err)

		updated, err := f.uc.UpdateCategory(context.Background(), &dto.UpdateCategoryInput{ID: c.ID, Name: "A", ImageURL: strPtr("http://img/new.png")})
		require.NoError(t, err)
		assert.Equal(t, "http://img/new.png", *updated.ImageURL)
		assert.Equal(t, []string{"http://img/old.png"}, f.images.deleted)

		// nil keeps the current image
		updated, err = f.uc.UpdateCategory(context.Background(), &dto.UpdateCategoryInput{ID: c.ID, Name: "A"})
		require.NoError(t, err)
		assert.Equal(t, "http://img/new.png", *updated.ImageURL)
	})

	t.Run("Fails for an unknown category", func(t *testing.T) {
		f := newFixture(t, nil)
		_, err := f.uc.UpdateCategory(context.Background(), &dto.UpdateCategoryInput{ID: "missing", Name: "X"})
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

func TestDeleteCategory(t *testing.T) {
	t.Run("Compacts the remaining siblings", func(t *testing.T) {
		f := newFixture(t, nil)
		f.create(t, "A", nil)
		b, err := f.uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{Name: "B", ImageURL: strPtr("http://img/b.png")})
		require.NoError(t, err)
		f.create(t, "C", nil)

		require.NoError(t, f.uc.DeleteCategory(context.Background(), b.ID))

		assert.Equal(t, []string{"A", "C"}, f.group(t, nil))
		assert.Equal(t, []string{"http://img/b.png"}, f.images.deleted)
	})

	t.Run("Rejects a category with subcategories", func(t *testing.T) {
		f := newFixture(t, nil)
		a := f.create(t, "A", nil)
		f.create(t, "A1", a)

		err := f.uc.DeleteCategory(context.Background(), a.ID)
		assert.ErrorIs(t, err, model.ErrCategoryNotEmpty)
		assert.Equal(t, []string{"A"}, f.group(t, nil))
	})

	t.Run("Rejects a category with dishes", func(t *testing.T) {
		f := newFixture(t, nil)
		a := f.create(t, "A", nil)
		now := time.Now().UTC()
		_, err := f.db.Exec(f.db.Rebind(`INSERT INTO dishes (id, category_id, name, description, price, quantity, show_usd, is_hidden, number, created_at, updated_at)
			VALUES (?, ?, 'Borscht', '', 10, 1, 0, 0, 1, ?, ?)`), "d1", a.ID, now, now)
		require.NoError(t, err)

		err = f.uc.DeleteCategory(context.Background(), a.ID)
		assert.ErrorIs(t, err, model.ErrCategoryNotEmpty)
	})

	t.Run("Fails for an unknown category", func(t *testing.T) {
		f := newFixture(t, nil)
		assert.ErrorIs(t, f.uc.DeleteCategory(context.Background(), "missing"), model.ErrNotFound)
	})
}

func TestSetCategoryNumber(t *testing.T) {
	f := newFixture(t, nil)
	f.create(t, "A", nil)
	f.create(t, "B", nil)
	f.create(t, "C", nil)
	d := f.create(t, "D", nil)

	t.Run("Moves a category up", func(t *testing.T) {
		require.NoError(t, f.uc.SetCategoryNumber(context.Background(), d.ID, 1))
		assert.Equal(t, []string{"D", "A", "B", "C"}, f.group(t, nil))
	})

	t.Run("Moves a category down", func(t *testing.T) {
		require.NoError(t, f.uc.SetCategoryNumber(context.Background(), d.ID, 3))
		assert.Equal(t, []string{"A", "B", "D", "C"}, f.group(t, nil))
	})

	t.Run("Rejects numbers outside the group", func(t *testing.T) {
		assert.ErrorIs(t, f.uc.SetCategoryNumber(context.Background(), d.ID, 0), model.ErrOutOfRange)
		assert.ErrorIs(t, f.uc.SetCategoryNumber(context.Background(), d.ID, 5), model.ErrOutOfRange)
		assert.Equal(t, []string{"A", "B", "D", "C"}, f.group(t, nil))
	})

	t.Run("Fails for an unknown category", func(t *testing.T) {
		assert.ErrorIs(t, f.uc.SetCategoryNumber(context.Background(), "missing", 1), model.ErrNotFound)
	})
}

func TestReadOperations(t *testing.T) {
	f := newFixture(t, nil)
	menu := f.create(t, "Menu", nil)
	soups := f.create(t, "Soups", menu)
	f.create(t, "Cold", soups)
	f.create(t, "Bar", nil)

	t.Run("GetCategory returns ordered children", func(t *testing.T) {
		c, err := f.uc.GetCategory(context.Background(), menu.ID)
		require.NoError(t, err)
		require.Len(t, c.Children, 1)
		assert.Equal(t, "Soups", c.Children[0].Name)

		_, err = f.uc.GetCategory(context.Background(), "missing")
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("ListNestedNames labels every category with its path", func(t *testing.T) {
		all, err := f.uc.ListNestedNames(context.Background())
		require.NoError(t, err)

		names := []string{}
		for _, c := range all {
			names = append(names, c.NestedName)
		}
		assert.Equal(t, []string{"Bar", "Menu", "Menu / Soups", "Menu / Soups / Cold"}, names)
	})

	t.Run("ListCategories filters root categories", func(t *testing.T) {
		roots, count, err := f.uc.ListCategories(context.Background(), &dto.CategoryFilters{ParentID: strPtr("")})
		require.NoError(t, err)
		assert.Equal(t, 2, count)
		assert.Equal(t, "Menu", roots[0].Name)
	})

	t.Run("GetCatalogTree nests children", func(t *testing.T) {
		tree, err := f.uc.GetCatalogTree(context.Background())
		require.NoError(t, err)
		require.Len(t, tree, 2)
		assert.Equal(t, "Menu", tree[0].Name)
		require.Len(t, tree[0].Children, 1)
		require.Len(t, tree[0].Children[0].Children, 1)
		assert.Equal(t, "Cold", tree[0].Children[0].Children[0].Name)
	})
}

func TestCatalogTreeCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rc, err := cache.NewRedisClient(&cache.Config{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { rc.Close() })

	f := newFixture(t, rc)
	f.create(t, "Soups", nil)

	tree, err := f.uc.GetCatalogTree(context.Background())
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.True(t, mr.Exists(model.CatalogTreeCacheKey))

	// a mutation drops the cached tree
	f.create(t, "Salads", nil)
	assert.False(t, mr.Exists(model.CatalogTreeCacheKey))
	assert.False(t, mr.Exists(model.CatalogLockKey))

	tree, err = f.uc.GetCatalogTree(context.Background())
	require.NoError(t, err)
	assert.Len(t, tree, 2)
}
