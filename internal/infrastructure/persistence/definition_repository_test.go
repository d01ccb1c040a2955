package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/resolvd/backend/internal/domain/resolver"
	"github.com/resolvd/backend/internal/domain/shared"
)

// setupDefinitionTestDB creates an in-memory SQLite database for testing
func setupDefinitionTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE resolver_definitions (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			description TEXT,
			document TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)
	`).Error
	require.NoError(t, err)

	return db
}

func unitDefinition(t *testing.T, path string) resolver.Definition {
	t.Helper()
	def := resolver.Definition{
		Kind: resolver.KindUnit,
		Unit: &resolver.Unit{
			Datasource: "jsonplaceholder",
			Method:     "GET",
			Path:       path,
		},
	}
	require.NoError(t, def.Validate())
	return def
}

func TestGormDefinitionRepository_CreateAndFind(t *testing.T) {
	db := setupDefinitionTestDB(t)
	repo := NewGormDefinitionRepository(db)
	ctx := context.Background()

	stored, err := resolver.NewStoredDefinition("get-user", "fetches a user", unitDefinition(t, "/users/1"))
	require.NoError(t, err)

	require.NoError(t, repo.Create(ctx, stored))

	found, err := repo.FindByName(ctx, "get-user")
	require.NoError(t, err)
	assert.Equal(t, stored.ID, found.ID)
	assert.Equal(t, "get-user", found.Name)
	assert.Equal(t, "fetches a user", found.Description)
	assert.Equal(t, resolver.KindUnit, found.Definition.Kind)
	require.NotNil(t, found.Definition.Unit)
	assert.Equal(t, "/users/1", found.Definition.Unit.Path)
}

func TestGormDefinitionRepository_CreateDuplicateName(t *testing.T) {
	db := setupDefinitionTestDB(t)
	repo := NewGormDefinitionRepository(db)
	ctx := context.Background()

	first, err := resolver.NewStoredDefinition("get-user", "", unitDefinition(t, "/users/1"))
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, first))

	second, err := resolver.NewStoredDefinition("get-user", "", unitDefinition(t, "/users/2"))
	require.NoError(t, err)

	err = repo.Create(ctx, second)
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
}

func TestGormDefinitionRepository_Update(t *testing.T) {
	db := setupDefinitionTestDB(t)
	repo := NewGormDefinitionRepository(db)
	ctx := context.Background()

	stored, err := resolver.NewStoredDefinition("get-user", "old", unitDefinition(t, "/users/1"))
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, stored))

	stored.Description = "new"
	stored.Definition = unitDefinition(t, "/users/42")
	require.NoError(t, repo.Update(ctx, stored))

	found, err := repo.FindByName(ctx, "get-user")
	require.NoError(t, err)
	assert.Equal(t, "new", found.Description)
	assert.Equal(t, "/users/42", found.Definition.Unit.Path)
}

func TestGormDefinitionRepository_UpdateMissing(t *testing.T) {
	db := setupDefinitionTestDB(t)
	repo := NewGormDefinitionRepository(db)
	ctx := context.Background()

	stored, err := resolver.NewStoredDefinition("ghost", "", unitDefinition(t, "/users/1"))
	require.NoError(t, err)

	err = repo.Update(ctx, stored)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormDefinitionRepository_FindByNameMissing(t *testing.T) {
	db := setupDefinitionTestDB(t)
	repo := NewGormDefinitionRepository(db)

	_, err := repo.FindByName(context.Background(), "missing")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormDefinitionRepository_ListOrdersByName(t *testing.T) {
	db := setupDefinitionTestDB(t)
	repo := NewGormDefinitionRepository(db)
	ctx := context.Background()

	for _, name := range []string{"zeta", "alpha", "mid"} {
		stored, err := resolver.NewStoredDefinition(name, "", unitDefinition(t, "/"+name))
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, stored))
	}

	defs, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, defs, 3)
	assert.Equal(t, "alpha", defs[0].Name)
	assert.Equal(t, "mid", defs[1].Name)
	assert.Equal(t, "zeta", defs[2].Name)
}

func TestGormDefinitionRepository_Delete(t *testing.T) {
	db := setupDefinitionTestDB(t)
	repo := NewGormDefinitionRepository(db)
	ctx := context.Background()

	stored, err := resolver.NewStoredDefinition("get-user", "", unitDefinition(t, "/users/1"))
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, stored))

	require.NoError(t, repo.Delete(ctx, "get-user"))

	_, err = repo.FindByName(ctx, "get-user")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	err = repo.Delete(ctx, "get-user")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
