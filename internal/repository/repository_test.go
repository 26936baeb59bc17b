package repository_test

import (
	"testing"
	"time"

	"go-restaurant-authz/internal/model"
	"go-restaurant-authz/internal/repository"
	"go-restaurant-authz/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func TestPageRepoSeedAndAppend(t *testing.T) {
	repo := repository.NewPageRepo(setupTestDB(t))

	require.NoError(t, repo.SeedDefaults())
	require.NoError(t, repo.SeedDefaults())

	pages, err := repo.FindAll()
	require.NoError(t, err)
	require.Len(t, pages, len(model.DefaultPages))
	for i, p := range pages {
		assert.Equal(t, model.DefaultPages[i].Key, p.Key)
		assert.Equal(t, i, p.Position)
	}

	page := &model.PageDefinition{Key: "loyalty", Label: "Loyalty"}
	require.NoError(t, repo.Create(page))
	assert.Equal(t, len(model.DefaultPages), page.Position)

	found, err := repo.FindByKey("loyalty")
	require.NoError(t, err)
	assert.Equal(t, "Loyalty", found.Label)

	require.NoError(t, repo.Delete("loyalty"))
	assert.ErrorIs(t, repo.Delete("loyalty"), repository.ErrRecordNotFound)

	_, err = repo.FindByKey("loyalty")
	assert.ErrorIs(t, err, repository.ErrRecordNotFound)
}

func TestPageRepoSeedSkipsNonEmptyRegistry(t *testing.T) {
	repo := repository.NewPageRepo(setupTestDB(t))

	require.NoError(t, repo.Create(&model.PageDefinition{Key: "orders", Label: "Orders"}))
	require.NoError(t, repo.SeedDefaults())

	pages, err := repo.FindAll()
	require.NoError(t, err)
	assert.Len(t, pages, 1)
	assert.Equal(t, 0, pages[0].Position)
}

func TestAdminRepo(t *testing.T) {
	repo := repository.NewAdminRepo(setupTestDB(t))

	admin := &model.Admin{Name: "Ana", Email: "ana@example.com", Role: model.RoleAdmin, OutletScope: model.OutletSingle, Status: model.StatusActive}
	m := model.NewResponsibilityMatrix()
	m.FeatureAuthority[model.FeatureMenus] = true
	admin.SetResponsibilityMatrix(m)
	require.NoError(t, admin.SetPassword("password1"))
	require.NoError(t, repo.Create(admin))
	require.NotEqual(t, uuid.Nil, admin.ID)

	byEmail, err := repo.FindByEmail("ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, byEmail.ID)
	assert.True(t, byEmail.ResponsibilityMatrix().FeatureAuthority[model.FeatureMenus])

	at := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateSession(admin.ID, "v1", at))
	byID, err := repo.FindByID(admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "v1", byID.TokenVersion)
	require.NotNil(t, byID.LastLoginAt)
	assert.True(t, byID.LastLoginAt.Equal(at))

	require.NoError(t, repo.Delete(admin.ID))
	assert.ErrorIs(t, repo.Delete(admin.ID), repository.ErrRecordNotFound)

	_, err = repo.FindByIDForUpdate(admin.ID)
	assert.ErrorIs(t, err, repository.ErrRecordNotFound)
}

func TestAuditRepoKeysetPaging(t *testing.T) {
	repo := repository.NewAuditRepo(setupTestDB(t))

	_, err := repo.Latest()
	assert.ErrorIs(t, err, repository.ErrRecordNotFound)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		entityType := model.EntityAdmin
		if i%2 == 1 {
			entityType = model.EntityPermission
		}
		require.NoError(t, repo.Create(&model.AuditLog{
			ID:          uuid.New(),
			Timestamp:   base.Add(time.Duration(i) * time.Minute),
			PerformedBy: "root@example.com",
			Action:      model.ActionUpdateAdmin,
			EntityType:  entityType,
		}))
	}

	first, err := repo.FindPage(nil, nil, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.True(t, first[0].Timestamp.Equal(base.Add(4*time.Minute)))

	last := first[len(first)-1]
	rest, err := repo.FindPage(nil, &repository.AuditCursor{Timestamp: last.Timestamp, ID: last.ID}, 10)
	require.NoError(t, err)
	require.Len(t, rest, 3)
	assert.True(t, rest[0].Timestamp.Equal(base.Add(2*time.Minute)))

	perms, err := repo.FindPage(entityPtr(model.EntityPermission), nil, 10)
	require.NoError(t, err)
	assert.Len(t, perms, 2)

	latest, err := repo.Latest()
	require.NoError(t, err)
	assert.True(t, latest.Timestamp.Equal(base.Add(4*time.Minute)))

	since, err := repo.FindSince(base.Add(3 * time.Minute))
	require.NoError(t, err)
	assert.Len(t, since, 2)
}

func entityPtr(e model.EntityType) *model.EntityType {
	return &e
}
