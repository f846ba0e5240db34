package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	activityservice "github.com/dealdesk/dealdesk/internal/activity/service"
	"github.com/dealdesk/dealdesk/internal/catalog/domain"
	"github.com/dealdesk/dealdesk/internal/catalog/repository"
	"github.com/dealdesk/dealdesk/internal/migration"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(db))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	log := zaptest.NewLogger(t)
	return New(Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Repo:  repository.Provide(),
		ActivitySvc: activityservice.NewService(activityservice.Params{
			DB:    db,
			Log:   log,
			GenID: node,
		}),
	})
}

func TestCatalogCRUD(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateRequest{
		Code:         "PLC-100",
		Name:         "Compact PLC",
		Category:     "controllers",
		ListPrice:    decimal.RequireFromString("100"),
		PartnerPrice: decimal.RequireFromString("60"),
	})
	require.NoError(t, err)
	assert.True(t, created.Active)

	_, err = svc.Create(ctx, domain.CreateRequest{
		Code:         "PLC-100",
		Name:         "Duplicate",
		ListPrice:    decimal.RequireFromString("1"),
		PartnerPrice: decimal.RequireFromString("1"),
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateCode)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Compact PLC", got.Name)

	newPrice := decimal.RequireFromString("110")
	updated, err := svc.Update(ctx, domain.UpdateRequest{ID: created.ID, ListPrice: &newPrice})
	require.NoError(t, err)
	assert.Equal(t, "110", updated.ListPrice.String())

	archived, err := svc.Archive(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, archived.Active)

	active := true
	items, err := svc.List(ctx, domain.ListRequest{Active: &active})
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = svc.Get(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCatalogValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{Code: " ", Name: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidCode)

	_, err = svc.Create(ctx, domain.CreateRequest{Code: "x", Name: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateRequest{
		Code:      "x",
		Name:      "x",
		ListPrice: decimal.RequireFromString("-1"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)
}

func TestCatalogBulkCreate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	items, err := svc.BulkCreate(ctx, []domain.CreateRequest{
		{Code: "PLC-200", Name: "PLC", ListPrice: decimal.RequireFromString("500"), PartnerPrice: decimal.RequireFromString("350")},
		{Code: "HMI-7", Name: "HMI", ListPrice: decimal.RequireFromString("250"), PartnerPrice: decimal.RequireFromString("190")},
	})
	require.NoError(t, err)
	assert.Len(t, items, 2)

	// A duplicate inside the batch rejects the whole batch.
	_, err = svc.BulkCreate(ctx, []domain.CreateRequest{
		{Code: "DRV-1", Name: "Drive", ListPrice: decimal.RequireFromString("1"), PartnerPrice: decimal.RequireFromString("1")},
		{Code: "DRV-1", Name: "Drive again", ListPrice: decimal.RequireFromString("1"), PartnerPrice: decimal.RequireFromString("1")},
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateCode)

	// A collision with an existing row rejects it too, atomically.
	_, err = svc.BulkCreate(ctx, []domain.CreateRequest{
		{Code: "DRV-2", Name: "Drive", ListPrice: decimal.RequireFromString("1"), PartnerPrice: decimal.RequireFromString("1")},
		{Code: "PLC-200", Name: "Existing", ListPrice: decimal.RequireFromString("1"), PartnerPrice: decimal.RequireFromString("1")},
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateCode)

	all, err := svc.List(ctx, domain.ListRequest{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
