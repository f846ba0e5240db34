package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	activityservice "github.com/dealdesk/dealdesk/internal/activity/service"
	"github.com/dealdesk/dealdesk/internal/customer/domain"
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
	return NewService(Params{
		DB:    db,
		Log:   log,
		GenID: node,
		ActivitySvc: activityservice.NewService(activityservice.Params{
			DB:    db,
			Log:   log,
			GenID: node,
		}),
	})
}

func TestCustomerCRUD(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateRequest{
		Name:    "  Acme Industrial  ",
		Email:   "buyer@acme.example",
		Company: "Acme",
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Industrial", created.Name)

	_, err = svc.Create(ctx, domain.CreateRequest{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	phone := "+49 30 1234"
	updated, err := svc.Update(ctx, domain.UpdateRequest{ID: created.ID, Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "+49 30 1234", updated.Phone)

	customers, err := svc.List(ctx, domain.ListRequest{Company: "Acme"})
	require.NoError(t, err)
	require.Len(t, customers, 1)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
