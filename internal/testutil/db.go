// Package testutil provides shared helpers for package tests. Tests run
// against an in-memory SQLite database so no external services are needed.
package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/brickline/lead-api/internal/auth"
	"github.com/brickline/lead-api/internal/domain"
)

// SetupTestDB opens an in-memory SQLite database and migrates the schema.
// Each call returns an isolated database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open in-memory database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A :memory: database exists per connection, keep the pool at one
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&domain.Lead{},
		&domain.LeadTimelineEntry{},
		&domain.Booking{},
		&domain.PaymentStage{},
		&domain.LeadDocument{},
	))

	return db
}

// CreateTestLead inserts a lead in the given stage and returns it.
func CreateTestLead(t *testing.T, db *gorm.DB, stage domain.LeadStage) *domain.Lead {
	t.Helper()

	lead := &domain.Lead{
		Name:    "Asha Verma",
		Phone:   "+91 98200 11223",
		Email:   "asha.verma@example.com",
		Source:  domain.LeadSourceWebsite,
		Budget:  7500000,
		Stage:   stage,
		OwnerID: uuid.New().String(),
	}
	require.NoError(t, db.Create(lead).Error)
	return lead
}

// TestContext returns a context carrying an authenticated agent.
func TestContext() context.Context {
	userCtx := &auth.UserContext{
		UserID:      uuid.New(),
		DisplayName: "Test Agent",
		Email:       "agent@example.com",
		Roles:       []domain.UserRoleType{domain.RoleAgent},
	}
	return auth.WithUserContext(context.Background(), userCtx)
}
