package database_test

import (
	"context"
	"testing"

	"example.com/outcry/internal/database"
	"example.com/outcry/internal/models"
	"example.com/outcry/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedLookupsIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	require.NoError(t, database.SeedLookups(db))

	gormDB, err := db.DB()
	require.NoError(t, err)

	var statuses []models.JobStatus
	require.NoError(t, gormDB.Order("job_status_id").Find(&statuses).Error)
	require.Len(t, statuses, 5)
	assert.Equal(t, "Quote", statuses[0].JobStatus)
	assert.Equal(t, "Work Order", statuses[1].JobStatus)

	var stages []models.ThroughputStage
	require.NoError(t, gormDB.Order("stage_order").Find(&stages).Error)
	require.Len(t, stages, 3)
	assert.Equal(t, models.StagePreProduction, stages[0].StageID)

	var count int64
	require.NoError(t, gormDB.Model(&models.ThroughputStatus{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestPing(t *testing.T) {
	db := testutil.NewDB(t)
	assert.NoError(t, db.Ping(context.Background()))
}
