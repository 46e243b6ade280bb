package main

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/projeto-integrador-integra/integra-backend/internal/config"
	"github.com/projeto-integrador-integra/integra-backend/internal/models"
	"github.com/projeto-integrador-integra/integra-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootstrap_FailureReleasesDatabase(t *testing.T) {
	logger.InitWithWriter("error", io.Discard)

	cfg := config.DefaultConfig()
	cfg.Database.DSN = filepath.Join(t.TempDir(), "integra.db")
	cfg.Project.StatsSchedule = "not a schedule"

	svc, err := bootstrap(context.Background(), cfg)
	require.Error(t, err)
	assert.Nil(t, svc)
	assert.Contains(t, err.Error(), "start stats scheduler")

	sqlDB, err := models.GetDB().DB()
	require.NoError(t, err)
	assert.Error(t, sqlDB.Ping(), "database handle should be closed after a failed bootstrap")
}

func TestShutdown_PartialServices(t *testing.T) {
	logger.InitWithWriter("error", io.Discard)

	svc := &appServices{cfg: config.DefaultConfig()}
	assert.NotPanics(t, svc.shutdown)
}
