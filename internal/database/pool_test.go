package database

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

func TestPoolConnectsLazilyAndStaysConnected(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	pool := NewPoolWithDialector(sqlite.Open(dsn))

	assert.Equal(t, StateDisconnected, pool.State())

	db, err := pool.DB()
	require.NoError(t, err)
	require.NotNil(t, db)
	assert.Equal(t, StateConnected, pool.State())

	// Subsequent calls reuse the same handle
	again, err := pool.DB()
	require.NoError(t, err)
	assert.Same(t, db, again)

	require.NoError(t, pool.Ping())
	assert.Equal(t, StateConnected, pool.State())
}

func TestPoolStaysDisconnectedOnConnectFailure(t *testing.T) {
	pool := NewPoolWithDialector(sqlite.Open("/nonexistent-dir/quiethours/test.db"))

	_, err := pool.DB()
	require.Error(t, err)
	assert.Equal(t, StateDisconnected, pool.State())
}

func TestPoolPingConnectsWhenDisconnected(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	pool := NewPoolWithDialector(sqlite.Open(dsn))

	require.NoError(t, pool.Ping())
	assert.Equal(t, StateConnected, pool.State())
}
