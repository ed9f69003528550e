package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_HasMigrateAndConfigFlag(t *testing.T) {
	root := newRootCmd()

	migrateCmd, _, err := root.Find([]string{"migrate"})
	require.NoError(t, err)
	assert.Equal(t, "migrate", migrateCmd.Name())
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestRootCmd_InvalidConfigFails(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("BEARER_TOKEN", "")

	root := newRootCmd()
	root.SetArgs([]string{"migrate"})
	err := root.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}
