package main

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRetryWithBackoff(t *testing.T) {
	attempts := 0
	err := retryWithBackoff(func() error {
		attempts++
		if attempts < 3 {
			return errors.New("not yet")
		}
		return nil
	}, 5, time.Millisecond, zap.NewNop(), "dependency")
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)

	attempts = 0
	err = retryWithBackoff(func() error {
		attempts++
		return errors.New("down")
	}, 2, time.Millisecond, zap.NewNop(), "dependency")
	require.Error(t, err)
	assert.Equal(t, 2, attempts)
	assert.Contains(t, err.Error(), "dependency failed after 2 attempts: down")
}

func TestRootCommand_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "toolserver", "mcp", "import"} {
		assert.True(t, names[want], want)
	}
	assert.NotNil(t, importCmd.Flags().Lookup("batch-size"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
}
