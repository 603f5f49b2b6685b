package main

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd(slog.New(slog.NewTextHandler(io.Discard, nil)))

	for _, path := range [][]string{{"server"}, {"worker"}, {"migrate", "up"}, {"migrate", "down"}} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}

	down, _, err := root.Find([]string{"migrate", "down"})
	require.NoError(t, err)
	steps := down.Flags().Lookup("steps")
	require.NotNil(t, steps)
	assert.Equal(t, "1", steps.DefValue)
}
