package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/lostfound/internal/collection/sqltable"
	"github.com/vbonduro/lostfound/internal/config"
	"github.com/vbonduro/lostfound/internal/db"
	"github.com/vbonduro/lostfound/internal/domain"
	"github.com/vbonduro/lostfound/internal/photostore/local"
	"github.com/vbonduro/lostfound/internal/resolver/cloudinary"
	"github.com/vbonduro/lostfound/internal/resolver/inline"
	"github.com/vbonduro/lostfound/internal/resolver/stored"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// seed writes items straight into a SQLite file the CLI will then open.
func seed(t *testing.T, path string, items ...domain.NewItem) []string {
	t.Helper()
	database, err := db.Open(path)
	require.NoError(t, err)
	defer database.Close()

	coll := sqltable.NewSQLite(database, slog.New(slog.NewTextHandler(io.Discard, nil)))
	var ids []string
	for _, in := range items {
		it, err := coll.Insert(context.Background(), in)
		require.NoError(t, err)
		ids = append(ids, it.ID)
	}
	return ids
}

func setupEnv(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lostfound.db")
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("DB_PATH", path)
	t.Setenv("LOG_LEVEL", "error")
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	return path
}

func TestItemsList(t *testing.T) {
	path := setupEnv(t)

	out, err := run(t, "items", "list")
	require.NoError(t, err)
	assert.Equal(t, "No items found\n", out)

	seed(t, path,
		domain.NewItem{Name: "Umbrella", Description: "Red", Location: "Bus 42", Date: "2024-03-08", Status: domain.StatusLost},
		domain.NewItem{Name: "Keys", Description: "Three keys", Location: "Park", Date: "2024-03-09", Status: domain.StatusFound},
	)

	out, err = run(t, "items", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Umbrella")
	assert.Contains(t, out, "Keys")
	assert.Contains(t, out, "Mar 9, 2024")

	out, err = run(t, "items", "list", "--status", "Found")
	require.NoError(t, err)
	assert.Contains(t, out, "Keys")
	assert.NotContains(t, out, "Umbrella")

	_, err = run(t, "items", "list", "--status", "Stolen")
	assert.Error(t, err)
}

func TestItemsGetAndDelete(t *testing.T) {
	path := setupEnv(t)
	ids := seed(t, path, domain.NewItem{Name: "Scarf", Description: "Wool", Location: "Cafe", Date: "2024-03-01", Status: domain.StatusFound})

	out, err := run(t, "items", "get", ids[0])
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "Scarf"`)

	out, err = run(t, "items", "delete", ids[0])
	require.NoError(t, err)
	assert.Equal(t, "deleted "+ids[0]+"\n", out)

	_, err = run(t, "items", "get", ids[0])
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = run(t, "items", "delete", ids[0])
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = run(t, "items", "get")
	assert.Error(t, err)
}

func TestConfigErrorSurfaces(t *testing.T) {
	setupEnv(t)
	t.Setenv("STORE_BACKEND", "oracle")
	_, err := run(t, "items", "list")
	assert.ErrorContains(t, err, `unknown STORE_BACKEND "oracle"`)
}

func TestNewResolver(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	photos, err := local.NewLocalPhotoStore(t.TempDir())
	require.NoError(t, err)

	cfg := &config.Config{ImageStrategy: config.StrategyRemote, ImageHostURL: cloudinary.DefaultBaseURL, Destinations: cloudinary.DefaultDestinations}
	assert.IsType(t, &cloudinary.Uploader{}, newResolver(cfg, nil, logger))

	cfg.ImageStrategy = config.StrategyStored
	assert.IsType(t, &stored.Resolver{}, newResolver(cfg, photos, logger))

	cfg.ImageStrategy = config.StrategyInline
	assert.IsType(t, &inline.Encoder{}, newResolver(cfg, nil, logger))
}

func TestOpenPhotoStoreLocal(t *testing.T) {
	cfg := &config.Config{PhotoBackend: config.PhotoLocal, PhotoPath: t.TempDir()}
	ps, err := openPhotoStore(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &local.LocalPhotoStore{}, ps)
}
