package disk

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"gitlab.com/fleetops/whitelistd/internal/config"
	"gitlab.com/fleetops/whitelistd/internal/source/inventory/api"
	"gitlab.com/fleetops/whitelistd/whitelist"
)

const testWhitelistFile = `
bags:
  whitelist:
    batch-jobs:
      patterns:
        - "web-*.example.com"
        - "db-??.example.com"
      roles:
        - batch
    empty-roles:
      patterns: []
      roles: []
    no-roles:
      patterns:
        - "*.example.com"
    single-role:
      roles: backup
    broken:
      patterns: "web-*.example.com"
nodes:
  web-1.example.com:
    name: web-1
    roles:
      - web
      - canary
  db-01.example.com:
    roles:
      - db
`

func newTestSource(t *testing.T, content string) *Disk {
	t.Helper()

	cfg := &config.Config{}
	cfg.Store.File = filepath.Join(t.TempDir(), "whitelist.yml")
	require.NoError(t, os.WriteFile(cfg.Store.File, []byte(content), 0600))

	source, err := New(cfg)
	require.NoError(t, err)

	return source
}

func TestNew(t *testing.T) {
	t.Run("when the file can be parsed", func(t *testing.T) {
		source := newTestSource(t, testWhitelistFile)

		require.True(t, source.IsReady())
	})

	t.Run("when the file does not exist", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Store.File = filepath.Join(t.TempDir(), "missing.yml")

		source, err := New(cfg)

		require.Error(t, err)
		require.Nil(t, source)
	})

	t.Run("when the file is not valid YAML", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Store.File = filepath.Join(t.TempDir(), "whitelist.yml")
		require.NoError(t, os.WriteFile(cfg.Store.File, []byte("{{ not yaml"), 0600))

		source, err := New(cfg)

		require.Error(t, err)
		require.Nil(t, source)
	})
}

func TestDiskGetWhitelist(t *testing.T) {
	source := newTestSource(t, testWhitelistFile)

	t.Run("when the item has patterns and roles", func(t *testing.T) {
		record, err := source.GetWhitelist(context.Background(), "whitelist", "batch-jobs", "patterns")
		require.NoError(t, err)

		require.Equal(t, []string{"web-*.example.com", "db-??.example.com"}, record.Patterns)
		require.Equal(t, []string{"batch"}, record.Roles)
	})

	t.Run("when the roles key is missing", func(t *testing.T) {
		record, err := source.GetWhitelist(context.Background(), "whitelist", "no-roles", "patterns")
		require.NoError(t, err)

		require.Nil(t, record.Roles)
	})

	t.Run("when the roles key is present but empty", func(t *testing.T) {
		record, err := source.GetWhitelist(context.Background(), "whitelist", "empty-roles", "patterns")
		require.NoError(t, err)

		require.NotNil(t, record.Roles)
		require.Empty(t, record.Roles)
	})

	t.Run("when the roles key is a bare string", func(t *testing.T) {
		record, err := source.GetWhitelist(context.Background(), "whitelist", "single-role", "patterns")
		require.NoError(t, err)

		require.Equal(t, []string{"backup"}, record.Roles)
	})

	t.Run("when the item does not exist", func(t *testing.T) {
		record, err := source.GetWhitelist(context.Background(), "whitelist", "unknown", "patterns")

		require.ErrorIs(t, err, whitelist.ErrWhitelistNotFound)
		require.Nil(t, record)
	})

	t.Run("when the bag does not exist", func(t *testing.T) {
		record, err := source.GetWhitelist(context.Background(), "acl", "batch-jobs", "patterns")

		require.ErrorIs(t, err, whitelist.ErrWhitelistNotFound)
		require.Nil(t, record)
	})

	t.Run("when the patterns attribute is malformed", func(t *testing.T) {
		record, err := source.GetWhitelist(context.Background(), "whitelist", "broken", "patterns")

		require.ErrorIs(t, err, whitelist.ErrMalformedWhitelist)
		require.Nil(t, record)
	})
}

func TestDiskGetNode(t *testing.T) {
	source := newTestSource(t, testWhitelistFile)

	t.Run("when the node exists", func(t *testing.T) {
		node, err := source.GetNode(context.Background(), "web-1.example.com")
		require.NoError(t, err)

		require.Equal(t, "web-1", node.Name)
		require.Equal(t, "web-1.example.com", node.FQDN)
		require.Equal(t, []string{"web", "canary"}, node.Roles)
	})

	t.Run("when the node has no explicit name", func(t *testing.T) {
		node, err := source.GetNode(context.Background(), "db-01.example.com")
		require.NoError(t, err)

		require.Equal(t, "db-01.example.com", node.Name)
	})

	t.Run("when the node does not exist", func(t *testing.T) {
		node, err := source.GetNode(context.Background(), "gone.example.com")

		require.ErrorIs(t, err, api.ErrNodeNotFound)
		require.Nil(t, node)
	})
}

func TestReload(t *testing.T) {
	t.Run("picks up new file content", func(t *testing.T) {
		source := newTestSource(t, testWhitelistFile)

		_, err := source.GetWhitelist(context.Background(), "whitelist", "new-item", "patterns")
		require.ErrorIs(t, err, whitelist.ErrWhitelistNotFound)

		updated := `
bags:
  acl:
    new-item:
      patterns:
        - "*"
`
		require.NoError(t, os.WriteFile(source.path, []byte(updated), 0600))
		require.NoError(t, source.Reload())

		record, err := source.GetWhitelist(context.Background(), "acl", "new-item", "patterns")
		require.NoError(t, err)
		require.Equal(t, []string{"*"}, record.Patterns)
	})

	t.Run("keeps previous content when the new file is broken", func(t *testing.T) {
		source := newTestSource(t, testWhitelistFile)

		require.NoError(t, os.WriteFile(source.path, []byte("{{ not yaml"), 0600))
		require.Error(t, source.Reload())

		record, err := source.GetWhitelist(context.Background(), "whitelist", "batch-jobs", "patterns")
		require.NoError(t, err)
		require.Equal(t, []string{"web-*.example.com", "db-??.example.com"}, record.Patterns)
	})
}
