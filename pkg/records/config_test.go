package records

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServerConfigDefaults(t *testing.T) {
	conf, err := LoadServerConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", conf.Listen)
	assert.Equal(t, BACKEND_FILE, conf.StorageBackend)
	assert.Equal(t, "data/records.json", conf.DataFile)
	assert.Equal(t, []string{"*"}, conf.CORSAllowOrigins)
}

func TestLoadServerConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen: ":9090"
debug: true
storageBackend: etcd
etcdEndpoints: "https://etcd-1:2379,https://etcd-2:2379"
corsAllowOrigins:
  - https://app.example.com
`), 0o644))

	conf, err := LoadServerConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", conf.Listen)
	assert.True(t, conf.Debug)
	assert.Equal(t, BACKEND_ETCD, conf.StorageBackend)
	assert.Equal(t, "https://etcd-1:2379,https://etcd-2:2379", conf.EtcdEndpoints)
	assert.Equal(t, []string{"https://app.example.com"}, conf.CORSAllowOrigins)

	// unset fields keep their defaults
	assert.Equal(t, "data/records.json", conf.DataFile)
}

func TestLoadServerConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: [broken"), 0o644))

	_, err := LoadServerConfig(path)
	assert.Error(t, err)
}
