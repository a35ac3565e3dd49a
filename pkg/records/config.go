package records

import (
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/yowenter/recordstore/pkg/types"
)

const (
	BACKEND_FILE = "file"
	BACKEND_ETCD = "etcd"

	// DefaultServerConfig is used when no --config flag is given.
	DefaultServerConfig = "/etc/recordstore/server.yaml"

	defaultListen   = ":8080"
	defaultDataFile = "data/records.json"
)

func defaultServerConfiguration() *types.ServerConfiguration {
	return &types.ServerConfiguration{
		Listen:           defaultListen,
		StorageBackend:   BACKEND_FILE,
		DataFile:         defaultDataFile,
		CORSAllowOrigins: []string{"*"},
	}
}

// LoadServerConfig reads the server yaml config. A missing file is not
// an error, the server starts with defaults so it can run unconfigured.
func LoadServerConfig(path string) (*types.ServerConfiguration, error) {
	conf := defaultServerConfiguration()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warnf("config file %s not found, using defaults", path)
			return conf, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, conf); err != nil {
		return nil, err
	}
	if conf.Listen == "" {
		conf.Listen = defaultListen
	}
	if conf.StorageBackend == "" {
		conf.StorageBackend = BACKEND_FILE
	}
	if conf.DataFile == "" {
		conf.DataFile = defaultDataFile
	}
	return conf, nil
}
