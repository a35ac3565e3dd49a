package types

// ServerConfiguration is loaded from the server yaml config file.
type ServerConfiguration struct {
	Listen string `yaml:"listen"`
	Debug  bool   `yaml:"debug"`

	// StorageBackend selects the persistence backend, "file" or "etcd".
	StorageBackend string `yaml:"storageBackend"`

	// DataFile is the json mirror path used by the file backend.
	DataFile string `yaml:"dataFile"`

	EtcdEndpoints    string `yaml:"etcdEndpoints"`
	EtcdDiscoverySrv string `yaml:"etcdDiscoverySrv"`
	EtcdUsername     string `yaml:"etcdUsername"`
	EtcdPassword     string `yaml:"etcdPassword"`
	EtcdKeyFile      string `yaml:"etcdKeyFile"`
	EtcdCertFile     string `yaml:"etcdCertFile"`
	EtcdCACertFile   string `yaml:"etcdCaCertFile"`

	CORSAllowOrigins []string `yaml:"corsAllowOrigins"`
}
