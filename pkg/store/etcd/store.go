package etcd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"go.etcd.io/etcd/api/v3/mvccpb"
	"go.etcd.io/etcd/client/pkg/v3/srv"
	"go.etcd.io/etcd/client/pkg/v3/transport"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/yowenter/recordstore/pkg/store"
	"github.com/yowenter/recordstore/pkg/types"
)

// recordPrefix is the etcd keyspace holding one record per key. Record
// keys never contain "/", so the prefix cannot collide with them.
const recordPrefix = "/recordstore/v1/records/"

var (
	clientTimeout    = 10 * time.Second
	keepaliveTime    = 30 * time.Second
	keepaliveTimeout = 10 * time.Second
)

type Config struct {
	Endpoints    string `json:"etcdEndpoints"`
	DiscoverySrv string `json:"etcdDiscoverySrv"`
	Username     string `json:"etcdUsername"`
	Password     string `json:"etcdPassword"`
	KeyFile      string `json:"etcdKeyFile"`
	CertFile     string `json:"etcdCertFile"`
	CACertFile   string `json:"etcdCaCertFile"`
}

// Store persists each record as a json document under recordPrefix.
type Store struct {
	client *clientv3.Client
}

func NewStore(config *Config) (*Store, error) {
	if config.Endpoints != "" && config.DiscoverySrv != "" {
		return nil, errors.New("multiple discovery or bootstrap options specified, use either \"etcdEndpoints\" or \"etcdDiscoverySrv\"")
	}

	var endpoints []string
	if config.Endpoints != "" {
		endpoints = strings.Split(config.Endpoints, ",")
	}
	if config.DiscoverySrv != "" {
		srvs, srvErr := srv.GetClient("etcd-client", config.DiscoverySrv, "")
		if srvErr != nil {
			return nil, fmt.Errorf("failed to discover etcd endpoints through SRV discovery: %v", srvErr)
		}
		endpoints = srvs.Endpoints
	}
	if len(endpoints) == 0 {
		return nil, errors.New("no etcd endpoints specified")
	}

	tlsInfo := &transport.TLSInfo{
		TrustedCAFile: config.CACertFile,
		CertFile:      config.CertFile,
		KeyFile:       config.KeyFile,
	}
	tlsConfig, err := tlsInfo.ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("could not initialize etcdv3 client: %+v", err)
	}

	cfg := clientv3.Config{
		Endpoints:            endpoints,
		TLS:                  tlsConfig,
		DialTimeout:          clientTimeout,
		DialKeepAliveTime:    keepaliveTime,
		DialKeepAliveTimeout: keepaliveTimeout,
	}
	if config.Username != "" && config.Password != "" {
		cfg.Username = config.Username
		cfg.Password = config.Password
	}

	client, err := clientv3.New(cfg)
	if err != nil {
		return nil, err
	}

	timeoutCtx, cancel := context.WithTimeout(context.Background(), clientTimeout)
	defer cancel()
	if _, err = client.Status(timeoutCtx, endpoints[0]); err != nil {
		client.Close()
		return nil, err
	}

	return &Store{client: client}, nil
}

func (s *Store) List(ctx context.Context) ([]*types.Record, error) {
	resp, err := s.client.Get(ctx, recordPrefix, clientv3.WithPrefix())
	if err != nil {
		return nil, err
	}
	records := make([]*types.Record, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		rec, err := etcdToRecord(kv)
		if err != nil {
			log.Warnf("skipping undecodable record at %s: %v", string(kv.Key), err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *Store) Get(ctx context.Context, key string) (*types.Record, error) {
	resp, err := s.client.Get(ctx, recordKey(key))
	if err != nil {
		return nil, err
	}
	if len(resp.Kvs) == 0 {
		return nil, store.ErrNotFound
	}
	return etcdToRecord(resp.Kvs[0])
}

func (s *Store) Put(ctx context.Context, rec *types.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = s.client.Put(ctx, recordKey(rec.Key), string(data))
	return err
}

func (s *Store) Delete(ctx context.Context, key string) error {
	resp, err := s.client.Delete(ctx, recordKey(key))
	if err != nil {
		return err
	}
	if resp.Deleted == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	_, err := s.client.Delete(ctx, recordPrefix, clientv3.WithPrefix())
	return err
}

func (s *Store) Close() error {
	return s.client.Close()
}

func recordKey(key string) string {
	return recordPrefix + key
}

// etcdToRecord converts an etcd KeyValue into a record. The record key is
// recovered from the etcd key when the stored document lacks it.
func etcdToRecord(ekv *mvccpb.KeyValue) (*types.Record, error) {
	if ekv == nil {
		return nil, fmt.Errorf("none")
	}
	var rec types.Record
	if err := json.Unmarshal(ekv.Value, &rec); err != nil {
		return nil, err
	}
	if rec.Key == "" {
		rec.Key = strings.TrimPrefix(string(ekv.Key), recordPrefix)
	}
	return &rec, nil
}
