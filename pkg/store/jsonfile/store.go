package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/btree"

	"github.com/yowenter/recordstore/pkg/store"
	"github.com/yowenter/recordstore/pkg/types"
)

type item struct {
	key string
	rec *types.Record
}

func byKey(a, b interface{}) bool {
	i1, i2 := a.(*item), b.(*item)
	return i1.key < i2.key
}

// Store keeps all records in an in-memory btree ordered by key and
// mirrors every mutation to a single json file. The file is the source
// of truth only at startup; at runtime memory wins and write failures
// are reported as store.ErrPersist.
type Store struct {
	path string

	mu   sync.RWMutex
	tree *btree.BTree
}

// Open loads the store from path. A missing, empty or unparsable file is
// not an error, the store simply starts empty.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "could not create data directory %s", dir)
	}
	s := &Store{
		path: path,
		tree: btree.NewNonConcurrent(byKey),
	}
	s.load()
	return s, nil
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warnf("could not read store file %s, starting empty: %v", s.path, err)
		}
		return
	}
	if len(data) == 0 {
		return
	}
	records, err := types.UnmarshalStore(data)
	if err != nil {
		log.Warnf("store file %s is not valid json, starting empty: %v", s.path, err)
		return
	}
	for _, rec := range records {
		s.tree.Set(&item{key: rec.Key, rec: rec})
	}
	log.Infof("loaded %d records from %s", len(records), s.path)
}

func (s *Store) List(ctx context.Context) ([]*types.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotUnderLock(), nil
}

func (s *Store) Get(ctx context.Context, key string) (*types.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	found := s.tree.Get(&item{key: key})
	if found == nil {
		return nil, store.ErrNotFound
	}
	return found.(*item).rec.Clone(), nil
}

func (s *Store) Put(ctx context.Context, rec *types.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := rec.Clone()
	s.tree.Set(&item{key: c.Key, rec: c})
	return s.persistUnderLock()
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if deleted := s.tree.Delete(&item{key: key}); deleted == nil {
		return store.ErrNotFound
	}
	return s.persistUnderLock()
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree = btree.NewNonConcurrent(byKey)
	return s.persistUnderLock()
}

// Close flushes the store to disk one last time.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistUnderLock()
}

func (s *Store) snapshotUnderLock() []*types.Record {
	records := make([]*types.Record, 0, s.tree.Len())
	s.tree.Ascend(nil, func(i interface{}) bool {
		records = append(records, i.(*item).rec.Clone())
		return true
	})
	return records
}

func (s *Store) persistUnderLock() error {
	data, err := types.MarshalStore(s.snapshotUnderLock())
	if err != nil {
		return errors.Wrapf(store.ErrPersist, "could not serialize store: %v", err)
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		return errors.Wrapf(store.ErrPersist, "could not write store file %s: %v", s.path, err)
	}
	return nil
}

// writeFileAtomic writes data to a temp file in the destination
// directory, syncs it and renames it over path, so readers never observe
// a partially written store.
func writeFileAtomic(path string, data []byte) error {
	dir, name := filepath.Split(path)
	tmp, err := os.CreateTemp(dir, name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err = tmp.Write(data); err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
