package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/pretty"
)

const (
	ACTION_CREATE = "CREATE"
	ACTION_UPDATE = "UPDATE"
	ACTION_DELETE = "DELETE"
	ACTION_CLEAR  = "CLEAR"
)

// timestampLayout matches JavaScript's Date.toISOString: ISO-8601 UTC
// with millisecond precision.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// Record is one key/value entry with its associated timestamps and
// identifier, as exposed by the API.
type Record struct {
	Key          string `json:"key"`
	Value        string `json:"value"`
	Timestamp    string `json:"timestamp"`
	ID           string `json:"id"`
	LastModified string `json:"lastModified,omitempty"`
}

// StoredRecord is the persisted shape of a record. The key lives only in
// the enclosing document, mapping key -> StoredRecord.
type StoredRecord struct {
	Value        string `json:"value"`
	Timestamp    string `json:"timestamp"`
	ID           string `json:"id"`
	LastModified string `json:"lastModified,omitempty"`
}

// NewRecord builds a record with a fresh creation timestamp and id.
func NewRecord(key, value string) *Record {
	return &Record{
		Key:       key,
		Value:     value,
		Timestamp: NowISO(),
		ID:        uuid.NewString(),
	}
}

// MarkModified stamps the record with the current time. The creation
// timestamp and id are never touched after creation.
func (r *Record) MarkModified() {
	r.LastModified = NowISO()
}

func (r *Record) Clone() *Record {
	c := *r
	return &c
}

func ISOTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func NowISO() string {
	return ISOTimestamp(time.Now())
}

// MarshalStore serializes records into the canonical store document: a
// pretty-printed JSON object mapping key -> stored record. Go sorts map
// keys when encoding, so the layout is stable across rewrites.
func MarshalStore(records []*Record) ([]byte, error) {
	doc := make(map[string]*StoredRecord, len(records))
	for _, r := range records {
		doc[r.Key] = &StoredRecord{
			Value:        r.Value,
			Timestamp:    r.Timestamp,
			ID:           r.ID,
			LastModified: r.LastModified,
		}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return pretty.Pretty(data), nil
}

// UnmarshalStore parses a store document and restores the map keys into
// the records. Null entries carry no record and are dropped.
func UnmarshalStore(data []byte) ([]*Record, error) {
	var doc map[string]*StoredRecord
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	records := make([]*Record, 0, len(doc))
	for key, sr := range doc {
		if sr == nil {
			continue
		}
		records = append(records, &Record{
			Key:          key,
			Value:        sr.Value,
			Timestamp:    sr.Timestamp,
			ID:           sr.ID,
			LastModified: sr.LastModified,
		})
	}
	return records, nil
}
