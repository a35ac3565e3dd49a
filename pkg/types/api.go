package types

// CreateRecordReq is the body of POST /api/data.
type CreateRecordReq struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// UpdateRecordReq is the body of PUT /api/data/:key.
type UpdateRecordReq struct {
	Value string `json:"value"`
}

type ListResponse struct {
	Success bool      `json:"success"`
	Data    []*Record `json:"data"`
	Count   int       `json:"count"`
}

type RecordResponse struct {
	Success bool    `json:"success"`
	Data    *Record `json:"data"`
	Message string  `json:"message"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type StatsResponse struct {
	Success bool        `json:"success"`
	Stats   *StoreStats `json:"stats"`
}

type HealthResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// StoreStats describes the store as reported by GET /api/stats.
// StorageSize is the byte length of the serialized store document,
// zero when the store is empty.
type StoreStats struct {
	Count                int    `json:"count"`
	StorageSize          int    `json:"storageSize"`
	StorageSizeFormatted string `json:"storageSizeFormatted"`
}
