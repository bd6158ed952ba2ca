package repository

type StorageStats struct {
	TotalSessions    int   `json:"total_sessions" yaml:"total_sessions"`
	TotalExchanges   int   `json:"total_exchanges" yaml:"total_exchanges"`
	StorageSizeBytes int64 `json:"storage_size_bytes" yaml:"storage_size_bytes"`
}
