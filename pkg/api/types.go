package api

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/odbconv/pkg/convert"
	"github.com/ssargent/odbconv/pkg/metrics"
	"github.com/ssargent/odbconv/pkg/storage"
)

// Response headers carrying the batch report of a conversion
const (
	HeaderRunID          = "X-Odb-Run-Id"
	HeaderRecordsKept    = "X-Odb-Records-Kept"
	HeaderRecordsDropped = "X-Odb-Records-Dropped"
)

const (
	ContentTypeODB = "application/octet-stream"
	ContentTypeCSV = "text/csv; charset=utf-8"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Bind            string
	Port            int
	APIKey          string // empty disables key checks
	CORSOrigins     []string
	MaxBodyBytes    int64
	ShutdownTimeout time.Duration
}

// Converter runs in-memory conversions
type Converter interface {
	EncodeBytes(source string, input []byte) ([]byte, *convert.Summary, error)
	DecodeBytes(source string, input []byte) ([]byte, *convert.Summary, error)
}

// RunStore gives read access to archived runs
type RunStore interface {
	Get(id ksuid.KSUID) (*storage.Run, error)
	List(limit int) ([]*storage.Run, error)
}

// Dependencies are the collaborators a Server is built from. Runs may be nil
// when archiving is disabled.
type Dependencies struct {
	Converter Converter
	Runs      RunStore
	Metrics   *metrics.Metrics
	Logger    zerolog.Logger
}
