package models

import (
	"time"
)

// GenerationResult is the output of one generation run.
type GenerationResult struct {
	Identifier    string                 `json:"identifier"`
	Generator     string                 `json:"generator"`
	Seed          uint64                 `json:"seed"`
	Payload       map[string]interface{} `json:"payload"`
	Deterministic bool                   `json:"deterministic"`
	Cached        bool                   `json:"cached"`
	Timestamp     time.Time              `json:"timestamp"`
}

// GenerateRequest represents a request for a single generation
type GenerateRequest struct {
	Generator  string                 `json:"generator"`
	Identifier string                 `json:"identifier"`
	Params     map[string]interface{} `json:"params,omitempty"`
	TTLSeconds int                    `json:"ttl_seconds,omitempty"`
}

// BatchGenerateRequest represents a request for generating against multiple identifiers
type BatchGenerateRequest struct {
	Generator   string                 `json:"generator"`
	Identifiers []string               `json:"identifiers"`
	Params      map[string]interface{} `json:"params,omitempty"`
}

// IdentifierResult represents a single identifier result in batch generation
type IdentifierResult struct {
	Identifier string                 `json:"identifier"`
	Seed       uint64                 `json:"seed,omitempty"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
	Cached     bool                   `json:"cached"`
	Error      string                 `json:"error,omitempty"`
	Success    bool                   `json:"success"`
	Timestamp  time.Time              `json:"timestamp,omitempty"`
}

// BatchSummary provides summary statistics for batch operations
type BatchSummary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// BatchGenerateResponse represents the response for batch generation
type BatchGenerateResponse struct {
	Results   []IdentifierResult `json:"results"`
	Summary   BatchSummary       `json:"summary"`
	Timestamp time.Time          `json:"timestamp"`
}

// Record is a single fusion input record, a mapping of field name to value.
type Record map[string]interface{}

// FusionRequest represents a request to merge multiple record sources
type FusionRequest struct {
	KeyField string     `json:"key_field"`
	Sources  [][]Record `json:"sources"`
}

// FusionReport summarizes what happened during a fusion run
type FusionReport struct {
	MergedCount       int   `json:"merged_count"`
	DuplicatesRemoved int   `json:"duplicates_removed"`
	ConflictsResolved int   `json:"conflicts_resolved"`
	SkippedNoKey      int   `json:"skipped_no_key"`
	PerSource         []int `json:"per_source"`
}

// FusionResult is the deduplicated output plus its report
type FusionResult struct {
	Records   []Record     `json:"records"`
	Report    FusionReport `json:"report"`
	Timestamp time.Time    `json:"timestamp"`
}

// LogSeverity represents the severity level of a log entry
type LogSeverity string

const (
	LogSeverityLow    LogSeverity = "low"
	LogSeverityMedium LogSeverity = "medium"
	LogSeverityHigh   LogSeverity = "high"
)

// ProcessType represents the type of process that created the log
type ProcessType string

const (
	ProcessTypeRequest  ProcessType = "request"
	ProcessTypeInternal ProcessType = "internal"
)

// LogEvent represents a process-specific logging context
type LogEvent struct {
	ProcessID   string      `json:"process_id"`
	ProcessType ProcessType `json:"process_type"`
	StartTime   time.Time   `json:"start_time"`
	ClientIP    string      `json:"client_ip,omitempty"`
}

// LogEntry represents a structured log entry for database storage
type LogEntry struct {
	ID          string                 `json:"id"`
	Timestamp   time.Time              `json:"timestamp"`
	Severity    LogSeverity            `json:"severity,omitempty"`
	Message     string                 `json:"message"`
	Operation   string                 `json:"operation"`
	TargetName  string                 `json:"target_name,omitempty"`
	ProcessID   string                 `json:"process_id"`
	ProcessType ProcessType            `json:"process_type"`
	ClientIP    string                 `json:"client_ip,omitempty"`
	Error       string                 `json:"error,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}
