package coreloop

// ProcessMode selects the backend's row-processing behavior.
type ProcessMode string

const (
	ModeFreestyle     ProcessMode = "freestyle"
	ModeKeywordKombat ProcessMode = "keyword-kombat"
)

// ProcessRequest is the unified payload for POST /process. Freestyle runs
// require Data, Headers and Prompt; keyword-kombat runs require Keywords
// and CompanyURL.
type ProcessRequest struct {
	Mode ProcessMode `json:"mode,omitempty"`

	// Freestyle fields
	Data    map[string][]any `json:"data,omitempty"`
	Headers []string         `json:"headers,omitempty"`
	Prompt  string           `json:"prompt,omitempty"`

	// Keyword-kombat fields
	Keywords        []string `json:"keywords,omitempty"`
	CompanyURL      string   `json:"company_url,omitempty"`
	KeywordVariable string   `json:"keyword_variable,omitempty"`

	BatchSize          int  `json:"batch_size,omitempty"`
	EnableGoogleSearch bool `json:"enable_google_search,omitempty"`
	TestMode           bool `json:"test_mode,omitempty"`
}

// ProcessResponse is the backend's unified response. Freestyle runs report
// ProcessedCount/TotalCount; keyword-kombat runs report ProcessingTime and
// ItemsProcessed.
type ProcessResponse struct {
	Success        bool             `json:"success,omitempty"`
	Results        []map[string]any `json:"results"`
	ProcessedCount int              `json:"processed_count,omitempty"`
	TotalCount     int              `json:"total_count,omitempty"`
	ProcessingTime float64          `json:"processing_time,omitempty"`
	ItemsProcessed int              `json:"items_processed,omitempty"`
}

// HealthResponse is the payload of GET /.
type HealthResponse struct {
	Status  string   `json:"status"`
	App     string   `json:"app"`
	Version string   `json:"version"`
	Modes   []string `json:"modes"`
}
