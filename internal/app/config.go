package app

import "time"

// Config holds runtime configuration for the application.
type Config struct {
	// Article selection
	Title    string
	Language string

	// Output
	OutputPath string
	PDFPath    string

	// Wiki API
	APIBaseURL   string
	UserAgent    string
	FetchTimeout time.Duration

	// Store
	DBPath  string
	DBTable string
	DBInit  bool

	// When set, skip extraction and print the stored grid for this key.
	LookupKey string

	Verbose bool
}
