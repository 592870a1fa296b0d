package utils

import "time"

// Fetcher is the capability every download source implements. Jobs move
// through ValidateJob -> BuildJob -> Fetch; the first two may rewrite
// the job (resolve IDs, fill output paths) before any bytes move.
type Fetcher interface {
	ValidateJob(job *FetchJob) error
	BuildJob(job *FetchJob) error
	Fetch(job *FetchJob) error
}

type FetchJob struct {
	ID               string
	JobType          string
	Name             string // display name: archive name, URL or preset entry
	URL              string
	OutputPath       string
	Connections      int
	ProgressType     string // "progress" or "stream"
	ProgressFunc     func(downloaded, total int64)
	StreamFunc       func(line string)
	Metadata         map[string]any
	HTTPClientConfig HTTPClientConfig
	PauseFunc        func() // Request pause for output
	ResumeFunc       func() // Request resume for output
}

type DownloadConfig struct {
	URL              string
	OutputPath       string
	Connections      int
	HTTPClientConfig HTTPClientConfig
}

type DownloadChunk struct {
	ID         int
	StartByte  int64
	EndByte    int64
	Downloaded int64
	Completed  bool
	Retries    int
	LastError  error
	StartTime  time.Time
	FinishTime time.Time
}

type DownloadJob struct {
	Config    DownloadConfig
	FileSize  int64
	Chunks    []DownloadChunk
	StartTime time.Time
	TempFiles []string
}

type BatchEntry struct {
	OutputPath  string `yaml:"op,omitempty"`
	Link        string `yaml:"link,omitempty"`
	Record      string `yaml:"record,omitempty"`
	File        string `yaml:"file,omitempty"`
	Profile     string `yaml:"profile,omitempty"`
	APIKey      string `yaml:"api-key,omitempty"`
	Credentials string `yaml:"credentials,omitempty"`
}
