package scheduler

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/benchfetch/benchfetch/internal/fetchers/gdrive"
	"github.com/benchfetch/benchfetch/internal/fetchers/gitclone"
	"github.com/benchfetch/benchfetch/internal/fetchers/httpfile"
	"github.com/benchfetch/benchfetch/internal/fetchers/s3"
	"github.com/benchfetch/benchfetch/internal/fetchers/zenodo"
	"github.com/benchfetch/benchfetch/internal/output"
	"github.com/benchfetch/benchfetch/internal/utils"
	"github.com/google/uuid"
)

// fetcherRegistry maps job types to their respective fetcher implementations
var fetcherRegistry = map[string]utils.Fetcher{
	"zenodo":       &zenodo.ZenodoFetcher{},
	"http":         &httpfile.HTTPFetcher{},
	"s3":           &s3.S3Fetcher{},
	"google-drive": &gdrive.GDriveFetcher{},
	"git-clone":    &gitclone.GitCloneFetcher{},
}

// Register installs a fetcher for a job type, replacing any existing
// one. Tests use it to substitute fakes.
func Register(jobType string, f utils.Fetcher) {
	fetcherRegistry[jobType] = f
}

// Run executes all jobs with numWorkers parallel workers. With one
// worker, jobs run sequentially in declaration order. Every job is
// attempted regardless of earlier failures; the returned error names
// each failed job.
func Run(jobs []utils.FetchJob, numWorkers int, fileLog bool) error {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if fileLog {
		if f, err := os.OpenFile(utils.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err == nil {
			utils.SetLogOutput(f)
			defer f.Close()
		}
	}

	outputMgr := output.NewManager()
	outputMgr.StartDisplay()

	jobCh := make(chan utils.FetchJob, len(jobs))
	for _, job := range jobs {
		jobCh <- job
	}
	close(jobCh)

	var mu sync.Mutex
	var failed []string

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				if err := processJob(&job, outputMgr); err != nil {
					mu.Lock()
					failed = append(failed, job.Name)
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()
	outputMgr.StopDisplay()

	if len(failed) > 0 {
		return fmt.Errorf("%d of %d downloads failed: %s", len(failed), len(jobs), strings.Join(failed, ", "))
	}
	return nil
}

func processJob(job *utils.FetchJob, outputMgr *output.Manager) error {
	job.ID = uuid.New().String()
	if job.Name == "" {
		job.Name = job.URL
	}
	taskID := outputMgr.Register(job.Name)

	fetcher, exists := fetcherRegistry[job.JobType]
	if !exists {
		err := fmt.Errorf("unknown job type: %s", job.JobType)
		outputMgr.ReportError(taskID, err)
		return err
	}

	outputMgr.SetStatus(taskID, "pending")
	outputMgr.SetMessage(taskID, fmt.Sprintf("Validating %s job", job.JobType))
	if err := fetcher.ValidateJob(job); err != nil {
		outputMgr.ReportError(taskID, fmt.Errorf("validation failed: %v", err))
		return err
	}

	job.PauseFunc = outputMgr.Pause
	job.ResumeFunc = outputMgr.Resume
	outputMgr.SetMessage(taskID, fmt.Sprintf("Building %s job", job.JobType))
	if err := fetcher.BuildJob(job); err != nil {
		if errors.Is(err, utils.ErrAlreadyExists) {
			outputMgr.Complete(taskID, fmt.Sprintf("%s already present, skipped", job.Name))
			return nil
		}
		outputMgr.ReportError(taskID, fmt.Errorf("build failed: %v", err))
		return err
	}

	switch job.ProgressType {
	case "stream":
		job.StreamFunc = func(line string) {
			outputMgr.AddStreamLine(taskID, line)
		}
	default:
		job.ProgressFunc = func(downloaded, total int64) {
			outputMgr.AddProgressBarToStream(taskID, downloaded, total, output.FormatBytes(uint64(max(downloaded, 0))))
		}
		job.StreamFunc = func(line string) {
			outputMgr.AddStreamLine(taskID, line)
		}
	}

	outputMgr.SetStatus(taskID, "downloading")
	outputMgr.SetMessage(taskID, fmt.Sprintf("Downloading %s", job.Name))
	if err := fetcher.Fetch(job); err != nil {
		if errors.Is(err, utils.ErrAlreadyExists) {
			outputMgr.Complete(taskID, fmt.Sprintf("%s already present, skipped", job.Name))
			return nil
		}
		outputMgr.ReportError(taskID, fmt.Errorf("download failed: %v", err))
		return err
	}

	outputMgr.Complete(taskID, fmt.Sprintf("Completed %s", job.Name))
	return nil
}
