package datasets

import (
	"fmt"
	"sort"

	"github.com/benchfetch/benchfetch/internal/utils"
)

// Preset is a named, ordered set of archives published under one
// Zenodo record. Archives are listed in download order.
type Preset struct {
	Name        string
	Description string
	RecordID    string
	Dest        string
	Archives    []string
}

// Task is one (record, archive, destination) triple a preset expands
// to. Tasks are independent of each other.
type Task struct {
	RecordID string
	Archive  string
	Dest     string
}

var presets = map[string]Preset{
	"imagenet-c": {
		Name:        "imagenet-c",
		Description: "ImageNet-C corruption benchmark (Hendrycks & Dietterich)",
		RecordID:    "2235448",
		Dest:        "data/ImageNet-C",
		Archives:    []string{"blur.tar", "digital.tar", "extra.tar", "noise.tar", "weather.tar"},
	},
	"cifar10-c": {
		Name:        "cifar10-c",
		Description: "CIFAR-10-C corruption benchmark",
		RecordID:    "2535967",
		Dest:        "data/CIFAR-10-C",
		Archives:    []string{"CIFAR-10-C.tar"},
	},
	"cifar100-c": {
		Name:        "cifar100-c",
		Description: "CIFAR-100-C corruption benchmark",
		RecordID:    "3555552",
		Dest:        "data/CIFAR-100-C",
		Archives:    []string{"CIFAR-100-C.tar"},
	},
}

func Lookup(name string) (Preset, bool) {
	p, ok := presets[name]
	return p, ok
}

func Names() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tasks expands the preset into its ordered task list. outputDir
// overrides the preset's default destination when non-empty.
func (p Preset) Tasks(outputDir string) []Task {
	dest := p.Dest
	if outputDir != "" {
		dest = outputDir
	}
	tasks := make([]Task, 0, len(p.Archives))
	for _, archive := range p.Archives {
		tasks = append(tasks, Task{
			RecordID: p.RecordID,
			Archive:  archive,
			Dest:     dest,
		})
	}
	return tasks
}

// Jobs converts the preset's tasks into scheduler jobs, one per
// archive, preserving declaration order.
func (p Preset) Jobs(outputDir string, connections int, cfg utils.HTTPClientConfig) []utils.FetchJob {
	tasks := p.Tasks(outputDir)
	jobs := make([]utils.FetchJob, 0, len(tasks))
	for _, task := range tasks {
		jobs = append(jobs, utils.FetchJob{
			JobType:          "zenodo",
			Name:             fmt.Sprintf("%s/%s", p.Name, task.Archive),
			URL:              task.RecordID,
			OutputPath:       task.Dest,
			Connections:      connections,
			ProgressType:     "progress",
			HTTPClientConfig: cfg,
			Metadata: map[string]any{
				"file":    task.Archive,
				"extract": true,
			},
		})
	}
	return jobs
}
