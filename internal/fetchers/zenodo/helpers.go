package zenodo

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"

	"github.com/benchfetch/benchfetch/internal/utils"
)

// apiBase is a var so tests can point the fetcher at a local server.
var apiBase = "https://zenodo.org/api/records"

// RecordFile is one downloadable file of a published record.
type RecordFile struct {
	Name        string
	Size        int64
	DownloadURL string
	Checksum    string
}

var recordRefPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(\d+)$`),
	regexp.MustCompile(`^https?://zenodo\.org/records?/(\d+)/?.*$`),
	regexp.MustCompile(`^(?:doi:|https?://doi\.org/)?10\.5281/zenodo\.(\d+)$`),
}

// parseRecordRef accepts a bare record ID, a zenodo.org record URL, or
// a DOI-style reference and returns the numeric record ID.
func parseRecordRef(ref string) (string, error) {
	for _, pattern := range recordRefPatterns {
		matches := pattern.FindStringSubmatch(ref)
		if len(matches) == 2 {
			return matches[1], nil
		}
	}
	return "", fmt.Errorf("invalid Zenodo record reference: %s", ref)
}

func getRecord(recordID string, client *utils.BenchHTTPClient) (map[string]any, error) {
	apiURL := fmt.Sprintf("%s/%s", apiBase, recordID)
	req, err := http.NewRequest("GET", apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating API request: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making API request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("record %s not found", recordID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status code: %d", resp.StatusCode)
	}
	var record map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, fmt.Errorf("error decoding API response: %v", err)
	}
	return record, nil
}

// parseRecordFiles handles both the current records API shape
// ("key" + links.self) and the legacy one ("filename" + links.download).
func parseRecordFiles(record map[string]any, recordID string) ([]RecordFile, error) {
	rawFiles, ok := record["files"].([]any)
	if !ok || len(rawFiles) == 0 {
		return nil, fmt.Errorf("no files found in record %s", recordID)
	}
	var files []RecordFile
	for _, raw := range rawFiles {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		rf := RecordFile{}
		if key, _ := entry["key"].(string); key != "" {
			rf.Name = key
		} else if fn, _ := entry["filename"].(string); fn != "" {
			rf.Name = fn
		} else {
			continue
		}
		if size, ok := entry["size"].(float64); ok {
			rf.Size = int64(size)
		} else if size, ok := entry["filesize"].(float64); ok {
			rf.Size = int64(size)
		}
		rf.Checksum, _ = entry["checksum"].(string)
		if links, ok := entry["links"].(map[string]any); ok {
			if self, _ := links["self"].(string); self != "" {
				rf.DownloadURL = self
			} else if dl, _ := links["download"].(string); dl != "" {
				rf.DownloadURL = dl
			}
		}
		if rf.DownloadURL == "" {
			rf.DownloadURL = fmt.Sprintf("https://zenodo.org/records/%s/files/%s?download=1", recordID, rf.Name)
		}
		files = append(files, rf)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no downloadable files in record %s", recordID)
	}
	return files, nil
}

func selectFile(files []RecordFile, name string) (RecordFile, error) {
	for _, rf := range files {
		if rf.Name == name {
			return rf, nil
		}
	}
	available := make([]string, 0, len(files))
	for _, rf := range files {
		available = append(available, rf.Name)
	}
	return RecordFile{}, fmt.Errorf("file %q not found in record, available: %v", name, available)
}
