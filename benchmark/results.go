package benchmark

import (
	"storagebench/config"
)

// StorageResult groups the upload results of one storage.
type StorageResult struct {
	Name    string       `json:"name"`
	Results []FileResult `json:"results"`
}

// FileResult holds the upload trials of one file to one storage.
// AverageDuration is nil, and serialized as null, when no trial succeeded.
type FileResult struct {
	FileSource      string    `json:"fileSource"`
	FileSizeBytes   int64     `json:"fileSizeBytes"`
	AverageDuration *int64    `json:"averageDuration"`
	Results         []Outcome `json:"results"`

	Trials TrialSet `json:"-"`
}

// DownloadResult holds the download trials of one URL.
// AverageDuration is nil, and serialized as null, when no trial succeeded.
type DownloadResult struct {
	FileURL         string    `json:"fileUrl"`
	AverageDuration *int64    `json:"averageDuration"`
	Results         []Outcome `json:"results"`

	Trials TrialSet `json:"-"`
}

func newFileResult(file config.FileSource, set TrialSet) FileResult {
	return FileResult{
		FileSource:      file.Path,
		FileSizeBytes:   file.Size,
		AverageDuration: set.AverageMillis(),
		Results:         nonNil(set.Outcomes),
		Trials:          set,
	}
}

func newDownloadResult(target config.DownloadTarget, set TrialSet) DownloadResult {
	return DownloadResult{
		FileURL:         target.URL,
		AverageDuration: set.AverageMillis(),
		Results:         nonNil(set.Outcomes),
		Trials:          set,
	}
}

// nonNil makes empty trial lists serialize as [] instead of null.
func nonNil(outcomes []Outcome) []Outcome {
	if outcomes == nil {
		return []Outcome{}
	}
	return outcomes
}
