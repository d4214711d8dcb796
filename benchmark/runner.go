package benchmark

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"storagebench/config"
	"storagebench/report"
)

// UploaderFactory builds the uploader of one storage target.
type UploaderFactory func(ctx context.Context, storage config.StorageTarget) (Uploader, error)

// Fetcher downloads one URL per call.
type Fetcher interface {
	Download(ctx context.Context, target config.DownloadTarget) Outcome
}

// Progress tracks the trials of one phase.
type Progress interface {
	Stepper
	Done()
}

// ProgressFactory starts a progress display for total trials.
type ProgressFactory func(total int64, caption string) Progress

// Results is everything a run produced.
type Results struct {
	Uploads   []StorageResult
	Downloads []DownloadResult

	// Paths of the written reports, empty when a phase was skipped.
	UploadReport   string
	DownloadReport string
}

// Runner executes the upload and download benchmarks of a plan. Every trial
// runs sequentially on the calling goroutine.
type Runner struct {
	plan   *config.Plan
	params BenchmarkParams

	newUploader UploaderFactory
	downloader  Fetcher
	newProgress ProgressFactory
	limiter     *rate.Limiter
	now         Clock
	log         logrus.FieldLogger
	summary     io.Writer
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithUploaderFactory replaces the driver-based uploader construction.
func WithUploaderFactory(f UploaderFactory) RunnerOption {
	return func(r *Runner) { r.newUploader = f }
}

// WithDownloader replaces the HTTP downloader.
func WithDownloader(f Fetcher) RunnerOption {
	return func(r *Runner) { r.downloader = f }
}

// WithProgress shows a progress display per phase.
func WithProgress(f ProgressFactory) RunnerOption {
	return func(r *Runner) { r.newProgress = f }
}

// WithSummary prints a console summary of each phase to w.
func WithSummary(w io.Writer) RunnerOption {
	return func(r *Runner) { r.summary = w }
}

// WithRunnerClock sets the clock report timestamps are taken from.
func WithRunnerClock(now Clock) RunnerOption {
	return func(r *Runner) { r.now = now }
}

// WithRunnerLogger sets the logger of the run.
func WithRunnerLogger(log logrus.FieldLogger) RunnerOption {
	return func(r *Runner) { r.log = log }
}

// NewRunner creates a Runner for plan.
func NewRunner(plan *config.Plan, opts ...RunnerOption) *Runner {
	r := &Runner{
		plan:   plan,
		params: NewParams(plan.Test),
		now:    time.Now,
		log:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.limiter = NewLimiter(r.params.TrialsPerSecond)

	if r.newUploader == nil {
		r.newUploader = func(ctx context.Context, storage config.StorageTarget) (Uploader, error) {
			return NewUploader(ctx, storage, r.transferOptions()...)
		}
	}
	return r
}

func (r *Runner) transferOptions() []Option {
	return []Option{
		WithLogger(r.log),
		WithTimeout(r.params.RequestTimeout),
		WithMaxRedirects(r.params.MaxRedirects),
	}
}

// Run executes the enabled benchmarks and writes their reports. A report
// that cannot be written does not stop the other one; the failures are
// returned together.
func (r *Runner) Run(ctx context.Context) (*Results, error) {
	res := &Results{}
	var errs []error

	if r.params.IsUpload {
		res.Uploads = r.RunUploads(ctx)
		r.displayUploads(res.Uploads)

		path, err := r.writeReport("upload", r.params.UploadResultLocation, res.Uploads)
		if err != nil {
			errs = append(errs, err)
		} else {
			res.UploadReport = path
		}
	}

	if r.params.IsDownload {
		res.Downloads = r.RunDownloads(ctx)
		r.displayDownloads(res.Downloads)

		path, err := r.writeReport("download", r.params.DownloadResultLocation, res.Downloads)
		if err != nil {
			errs = append(errs, err)
		} else {
			res.DownloadReport = path
		}
	}

	return res, errors.Join(errs...)
}

// RunUploads uploads every file to every storage NumberUpload times.
func (r *Runner) RunUploads(ctx context.Context) []StorageResult {
	storages, files := r.plan.Storages, r.plan.Files
	bar := r.startProgress(len(storages)*len(files)*r.params.NumberUpload, "Uploading")
	defer bar.Done()

	results := make([]StorageResult, 0, len(storages))
	for _, storage := range storages {
		log := r.log.WithFields(logrus.Fields{"storage": storage.Name, "driver": storage.Driver})

		up, err := r.newUploader(ctx, storage)
		if err != nil {
			log.WithError(err).Error("Failed to initialize storage client")
			up = failingUploader{err: err}
		}

		sr := StorageResult{Name: storage.Name, Results: make([]FileResult, 0, len(files))}
		for _, file := range files {
			set := RunTrials(ctx, r.params.NumberUpload, func(ctx context.Context) Outcome {
				return up.Upload(ctx, file)
			}, TrialOptions{Limiter: r.limiter, Progress: bar, Kind: KindUpload})

			sr.Results = append(sr.Results, newFileResult(file, set))
			logTrialSet(log.WithField("file", file.Path), set)
		}
		results = append(results, sr)
	}
	return results
}

// RunDownloads fetches every download target NumberDownload times.
func (r *Runner) RunDownloads(ctx context.Context) []DownloadResult {
	downloads := r.plan.Downloads
	fetcher := r.fetcher()

	if dir := r.params.DownloadDirectory; dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			r.log.WithError(err).WithField("directory", dir).Error("Failed to create download directory")
		}
	}

	bar := r.startProgress(len(downloads)*r.params.NumberDownload, "Downloading")
	defer bar.Done()

	results := make([]DownloadResult, 0, len(downloads))
	for _, target := range downloads {
		set := RunTrials(ctx, r.params.NumberDownload, func(ctx context.Context) Outcome {
			return fetcher.Download(ctx, target)
		}, TrialOptions{Limiter: r.limiter, Progress: bar, Kind: KindDownload})

		results = append(results, newDownloadResult(target, set))
		logTrialSet(r.log.WithField("url", target.URL), set)
	}
	return results
}

func (r *Runner) fetcher() Fetcher {
	if r.downloader != nil {
		return r.downloader
	}
	d, err := NewDownloader(r.transferOptions()...)
	if err != nil {
		r.log.WithError(err).Error("Failed to initialize HTTP client")
		return failingFetcher{err: err}
	}
	r.downloader = d
	return d
}

func (r *Runner) writeReport(kind, template string, v any) (string, error) {
	path, err := report.Write(template, r.now(), v)
	if err != nil {
		r.log.WithError(err).WithField("path", path).Errorf("Failed to save %s results", kind)
		return "", fmt.Errorf("%s report: %w", kind, err)
	}
	r.log.WithField("path", path).Infof("JSON %s results saved", kind)
	return path, nil
}

func (r *Runner) startProgress(total int, caption string) Progress {
	if r.newProgress == nil || total <= 0 {
		return nopProgress{}
	}
	return r.newProgress(int64(total), caption)
}

func (r *Runner) displayUploads(results []StorageResult) {
	if r.summary == nil {
		return
	}
	var rows []report.Row
	for _, sr := range results {
		for _, fr := range sr.Results {
			rows = append(rows, summaryRow(sr.Name, fr.FileSource, fr.FileSizeBytes, fr.Trials))
		}
	}
	report.DisplayResults(r.summary, "Upload", rows)
}

func (r *Runner) displayDownloads(results []DownloadResult) {
	if r.summary == nil {
		return
	}
	var rows []report.Row
	for _, dr := range results {
		rows = append(rows, summaryRow(dr.FileURL, "", 0, dr.Trials))
	}
	report.DisplayResults(r.summary, "Download", rows)
}

func summaryRow(target, item string, size int64, set TrialSet) report.Row {
	avg, _ := set.Average()
	return report.Row{
		Target:    target,
		Item:      item,
		Trials:    len(set.Outcomes),
		Successes: set.Successes(),
		Average:   avg,
		Bytes:     size,
	}
}

func logTrialSet(log logrus.FieldLogger, set TrialSet) {
	fields := logrus.Fields{
		"trials":    len(set.Outcomes),
		"successes": set.Successes(),
	}
	if avg := set.AverageMillis(); avg != nil {
		fields["averageMs"] = *avg
	}
	log.WithFields(fields).Info("Trials finished")
}

type nopProgress struct{}

func (nopProgress) Step() {}
func (nopProgress) Done() {}

type failingFetcher struct {
	err error
}

func (f failingFetcher) Download(context.Context, config.DownloadTarget) Outcome {
	return failed(KindDownload, f.err)
}
