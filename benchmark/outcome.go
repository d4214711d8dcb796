package benchmark

import (
	"encoding/json"
	"errors"
	"time"
)

// TransferKind tells uploads and downloads apart when an outcome is serialized.
type TransferKind int

const (
	KindUpload TransferKind = iota
	KindDownload
)

// Outcome is the result of one trial. A nil Err means the transfer succeeded.
type Outcome struct {
	Kind       TransferKind
	StartedOn  time.Time
	FinishedOn time.Time
	Duration   time.Duration

	// Source is the local file for uploads and the requested URL for downloads.
	Source string
	// Result is the object URL for uploads and the written file for downloads.
	Result string
	// RedirectedTo is the URL a download finally read its body from, when a
	// redirect was followed.
	RedirectedTo string

	Err error
}

func succeeded(kind TransferKind, started, finished time.Time, source, result string) Outcome {
	d := finished.Sub(started)
	if d < 0 {
		d = 0
	}
	return Outcome{
		Kind:       kind,
		StartedOn:  started,
		FinishedOn: finished,
		Duration:   d,
		Source:     source,
		Result:     result,
	}
}

func failed(kind TransferKind, err error) Outcome {
	if err == nil {
		err = errors.New("transfer failed")
	}
	return Outcome{Kind: kind, Err: err}
}

// Succeeded reports whether the trial completed.
func (o Outcome) Succeeded() bool { return o.Err == nil }

type uploadJSON struct {
	StartedOn  int64  `json:"startedOn"`
	FinishedOn int64  `json:"finishedOn"`
	Duration   int64  `json:"duration"`
	FileSource string `json:"fileSource"`
	FileURL    string `json:"fileUrl"`
}

type downloadJSON struct {
	StartedOn    int64  `json:"startedOn"`
	FinishedOn   int64  `json:"finishedOn"`
	Duration     int64  `json:"duration"`
	FileURL      string `json:"fileUrl"`
	FileOutput   string `json:"fileOutput"`
	RedirectedTo string `json:"redirectedTo,omitempty"`
}

// MarshalJSON writes failures as a literal false. Times are epoch
// milliseconds and durations milliseconds.
func (o Outcome) MarshalJSON() ([]byte, error) {
	if !o.Succeeded() {
		return []byte("false"), nil
	}
	if o.Kind == KindDownload {
		return json.Marshal(downloadJSON{
			StartedOn:    o.StartedOn.UnixMilli(),
			FinishedOn:   o.FinishedOn.UnixMilli(),
			Duration:     o.Duration.Milliseconds(),
			FileURL:      o.Source,
			FileOutput:   o.Result,
			RedirectedTo: o.RedirectedTo,
		})
	}
	return json.Marshal(uploadJSON{
		StartedOn:  o.StartedOn.UnixMilli(),
		FinishedOn: o.FinishedOn.UnixMilli(),
		Duration:   o.Duration.Milliseconds(),
		FileSource: o.Source,
		FileURL:    o.Result,
	})
}

// TrialSet is the ordered list of outcomes for one target.
type TrialSet struct {
	Outcomes []Outcome
}

// Successes counts the trials that completed.
func (s TrialSet) Successes() int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Succeeded() {
			n++
		}
	}
	return n
}

// Average is the mean duration over successful trials. ok is false when no
// trial succeeded.
func (s TrialSet) Average() (avg time.Duration, ok bool) {
	var sum time.Duration
	n := 0
	for _, o := range s.Outcomes {
		if !o.Succeeded() {
			continue
		}
		sum += o.Duration
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / time.Duration(n), true
}

// AverageMillis is the mean of the reported millisecond durations of the
// successful trials, rounded up. It is nil when no trial succeeded.
func (s TrialSet) AverageMillis() *int64 {
	var sum, n int64
	for _, o := range s.Outcomes {
		if !o.Succeeded() {
			continue
		}
		sum += o.Duration.Milliseconds()
		n++
	}
	if n == 0 {
		return nil
	}
	avg := sum / n
	if sum%n != 0 {
		avg++
	}
	return &avg
}
