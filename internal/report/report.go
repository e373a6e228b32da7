package report

import (
	"time"

	"github.com/google/uuid"

	ioutils "github.com/handiism/geodata-downloader/internal/io"
	"github.com/handiism/geodata-downloader/internal/model"
)

// Report describes one finished fetch batch.
type Report struct {
	BatchID  uuid.UUID       `json:"batch_id"`
	Template *model.Template `json:"template,omitempty"`
	DestDir  string          `json:"dest_dir"`
	Started  time.Time       `json:"started"`
	Finished time.Time       `json:"finished"`
	Results  []model.Result  `json:"results"`
	Listing  []ioutils.Entry `json:"listing,omitempty"`
}

// Summary counts the results of a batch by outcome.
type Summary struct {
	Total   int   `json:"total"`
	Fetched int   `json:"fetched"`
	Skipped int   `json:"skipped"`
	Failed  int   `json:"failed"`
	Bytes   int64 `json:"bytes"`
}

// New starts a report with a fresh batch id.
func New(destDir string, started time.Time) *Report {
	return &Report{
		BatchID: uuid.New(),
		DestDir: destDir,
		Started: started,
	}
}

// Summary returns the outcome counts of r.Results.
func (r *Report) Summary() Summary {
	s := Summary{Total: len(r.Results)}
	for _, res := range r.Results {
		switch res.Status {
		case model.StatusFetched:
			s.Fetched++
		case model.StatusSkipped:
			s.Skipped++
		case model.StatusFailed:
			s.Failed++
		}
		s.Bytes += res.Bytes
	}
	return s
}

// Failed returns the failed results in batch order.
func (r *Report) Failed() []model.Result {
	var failed []model.Result
	for _, res := range r.Results {
		if res.Status == model.StatusFailed {
			failed = append(failed, res)
		}
	}
	return failed
}

// OK reports whether every item was fetched or skipped.
func (r *Report) OK() bool {
	return r.Summary().Failed == 0
}
