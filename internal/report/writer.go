package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"
)

// Format represents supported report formats.
//
//   - text: aligned table for terminals, followed by the directory listing
//   - json: the whole Report as one indented document
//   - csv: one row per result, header first
type Format int

const (
	// FormatText renders a human readable table.
	FormatText Format = iota

	// FormatJSON renders the Report as JSON.
	FormatJSON

	// FormatCSV renders the results as CSV.
	FormatCSV
)

var formatNames = map[Format]string{
	FormatText: "text",
	FormatJSON: "json",
	FormatCSV:  "csv",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "unknown"
}

// ParseFormat returns the Format called name. The empty string is text.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	}
	return FormatText, fmt.Errorf("unknown report format %q", name)
}

// Writer renders reports in one format.
//
// Example:
//
//	w := report.NewWriter(report.FormatCSV)
//	err := w.Write(os.Stdout, rep)
type Writer struct {
	format Format
}

// NewWriter creates a Writer for format.
func NewWriter(format Format) *Writer {
	return &Writer{format: format}
}

// Write renders rep to out.
func (w *Writer) Write(out io.Writer, rep *Report) error {
	switch w.format {
	case FormatJSON:
		return w.writeJSON(out, rep)
	case FormatCSV:
		return w.writeCSV(out, rep)
	default:
		return w.writeText(out, rep)
	}
}

func (w *Writer) writeJSON(out io.Writer, rep *Report) error {
	doc := struct {
		*Report
		Summary Summary `json:"summary"`
	}{rep, rep.Summary()}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

var csvHeader = []string{"index", "url", "local_name", "status", "kind", "bytes", "attempts", "duration_ms", "error"}

func (w *Writer) writeCSV(out io.Writer, rep *Report) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for i, res := range rep.Results {
		kind := ""
		if res.Kind != 0 {
			kind = res.Kind.String()
		}
		row := []string{
			strconv.Itoa(i),
			res.URL,
			res.LocalName,
			res.Status.String(),
			kind,
			strconv.FormatInt(res.Bytes, 10),
			strconv.Itoa(res.Attempts),
			strconv.FormatInt(res.Duration.Milliseconds(), 10),
			res.Error,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// writeText renders:
//
//	Batch 9f1c... into /data/surface
//	STATUS   FILE                 BYTES  DETAIL
//	fetched  air.sig995.1965.nc   7.6M
//	failed   air.sig995.1800.nc   0      not_found: HTTP 404 ...
//
//	2 item(s): 1 fetched, 0 skipped, 1 failed, 7.6M in 3.1s
func (w *Writer) writeText(out io.Writer, rep *Report) error {
	fmt.Fprintf(out, "Batch %s into %s\n", rep.BatchID, rep.DestDir)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tFILE\tBYTES\tDETAIL")
	for _, res := range rep.Results {
		detail := ""
		if res.Error != "" {
			detail = res.Kind.String() + ": " + res.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", res.Status, res.LocalName, FormatBytes(res.Bytes), detail)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	s := rep.Summary()
	elapsed := rep.Finished.Sub(rep.Started).Round(100 * time.Millisecond)
	fmt.Fprintf(out, "\n%d item(s): %d fetched, %d skipped, %d failed, %s in %s\n",
		s.Total, s.Fetched, s.Skipped, s.Failed, FormatBytes(s.Bytes), elapsed)

	if len(rep.Listing) > 0 {
		fmt.Fprintf(out, "\nContents of %s:\n", rep.DestDir)
		tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, e := range rep.Listing {
			name := e.Name
			if e.IsDir {
				name += "/"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", name, FormatBytes(e.Size), e.ModTime.Format(time.DateTime))
		}
		return tw.Flush()
	}
	return nil
}

// FormatBytes returns n in binary units, e.g. 7.6M.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return strconv.FormatInt(n, 10)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%c", float64(n)/float64(div), "KMGTPE"[exp])
}
