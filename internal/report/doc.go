// Package report renders the outcome of a fetch batch.
//
// A Report carries the per-item results, a batch id and the listing of the
// destination directory. Writers render it as text, JSON or CSV:
//
//	rep := report.New(mgr.DestDir(), started)
//	rep.Results = results
//	rep.Listing, _ = mgr.List()
//	rep.Finished = time.Now()
//	report.NewWriter(report.FormatText).Write(os.Stdout, rep)
package report
