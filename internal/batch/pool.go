// Package batch processes a directory of documents concurrently, writing one
// report per document.
package batch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"yashubustudio/hccmapper/hcc"
)

// Processor runs the pipeline on one document.
type Processor interface {
	Process(ctx context.Context, documentName, text string) (*hcc.Report, error)
}

// Result is the outcome for one input document.
type Result struct {
	Path       string
	Name       string
	OutputPath string
	Report     *hcc.Report
	Err        error
}

// Pool manages concurrent processing of documents.
type Pool struct {
	Workers   int
	Processor Processor
	OutputDir string
	Progress  Manager
	Logger    zerolog.Logger
}

// Run processes all paths and returns results in input order. A failed
// document never affects the others.
func (p *Pool) Run(ctx context.Context, paths []string) []Result {
	workers := p.Workers
	if workers <= 0 {
		workers = 1
	}
	progress := p.Progress
	if progress == nil {
		progress = &NoopManager{}
	}

	results := make([]Result, len(paths))
	outNames := reportNames(paths)
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, path := range paths {
		wg.Add(1)
		go func(idx int, path string) {
			defer wg.Done()
			name := hcc.DocumentName(path)

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results[idx] = Result{Path: path, Name: name, Err: ctx.Err()}
				return
			}
			defer func() { <-sem }()

			tracker := progress.NewTracker(idx, len(paths), name)
			res := p.processOne(ctx, path, name, outNames[idx], tracker)
			tracker.Done(res.Err)
			if res.Err != nil {
				p.Logger.Error().Err(res.Err).Str("document", name).Msg("document failed")
			} else {
				p.Logger.Info().Str("document", name).Int("codes", len(res.Report.HCCCodes)).Str("output", res.OutputPath).Msg("document processed")
			}
			results[idx] = res
		}(i, path)
	}

	wg.Wait()
	progress.Wait()
	return results
}

func (p *Pool) processOne(ctx context.Context, path, name, outName string, tracker Tracker) Result {
	res := Result{Path: path, Name: name}

	tracker.SetStage(StageRead)
	text, err := hcc.ReadDocument(path)
	if err != nil {
		res.Err = err
		return res
	}

	tracker.SetStage(StageProcess)
	report, err := p.Processor.Process(ctx, name, text)
	if err != nil {
		res.Err = fmt.Errorf("process %s: %w", name, err)
		return res
	}
	res.Report = report

	if p.OutputDir != "" {
		tracker.SetStage(StageWrite)
		res.OutputPath = filepath.Join(p.OutputDir, outName+".json")
		if err := hcc.WriteReport(res.OutputPath, report); err != nil {
			res.Err = fmt.Errorf("write report %s: %w", name, err)
		}
	}
	return res
}

// reportNames assigns each path a distinct report file stem. Documents that
// share a name (a.txt, a.gz) keep it for the first path and get a numbered
// suffix (a-2) after that.
func reportNames(paths []string) []string {
	taken := make(map[string]bool, len(paths))
	for _, path := range paths {
		taken[hcc.DocumentName(path)] = false
	}
	out := make([]string, len(paths))
	for i, path := range paths {
		name := hcc.DocumentName(path)
		if used := taken[name]; !used {
			taken[name] = true
			out[i] = name
			continue
		}
		for n := 2; ; n++ {
			candidate := fmt.Sprintf("%s-%d", name, n)
			if _, exists := taken[candidate]; !exists {
				taken[candidate] = true
				out[i] = candidate
				break
			}
		}
	}
	return out
}

// Failed counts results with an error.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
