package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"niviskar/internal/export"
	"niviskar/internal/extractor"
	"niviskar/internal/fileops"
	"niviskar/internal/metrics"
	"niviskar/internal/summarizer"
	"niviskar/internal/tokens"
)

type Pipeline struct {
	SourceDir string
	DestDir   string
	Level     summarizer.Level
	Format    export.Format
	Workers   int
	Extract   extractor.Options
	Timeout   time.Duration

	Tokens   *tokens.Counter
	Metrics  *metrics.Metrics
	Log      *logrus.Logger
	Progress io.Writer

	// Progress counters
	TotalFiles     int32
	ProcessedFiles int32
	FailedFiles    int32
	FallbackFiles  int32

	progressMu sync.Mutex
	now        func() time.Time
}

type FileJob struct {
	Path string
	// Out is the file name the summary is written under in DestDir.
	Out string
}

func NewPipeline(src, dst string, level summarizer.Level, format export.Format, workers int, log *logrus.Logger) *Pipeline {
	if workers <= 0 {
		workers = 5
	}
	if format == "" {
		format = export.FormatText
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Pipeline{
		SourceDir: src,
		DestDir:   dst,
		Level:     level,
		Format:    format,
		Workers:   workers,
		Extract:   extractor.DefaultOptions(),
		Timeout:   2 * time.Minute,
		Log:       log,
		Progress:  os.Stdout,
		now:       time.Now,
	}
}

// Run summarizes every supported file under SourceDir. It returns when all
// files are done, the walk fails or ctx is canceled.
func (p *Pipeline) Run(ctx context.Context) error {
	jobs := make(chan FileJob, p.Workers*2)
	g, gctx := errgroup.WithContext(ctx)

	// Step 1: Start workers
	for i := 0; i < p.Workers; i++ {
		g.Go(func() error {
			p.work(gctx, jobs)
			return nil
		})
	}

	// Step 2: Scan and feed jobs in a stream. Output names are claimed here,
	// in walk order, so reruns and name clashes resolve the same way each time.
	names := fileops.NewNames()
	g.Go(func() error {
		defer close(jobs)
		p.Log.WithField("src", p.SourceDir).Info("scanning source directory")
		return filepath.WalkDir(p.SourceDir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !extractor.Supported(path) {
				return nil
			}
			owner, err := filepath.Rel(p.SourceDir, path)
			if err != nil {
				owner = path
			}
			job := FileJob{
				Path: path,
				Out:  names.Claim(export.FileNameFor(path, p.Level, p.Format), filepath.ToSlash(owner)),
			}
			atomic.AddInt32(&p.TotalFiles, 1)
			select {
			case <-gctx.Done():
				return gctx.Err()
			case jobs <- job:
			}
			return nil
		})
	})

	// Step 3: Wait for workers to finish
	err := g.Wait()
	fmt.Fprintln(p.Progress) // New line after final progress

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return ctx.Err()
}

func (p *Pipeline) work(ctx context.Context, jobs <-chan FileJob) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			p.Log.WithField("file", filepath.Base(job.Path)).Debug("processing")

			// Use a per-file timeout to prevent hanging workers
			fileCtx, cancel := context.WithTimeout(ctx, p.Timeout)
			p.safeProcess(fileCtx, job)
			cancel()

			p.updateProgressDisplay()

			// Periodically suggest memory release to the OS
			if atomic.LoadInt32(&p.ProcessedFiles)%10 == 0 {
				debug.FreeOSMemory()
			}
		}
	}
}

func (p *Pipeline) safeProcess(ctx context.Context, job FileJob) {
	path := job.Path
	defer func() {
		if r := recover(); r != nil {
			p.Log.WithField("file", filepath.Base(path)).Errorf("worker panicked: %v", r)
			atomic.AddInt32(&p.FailedFiles, 1)
		}
	}()

	if err := p.processFile(ctx, job); err != nil {
		p.Log.WithField("file", filepath.Base(path)).Errorf("failed: %v", err)
		atomic.AddInt32(&p.FailedFiles, 1)
		return
	}
	atomic.AddInt32(&p.ProcessedFiles, 1)
}

func (p *Pipeline) processFile(ctx context.Context, job FileJob) error {
	path := job.Path
	log := p.Log.WithField("file", filepath.Base(path))

	doc, err := extractor.Extract(ctx, path, p.Extract)
	if err != nil {
		p.Metrics.ObserveExtractionFailure()
		return fmt.Errorf("failed to extract text: %w", err)
	}
	p.Metrics.ObserveExtraction(string(doc.Strategy))
	if doc.Strategy == extractor.StrategyFallback {
		log.Warn("structured extraction failed, used byte scan")
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	result := summarizer.Summarize(doc.Text, p.Level)
	p.Metrics.ObserveSummary(p.Level.String(), result.Fallback.String(), result.Sentences, time.Since(start))
	if result.Fallback != summarizer.NoFallback {
		atomic.AddInt32(&p.FallbackFiles, 1)
		log.WithField("reason", result.Fallback).Warn("no summary could be generated")
	}

	report := export.Report{
		Source:      path,
		Result:      result,
		Stats:       p.Tokens.Compare(doc.Text, result.SummaryText),
		GeneratedAt: p.now(),
	}
	data, err := export.Render(report, p.Format)
	if err != nil {
		return err
	}

	written, err := fileops.WriteFile(p.DestDir, job.Out, data)
	if err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	log.WithFields(logrus.Fields{
		"out":       filepath.Base(written),
		"sentences": result.Sentences,
		"keywords":  len(result.KeyPhrases),
	}).Info("summarized")
	return nil
}

func (p *Pipeline) updateProgressDisplay() {
	processed := atomic.LoadInt32(&p.ProcessedFiles)
	failed := atomic.LoadInt32(&p.FailedFiles)
	total := atomic.LoadInt32(&p.TotalFiles)
	completed := processed + failed

	percentage := 0.0
	if total > 0 {
		percentage = float64(completed) / float64(total) * 100
	}
	p.progressMu.Lock()
	defer p.progressMu.Unlock()
	// Using \r to refresh the same line for a clean terminal experience
	fmt.Fprintf(p.Progress, "\r[Progress] %d/%d files (%.1f%%) | Success: %d | Failed: %d   ",
		completed, total, percentage, processed, failed)
}

func (p *Pipeline) GetSummary() string {
	return fmt.Sprintf("\nSummary:\n- Total Files:        %d\n- Summarized:         %d\n- Failed/Skipped:     %d\n- Without a summary:  %d\n",
		atomic.LoadInt32(&p.TotalFiles), atomic.LoadInt32(&p.ProcessedFiles),
		atomic.LoadInt32(&p.FailedFiles), atomic.LoadInt32(&p.FallbackFiles))
}
