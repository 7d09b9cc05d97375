package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/factcompanion/internal/model"
)

// Researcher runs the research pipeline for one link
type Researcher interface {
	Research(ctx context.Context, url string) (*model.ResearchResult, error)
}

// ResearchJob researches a single link
type ResearchJob struct {
	URL        string
	Researcher Researcher
}

// Execute executes the research job
func (j *ResearchJob) Execute(ctx context.Context) Result {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return &JobResult{URL: j.URL, Error: err}
	}
	result, err := j.Researcher.Research(ctx, j.URL)
	return &JobResult{
		URL:      j.URL,
		Result:   result,
		Error:    err,
		Duration: time.Since(start),
	}
}

// JobResult is the outcome for one link
type JobResult struct {
	URL      string
	Result   *model.ResearchResult
	Error    error
	Duration time.Duration
}

// GetError returns the error from the job
func (r *JobResult) GetError() error {
	return r.Error
}

// BatchProcessor researches many links concurrently
type BatchProcessor struct {
	researcher  Researcher
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(researcher Researcher, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		researcher:  researcher,
		concurrency: concurrency,
	}
}

// ProcessURLs researches urls and returns one result per url, in input order
func (b *BatchProcessor) ProcessURLs(ctx context.Context, urls []string) []*JobResult {
	if len(urls) == 0 {
		return []*JobResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, url := range urls {
		pool.Submit(&ResearchJob{
			URL:        url,
			Researcher: b.researcher,
		})
	}

	results := pool.Wait()

	jobResults := make([]*JobResult, len(results))
	for i, result := range results {
		jobResults[i] = result.(*JobResult)
	}

	return jobResults
}

// ProcessFile reads links from a file and researches them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*JobResult, error) {
	urls, err := ReadURLsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read URLs: %w", err)
	}

	return b.ProcessURLs(ctx, urls), nil
}

// ReadURLsFromFile reads links from a file, one per line. Blank lines and
// '#' comments are skipped and duplicates are dropped.
func ReadURLsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var urls []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			urls = append(urls, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return urls, nil
}
