// Package translate orchestrates bulk translation of spreadsheet grids:
// extract translatable cells, resolve what the session cache already knows,
// batch the remainder under the API size budgets, drive one network call per
// batch strictly sequentially, and reconcile outcomes back onto the grid
// without ever overwriting a cell whose translation failed.
package translate

import (
	"context"
	"fmt"
	"time"

	"github.com/gridlate/gridlate/batch"
	"github.com/gridlate/gridlate/cache"
	"github.com/gridlate/gridlate/extract"
	"github.com/gridlate/gridlate/gemini"
	"github.com/gridlate/gridlate/grid"
)

// ---------------------------------------------------------------------------
// Constants
// ---------------------------------------------------------------------------

const (
	// MaxBatchItems is the most texts one API request may carry.
	MaxBatchItems = 100
	// MaxBatchChars is the character budget of one API request.
	MaxBatchChars = 15000
	// MaxCellLength is the longest value the output medium accepts per cell.
	MaxCellLength = 32767
	// InterBatchDelay is the pause between batches on the free tier.
	InterBatchDelay = 1200 * time.Millisecond

	// countdownTick is the granularity of the visible inter-batch countdown.
	countdownTick = 100 * time.Millisecond

	// sheetDiffAttempts and sheetDiffInterval bound how long a host copy may
	// take to become visible in the sheet-name set.
	sheetDiffAttempts = 10
	sheetDiffInterval = 100 * time.Millisecond
)

// Tier selects the remote model's request-rate allowance.
type Tier string

const (
	// TierFree is the low-throughput tier; batches are spaced by
	// InterBatchDelay.
	TierFree Tier = "free"
	// TierPaid is the high-throughput tier; no inter-batch delay.
	TierPaid Tier = "paid"
)

// OutputMode selects where the reconciled grid is written.
type OutputMode string

const (
	// OutputReplace writes the translated grid back onto the same range.
	OutputReplace OutputMode = "replace"
	// OutputNewSheet copies the worksheet and writes the translated grid
	// onto the equivalent range of the copy.
	OutputNewSheet OutputMode = "newSheet"
)

// ---------------------------------------------------------------------------
// Collaborators and options
// ---------------------------------------------------------------------------

// Client translates one batch of texts. *gemini.Client implements it; tests
// inject fakes.
type Client interface {
	TranslateBatch(ctx context.Context, texts []string, targetLanguage string) gemini.BatchOutcome
}

// StatusFunc receives pipeline milestones, retry/countdown ticks, and the
// completion summary. percent is -1 when no meaningful progress number
// exists for the event.
type StatusFunc func(message, detail string, percent int, isError bool)

// Options controls one orchestrator.
type Options struct {
	// TargetLanguage is a free-form human language name ("French").
	TargetLanguage string
	// Tier selects the throughput tier (default TierFree).
	Tier Tier
	// Output selects the output mode (default OutputReplace).
	Output OutputMode
	// MaxBatchItems overrides the per-batch item budget (default 100).
	MaxBatchItems int
	// MaxBatchChars overrides the per-batch character budget (default 15000).
	MaxBatchChars int
	// MaxCellLength overrides the output cell length limit (default 32767).
	MaxCellLength int
	// InterBatchDelay overrides the free-tier pause between batches.
	InterBatchDelay time.Duration
	// OnStatus, when set, receives progress reporting.
	OnStatus StatusFunc
	// Sleep waits for countdowns and sheet-copy polling. Overridable in
	// tests; defaults to a context-aware timer sleep.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (o *Options) effectiveMaxBatchItems() int {
	if o.MaxBatchItems > 0 {
		return o.MaxBatchItems
	}
	return MaxBatchItems
}

func (o *Options) effectiveMaxBatchChars() int {
	if o.MaxBatchChars > 0 {
		return o.MaxBatchChars
	}
	return MaxBatchChars
}

func (o *Options) effectiveMaxCellLength() int {
	if o.MaxCellLength > 0 {
		return o.MaxCellLength
	}
	return MaxCellLength
}

func (o *Options) effectiveDelay() time.Duration {
	if o.InterBatchDelay > 0 {
		return o.InterBatchDelay
	}
	return InterBatchDelay
}

func (o *Options) effectiveOutput() OutputMode {
	if o.Output == "" {
		return OutputReplace
	}
	return o.Output
}

// Report aggregates one orchestrated run, for user-facing summary only.
type Report struct {
	// Cells is the number of translatable cells found.
	Cells int
	// UniqueTexts is the number of distinct source texts among them.
	UniqueTexts int
	// CacheHits is how many unique texts were resolved from the cache.
	CacheHits int
	// Batches is how many API requests the run issued.
	Batches int
	// FailedCells counts cells left untranslated.
	FailedCells int
	// FirstError is the first failure message encountered, in batch order
	// then in-batch order. Empty when everything succeeded.
	FirstError string
	// OutputSheet names the worksheet the translated grid was written to.
	OutputSheet string
}

// ---------------------------------------------------------------------------
// Orchestrator
// ---------------------------------------------------------------------------

// Orchestrator composes the translation pipeline. The cache it holds is the
// only state shared across runs within a session; it is appended to or fully
// cleared, never partially invalidated. Runs must not overlap — the caller
// serializes invocations.
type Orchestrator struct {
	client Client
	cache  *cache.Cache
	opts   Options
}

// New creates an orchestrator around a client and a session cache.
func New(client Client, c *cache.Cache, opts Options) *Orchestrator {
	if c == nil {
		c = cache.New()
	}
	return &Orchestrator{client: client, cache: c, opts: opts}
}

// Cache exposes the session cache, so the caller can Clear it when the
// target language selection changes.
func (o *Orchestrator) Cache() *cache.Cache { return o.cache }

func (o *Orchestrator) status(message, detail string, percent int, isError bool) {
	if o.opts.OnStatus != nil {
		o.opts.OnStatus(message, detail, percent, isError)
	}
}

func (o *Orchestrator) sleep(ctx context.Context, d time.Duration) error {
	if o.opts.Sleep != nil {
		return o.opts.Sleep(ctx, d)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// ---------------------------------------------------------------------------
// Range translation
// ---------------------------------------------------------------------------

// TranslateRange runs the full pipeline over one rectangular range of a
// worksheet. Per-item translation failures are folded into the report, not
// returned as errors; only structural impossibilities (unreadable range,
// host failing to produce a requested sheet copy) abort the run.
func (o *Orchestrator) TranslateRange(ctx context.Context, host grid.Host, sheet, ref string) (*Report, error) {
	o.status("Reading range", fmt.Sprintf("%s!%s", sheet, ref), -1, false)
	g, local, err := host.Read(sheet, ref)
	if err != nil {
		return nil, fmt.Errorf("reading %s!%s: %w", sheet, ref, err)
	}

	cells := extract.Cells(g)
	report := &Report{Cells: len(cells), OutputSheet: sheet}
	if len(cells) == 0 {
		o.status("Done", "no translatable cells in range", 100, false)
		return report, nil
	}

	texts := extract.UniqueTexts(cells)
	report.UniqueTexts = len(texts)

	resolved, uncached := o.lookupCache(texts)
	report.CacheHits = len(texts) - len(uncached)
	if report.CacheHits > 0 {
		o.status("Cache", fmt.Sprintf("%d of %d texts already translated", report.CacheHits, len(texts)), -1, false)
	}

	batches := batch.Split(uncached, o.opts.effectiveMaxBatchItems(), o.opts.effectiveMaxBatchChars())
	report.Batches = len(batches)

	failed := make(map[string]string)
	for i, b := range batches {
		o.status("Translating",
			fmt.Sprintf("batch %d of %d (%d texts)", i+1, len(batches), len(b)),
			i*100/len(batches), false)

		o.translateBatch(ctx, b, resolved, failed, report)

		if o.opts.Tier != TierPaid && i < len(batches)-1 {
			if err := o.waitBetweenBatches(ctx); err != nil {
				return nil, err
			}
		}
	}

	for _, c := range cells {
		if _, ok := failed[c.Text]; ok {
			report.FailedCells++
		}
	}

	o.status("Writing", "reconciling translations", -1, false)
	out := grid.Reconcile(g, cells, resolved, o.opts.effectiveMaxCellLength())

	switch o.opts.effectiveOutput() {
	case OutputNewSheet:
		name, err := o.writeToNewSheet(ctx, host, sheet, local, out)
		if err != nil {
			return nil, err
		}
		report.OutputSheet = name
	default:
		if err := host.Write(sheet, local, out); err != nil {
			return nil, fmt.Errorf("writing %s!%s: %w", sheet, local, err)
		}
	}

	o.finish(report)
	return report, nil
}

// lookupCache partitions unique texts into already-resolved and uncached.
func (o *Orchestrator) lookupCache(texts []string) (resolved map[string]string, uncached []string) {
	resolved = make(map[string]string, len(texts))
	for _, t := range texts {
		if v, ok := o.cache.Get(t); ok {
			resolved[t] = v
		} else {
			uncached = append(uncached, t)
		}
	}
	return resolved, uncached
}

// translateBatch issues one batch call and folds its outcome into the run
// state. Successes are written to the session cache; failures are captured
// as data and never propagate as errors.
func (o *Orchestrator) translateBatch(ctx context.Context, texts []string, resolved, failed map[string]string, report *Report) {
	outcome := o.client.TranslateBatch(ctx, texts, o.opts.TargetLanguage)
	for j, t := range texts {
		if j < len(outcome) && outcome[j].OK() {
			resolved[t] = outcome[j].Text
			o.cache.Set(t, outcome[j].Text)
			continue
		}
		msg := "invalid format"
		if j < len(outcome) && outcome[j].Failure != nil {
			msg = outcome[j].Failure.Message
		}
		failed[t] = msg
		if report.FirstError == "" {
			report.FirstError = msg
		}
	}
}

// waitBetweenBatches pauses for the free-tier inter-batch delay, counting
// down visibly through the status callback.
func (o *Orchestrator) waitBetweenBatches(ctx context.Context) error {
	remaining := o.opts.effectiveDelay()
	for remaining > 0 {
		o.status("Waiting", fmt.Sprintf("next batch in %.1fs", remaining.Seconds()), -1, false)
		step := countdownTick
		if remaining < step {
			step = remaining
		}
		if err := o.sleep(ctx, step); err != nil {
			return err
		}
		remaining -= step
	}
	return nil
}

// writeToNewSheet copies the source worksheet and writes the translated grid
// onto the equivalent range of the copy. The copy may complete
// asynchronously, so the new sheet is identified by diffing the sheet-name
// sets captured before and after the copy — never by assuming an index or a
// name pattern.
func (o *Orchestrator) writeToNewSheet(ctx context.Context, host grid.Host, src, local string, out grid.Grid) (string, error) {
	before, err := host.SheetNames()
	if err != nil {
		return "", fmt.Errorf("listing sheets: %w", err)
	}
	known := make(map[string]bool, len(before))
	for _, n := range before {
		known[n] = true
	}

	if err := host.CopySheet(src); err != nil {
		return "", fmt.Errorf("copying sheet %q: %w", src, err)
	}

	name := ""
	for attempt := 0; attempt < sheetDiffAttempts && name == ""; attempt++ {
		after, err := host.SheetNames()
		if err != nil {
			return "", fmt.Errorf("listing sheets: %w", err)
		}
		for _, n := range after {
			if !known[n] {
				name = n
				break
			}
		}
		if name == "" {
			if err := o.sleep(ctx, sheetDiffInterval); err != nil {
				return "", err
			}
		}
	}
	if name == "" {
		return "", fmt.Errorf("host did not produce a copy of sheet %q", src)
	}

	if err := host.Write(name, local, out); err != nil {
		return "", fmt.Errorf("writing %s!%s: %w", name, local, err)
	}
	return name, nil
}

func (o *Orchestrator) finish(report *Report) {
	if report.FailedCells > 0 {
		o.status("Done with errors",
			fmt.Sprintf("%d cells untranslated; first error: %s", report.FailedCells, report.FirstError),
			100, true)
		return
	}
	o.status("Done", fmt.Sprintf("%d cells translated", report.Cells), 100, false)
}

// ---------------------------------------------------------------------------
// Sheet-name translation
// ---------------------------------------------------------------------------

// TranslateSheetName translates a worksheet's name through the same
// cache-then-client pipeline, strips characters illegal in sheet names,
// truncates to the host's limit, resolves case-insensitive collisions with a
// numeric suffix, and renames the sheet. Returns the final name. A failed
// translation leaves the sheet untouched and is reported as an error.
func (o *Orchestrator) TranslateSheetName(ctx context.Context, host grid.Host, sheet string) (string, error) {
	translated, ok := o.cache.Get(sheet)
	if !ok {
		outcome := o.client.TranslateBatch(ctx, []string{sheet}, o.opts.TargetLanguage)
		if len(outcome) == 0 || !outcome[0].OK() {
			msg := "invalid format"
			if len(outcome) > 0 && outcome[0].Failure != nil {
				msg = outcome[0].Failure.Message
			}
			return "", fmt.Errorf("translating sheet name %q: %s", sheet, msg)
		}
		translated = outcome[0].Text
		o.cache.Set(sheet, translated)
	}

	names, err := host.SheetNames()
	if err != nil {
		return "", fmt.Errorf("listing sheets: %w", err)
	}
	var others []string
	for _, n := range names {
		if n != sheet {
			others = append(others, n)
		}
	}

	name := grid.UniqueSheetName(translated, others)
	if name == sheet {
		return name, nil
	}
	if err := host.RenameSheet(sheet, name); err != nil {
		return "", fmt.Errorf("renaming sheet %q: %w", sheet, err)
	}
	o.status("Renamed sheet", fmt.Sprintf("%s -> %s", sheet, name), -1, false)
	return name, nil
}

// ---------------------------------------------------------------------------
// Dry run
// ---------------------------------------------------------------------------

// Plan reports what a run over the range would do — cells, unique texts,
// cache hits, and batch count — without issuing any API request.
func (o *Orchestrator) Plan(host grid.Host, sheet, ref string) (*Report, error) {
	g, _, err := host.Read(sheet, ref)
	if err != nil {
		return nil, fmt.Errorf("reading %s!%s: %w", sheet, ref, err)
	}
	cells := extract.Cells(g)
	texts := extract.UniqueTexts(cells)
	_, uncached := o.lookupCache(texts)
	batches := batch.Split(uncached, o.opts.effectiveMaxBatchItems(), o.opts.effectiveMaxBatchChars())
	return &Report{
		Cells:       len(cells),
		UniqueTexts: len(texts),
		CacheHits:   len(texts) - len(uncached),
		Batches:     len(batches),
		OutputSheet: sheet,
	}, nil
}
