// Package engine orchestrates the full extraction pipeline: scan,
// field extraction, per-source reconciliation, cross-source merging and
// final assembly.
package engine

import (
	"log"
	"sort"
	"sync"

	"secrecon/pkg/core/assemble"
	"secrecon/pkg/core/document"
	"secrecon/pkg/core/fields"
	"secrecon/pkg/core/merge"
	"secrecon/pkg/core/reconcile"
	"secrecon/pkg/core/scan"
	"secrecon/pkg/core/security"
)

// Engine is a reusable extraction pipeline. Safe for concurrent use;
// all run state lives on the stack of Extract.
type Engine struct {
	cfg       Config
	scanner   *scan.Scanner
	extractor *fields.Extractor
}

// New builds an engine from a config, using the default rule set.
func New(cfg Config) *Engine {
	return &Engine{
		cfg:       cfg,
		scanner:   scan.NewScanner(cfg.WindowRadius),
		extractor: fields.NewExtractor(fields.DefaultRuleSet()),
	}
}

// task is one unit of draft-building work: all contexts of one
// identifier from one source.
type task struct {
	isin     string
	source   security.Provenance
	contexts []scan.RawContext
}

// Extract runs the pipeline over a document and returns the final
// records with the run report. Output order is first-seen order of each
// identifier, text sightings before table sightings, so the same
// document always yields byte-identical output.
func (e *Engine) Extract(doc document.Document) ([]security.Record, security.Report) {
	// Text and table scanning are independent; run them side by side.
	var wg sync.WaitGroup
	var textCtxs, tableCtxs []scan.RawContext
	wg.Add(2)
	go func() {
		defer wg.Done()
		textCtxs = e.scanner.ScanText(doc.Text)
	}()
	go func() {
		defer wg.Done()
		tableCtxs = e.scanner.ScanTables(doc.Tables)
	}()
	wg.Wait()

	textTasks := groupByISIN(textCtxs, security.SourceText)
	tableTasks := groupByISIN(tableCtxs, security.SourceTable)

	textDrafts := e.buildDrafts(textTasks)
	tableDrafts := e.buildDrafts(tableTasks)

	merged := merge.Merge(textDrafts, tableDrafts)
	e.revalidate(merged)

	// Records whose own context carried no currency inherit the
	// document's dominant one.
	if def := security.InferCurrency(doc.Text); def != "" {
		for i := range merged {
			if merged[i].Currency == "" {
				merged[i].Currency = def
			}
		}
	}

	records, report := assemble.Assemble(merged, e.cfg.Tolerance)
	log.Printf("[Engine] extracted %d records (%d complete, %d partial, %d minimal)",
		report.TotalRecords, report.Complete, report.Partial, report.Minimal)
	return records, report
}

// revalidate re-settles merged drafts whose numeric triple no longer
// satisfies quantity×price=value. Field-wise merging can pair a
// quantity from one source with price and value from the other;
// per-source reconciliation never saw that combination, so it gets the
// same agreement, lot-size, derived ladder here. Triples already
// consistent keep their original reconciliation trace.
func (e *Engine) revalidate(drafts []security.Draft) {
	for i := range drafts {
		d := &drafts[i]
		if d.Provenance != security.SourceMerged {
			continue
		}
		if d.Quantity == nil || d.Price == nil || d.Value == nil {
			continue
		}
		if reconcile.Consistent(d.Quantity.Value, d.Price.Value, d.Value.Value, e.cfg.Tolerance) {
			continue
		}
		res := reconcile.SettleTriple(d.Quantity, d.Price, d.Value, e.cfg.Tolerance, e.cfg.LotSizes)
		d.Quantity, d.Price, d.Value = res.Quantity, res.Price, res.Value
		d.LotSize, d.Method = res.LotSize, res.Method
	}
}

// buildDrafts reconciles every task on a bounded worker pool. Results
// land in a pre-sized slice indexed by task position, so pool scheduling
// never changes output order.
func (e *Engine) buildDrafts(tasks []task) []security.Draft {
	if len(tasks) == 0 {
		return nil
	}

	workers := e.cfg.Workers
	if workers <= 0 || workers > len(tasks) {
		workers = len(tasks)
	}

	drafts := make([]security.Draft, len(tasks))
	jobs := make(chan int)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				drafts[i] = e.buildDraft(tasks[i])
			}
		}()
	}
	for i := range tasks {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return drafts
}

// buildDraft extracts and reconciles one identifier within one source.
// Candidates from every sighting are pooled before reconciliation, so a
// duplicate mention contributes signal instead of producing a duplicate
// record.
func (e *Engine) buildDraft(t task) security.Draft {
	var qc, pc, vc []fields.Candidate
	for _, ctx := range t.contexts {
		qc = append(qc, e.extractor.Extract(ctx, fields.KindQuantity)...)
		pc = append(pc, e.extractor.Extract(ctx, fields.KindPrice)...)
		vc = append(vc, e.extractor.Extract(ctx, fields.KindValue)...)
	}
	for _, cands := range [][]fields.Candidate{qc, pc, vc} {
		sort.SliceStable(cands, func(i, j int) bool { return cands[i].Confidence > cands[j].Confidence })
	}

	res := reconcile.Reconcile(qc, pc, vc, e.cfg.Tolerance, e.cfg.LotSizes)

	draft := security.Draft{
		ISIN:       t.isin,
		Quantity:   res.Quantity,
		Price:      res.Price,
		Value:      res.Value,
		Provenance: t.source,
		LotSize:    res.LotSize,
		Method:     res.Method,
	}

	for _, ctx := range t.contexts {
		if n := fields.ExtractName(ctx); n != nil && (draft.Name == nil || n.Confidence > draft.Name.Confidence) {
			draft.Name = n
		}
		if tk := fields.ExtractTicker(ctx); tk != nil && (draft.Ticker == nil || tk.Confidence > draft.Ticker.Confidence) {
			draft.Ticker = tk
		}
		if draft.AssetClass == "" {
			draft.AssetClass = fields.ClassifyAssetClass(ctx)
		}
		if draft.Currency == "" {
			draft.Currency = fields.ContextCurrency(ctx)
		}
	}
	return draft
}

// groupByISIN buckets contexts by identifier, preserving first-seen
// order.
func groupByISIN(ctxs []scan.RawContext, source security.Provenance) []task {
	index := make(map[string]int)
	var tasks []task
	for _, ctx := range ctxs {
		i, ok := index[ctx.ISIN]
		if !ok {
			i = len(tasks)
			index[ctx.ISIN] = i
			tasks = append(tasks, task{isin: ctx.ISIN, source: source})
		}
		tasks[i].contexts = append(tasks[i].contexts, ctx)
	}
	return tasks
}
