// Package pipeline orchestrates a cleaning run end to end: load the
// workbook, find the email columns, evaluate every record, escalate
// review records, deduplicate, write the cleaned workbook and reports,
// and persist the audit trail.
package pipeline

import (
	"context"
	"encoding/json"
	"runtime"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/mailclean/internal/config"
	"github.com/sells-group/mailclean/internal/dedupe"
	"github.com/sells-group/mailclean/internal/detect"
	"github.com/sells-group/mailclean/internal/engine"
	"github.com/sells-group/mailclean/internal/fetcher"
	"github.com/sells-group/mailclean/internal/model"
	"github.com/sells-group/mailclean/internal/report"
	"github.com/sells-group/mailclean/internal/reviewer"
	"github.com/sells-group/mailclean/internal/store"
	"github.com/sells-group/mailclean/internal/table"
)

// Pipeline wires the cleaning stages together. Store and reviewer are
// optional; a nil store skips the audit trail and a nil reviewer
// leaves review records untouched.
type Pipeline struct {
	cfg      *config.Config
	engine   *engine.Engine
	store    store.Store
	reviewer reviewer.Reviewer
}

// New assembles a pipeline.
func New(cfg *config.Config, eng *engine.Engine, st store.Store, rev reviewer.Reviewer) *Pipeline {
	return &Pipeline{cfg: cfg, engine: eng, store: st, reviewer: rev}
}

// Result is everything a run produced, for reporting and the CLI.
type Result struct {
	RunID      string
	Records    []*model.EmailRecord
	Groups     []model.DuplicateGroup
	Near       []model.NearDuplicate
	Summary    report.Summary
	ReportPath string
}

// Run cleans the workbook at inputPath and writes the result to
// outputPath. The report workbook lands next to the output with a
// "-report.xlsx" suffix.
func (p *Pipeline) Run(ctx context.Context, inputPath, outputPath string) (*Result, error) {
	runID := ""
	if p.store != nil {
		run, err := p.store.CreateRun(ctx, inputPath, outputPath, optionsSnapshot(p.cfg))
		if err != nil {
			return nil, err
		}
		runID = run.ID
	}

	res, err := p.run(ctx, inputPath, outputPath)
	if p.store != nil && runID != "" {
		if err != nil {
			if ferr := p.store.FailRun(ctx, runID, err.Error()); ferr != nil {
				zap.L().Error("pipeline: record run failure", zap.Error(ferr))
			}
		} else {
			if serr := p.store.SaveChanges(ctx, runID, res.Records); serr != nil {
				zap.L().Error("pipeline: save audit changes", zap.Error(serr))
			}
			if cerr := p.store.CompleteRun(ctx, runID, res.Summary); cerr != nil {
				zap.L().Error("pipeline: complete run", zap.Error(cerr))
			}
		}
	}
	if err != nil {
		return nil, err
	}
	res.RunID = runID
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, inputPath, outputPath string) (*Result, error) {
	wb, err := fetcher.Load(inputPath)
	if err != nil {
		return nil, err
	}

	records, _ := Extract(wb)
	if len(records) == 0 {
		return nil, eris.Errorf("pipeline: no email columns found in %s", inputPath)
	}
	zap.L().Info("pipeline: extracted records",
		zap.Int("records", len(records)),
		zap.Int("sheets", len(wb.Sheets)))

	if err := p.Evaluate(ctx, records); err != nil {
		return nil, err
	}

	if p.reviewer != nil {
		reviewer.Apply(ctx, p.reviewer, p.engine, records, p.cfg.Engine.ConfidenceThreshold)
	}

	groups := dedupe.Exact(records)
	near := dedupe.Near(records, p.cfg.Engine.NearDupeCeiling)

	blanked := writeBack(wb, records)
	sum := report.Summarize(records, near, blanked)

	if err := fetcher.Save(wb, outputPath); err != nil {
		return nil, err
	}
	reportPath := reportPathFor(outputPath)
	if err := fetcher.Save(report.Build(records, groups, near, sum), reportPath); err != nil {
		return nil, err
	}

	zap.L().Info("pipeline: run complete",
		zap.Int("accepted", sum.Accepted),
		zap.Int("fixed", sum.Fixed),
		zap.Int("review", sum.Review),
		zap.Int("suppressed", sum.Suppressed),
		zap.Int("duplicates", sum.Duplicates))

	return &Result{
		Records:    records,
		Groups:     groups,
		Near:       near,
		Summary:    sum,
		ReportPath: reportPath,
	}, nil
}

// Extract pulls one record per non-blank cell in every detected email
// column. It also returns the detected columns per sheet.
func Extract(wb *table.Workbook) ([]*model.EmailRecord, map[string][]int) {
	var records []*model.EmailRecord
	emailCols := make(map[string][]int)

	for _, sheet := range wb.Sheets {
		cols := detect.EmailColumns(sheet)
		if len(cols) == 0 {
			continue
		}
		emailCols[sheet.Name] = cols

		for row := 1; row <= sheet.NumRows(); row++ {
			for _, col := range cols {
				raw, err := sheet.Cell(row, col)
				if err != nil || strings.TrimSpace(raw) == "" {
					continue
				}
				records = append(records, &model.EmailRecord{
					Pos: model.Position{
						Sheet:  sheet.Name,
						Row:    row,
						Col:    col,
						Column: sheet.Header[col-1],
					},
					Raw: raw,
				})
			}
		}
	}
	return records, emailCols
}

// Evaluate runs the decision engine over every record in parallel. The
// engine is stateless and each worker owns its record, so no locking
// is needed.
func (p *Pipeline) Evaluate(ctx context.Context, records []*model.EmailRecord) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for _, rec := range records {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return eris.Wrap(err, "pipeline: evaluate cancelled")
			}
			p.engine.Evaluate(rec.Raw).Apply(rec)
			return nil
		})
	}
	return g.Wait()
}

// writeBack applies the decisions to the workbook: cleaned values
// overwrite changed cells, suppressed and duplicate cells are cleared,
// and a row whose extracted email records were all removed is blanked
// entirely. Rows that never held an email are left alone. Returns the
// number of blanked rows.
func writeBack(wb *table.Workbook, records []*model.EmailRecord) int {
	type rowKey struct {
		sheet string
		row   int
	}
	survived := make(map[rowKey]bool)

	for _, rec := range records {
		sheet := wb.Sheet(rec.Pos.Sheet)
		if sheet == nil {
			continue
		}
		key := rowKey{rec.Pos.Sheet, rec.Pos.Row}
		value := rec.Cleaned
		if rec.Action == model.ActionSuppress || rec.Action == model.ActionDuplicate {
			value = ""
			if _, seen := survived[key]; !seen {
				survived[key] = false
			}
		} else {
			survived[key] = true
		}
		if err := sheet.SetCell(rec.Pos.Row, rec.Pos.Col, value); err != nil {
			zap.L().Warn("pipeline: write back cell", zap.Error(err))
		}
	}

	blanked := 0
	for key, ok := range survived {
		if ok {
			continue
		}
		sheet := wb.Sheet(key.sheet)
		if sheet == nil {
			continue
		}
		if err := sheet.BlankRow(key.row); err == nil {
			blanked++
		}
	}
	return blanked
}

// optionsSnapshot serializes the engine settings the run was evaluated
// under so the audit record stays explainable after config changes.
func optionsSnapshot(cfg *config.Config) string {
	b, err := json.Marshal(cfg.Engine)
	if err != nil {
		return ""
	}
	return string(b)
}

func reportPathFor(outputPath string) string {
	base := outputPath
	if idx := strings.LastIndexByte(outputPath, '.'); idx >= 0 {
		base = outputPath[:idx]
	}
	return base + "-report.xlsx"
}
