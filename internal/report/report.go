// Package report turns pipeline results into the summary counters and
// the audit report workbook that accompany a cleaned dataset.
package report

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/sells-group/mailclean/internal/model"
	"github.com/sells-group/mailclean/internal/table"
)

// Summary holds the per-run counters printed to the operator and
// persisted with the audit record.
type Summary struct {
	Total          int `json:"total"`
	Accepted       int `json:"accepted"`
	Fixed          int `json:"fixed"`
	Review         int `json:"review"`
	Suppressed     int `json:"suppressed"`
	Duplicates     int `json:"duplicates"`
	NearDuplicates int `json:"near_duplicates"`
	BlankedRows    int `json:"blanked_rows"`
}

// Summarize tallies the final record actions.
func Summarize(records []*model.EmailRecord, near []model.NearDuplicate, blankedRows int) Summary {
	sum := Summary{
		Total:          len(records),
		NearDuplicates: len(near),
		BlankedRows:    blankedRows,
	}
	for _, rec := range records {
		switch rec.Action {
		case model.ActionAccept:
			sum.Accepted++
		case model.ActionFixAuto:
			sum.Fixed++
		case model.ActionReview:
			sum.Review++
		case model.ActionSuppress:
			sum.Suppressed++
		case model.ActionDuplicate:
			sum.Duplicates++
		}
	}
	return sum
}

// Build assembles the report workbook: one sheet per report plus the
// summary. Sheets are always present even when empty so downstream
// tooling can rely on the layout.
func Build(records []*model.EmailRecord, groups []model.DuplicateGroup, near []model.NearDuplicate, sum Summary) *table.Workbook {
	var wb table.Workbook
	buildChanges(&wb, records)
	buildRejected(&wb, records)
	buildDuplicates(&wb, groups)
	buildNearDuplicates(&wb, near)
	buildSummary(&wb, sum)
	return &wb
}

func buildChanges(wb *table.Workbook, records []*model.EmailRecord) {
	s := wb.AddSheet("Changes", []string{
		"Sheet", "Row", "Col", "Column", "Original", "Cleaned", "Action", "Confidence", "Reason",
	})
	for _, rec := range sorted(records) {
		if !rec.Changed || rec.Action == model.ActionSuppress || rec.Action == model.ActionDuplicate {
			continue
		}
		s.AppendRow(recordRow(rec))
	}
}

func buildRejected(wb *table.Workbook, records []*model.EmailRecord) {
	s := wb.AddSheet("Rejected", []string{
		"Sheet", "Row", "Col", "Column", "Original", "Cleaned", "Action", "Confidence", "Reason",
	})
	for _, rec := range sorted(records) {
		if rec.Action != model.ActionSuppress {
			continue
		}
		s.AppendRow(recordRow(rec))
	}
}

func buildDuplicates(wb *table.Workbook, groups []model.DuplicateGroup) {
	s := wb.AddSheet("Duplicates", []string{
		"CanonicalKey", "KeeperSheet", "KeeperRow", "KeeperCol", "DupSheet", "DupRow", "DupCol", "DupOriginal",
	})
	for _, g := range groups {
		for _, d := range g.Duplicates {
			s.AppendRow([]string{
				g.CanonicalKey,
				g.Keeper.Pos.Sheet, itoa(g.Keeper.Pos.Row), itoa(g.Keeper.Pos.Col),
				d.Pos.Sheet, itoa(d.Pos.Row), itoa(d.Pos.Col), d.Raw,
			})
		}
	}
}

func buildNearDuplicates(wb *table.Workbook, near []model.NearDuplicate) {
	s := wb.AddSheet("NearDuplicates", []string{
		"ASheet", "ARow", "ACol", "AEmail", "BSheet", "BRow", "BCol", "BEmail", "Similarity",
	})
	for _, p := range near {
		s.AppendRow([]string{
			p.A.Pos.Sheet, itoa(p.A.Pos.Row), itoa(p.A.Pos.Col), p.A.Cleaned,
			p.B.Pos.Sheet, itoa(p.B.Pos.Row), itoa(p.B.Pos.Col), p.B.Cleaned,
			fmt.Sprintf("%.3f", p.Similarity),
		})
	}
}

func buildSummary(wb *table.Workbook, sum Summary) {
	s := wb.AddSheet("Summary", []string{"Metric", "Count"})
	for _, kv := range [][2]string{
		{"total", itoa(sum.Total)},
		{"accepted", itoa(sum.Accepted)},
		{"fixed", itoa(sum.Fixed)},
		{"review", itoa(sum.Review)},
		{"suppressed", itoa(sum.Suppressed)},
		{"duplicates", itoa(sum.Duplicates)},
		{"near_duplicates", itoa(sum.NearDuplicates)},
		{"blanked_rows", itoa(sum.BlankedRows)},
	} {
		s.AppendRow(kv[:])
	}
}

func recordRow(rec *model.EmailRecord) []string {
	return []string{
		rec.Pos.Sheet, itoa(rec.Pos.Row), itoa(rec.Pos.Col), rec.Pos.Column,
		rec.Raw, rec.Cleaned, string(rec.Action),
		fmt.Sprintf("%.2f", rec.Confidence), rec.Reason,
	}
}

// sorted returns the records ordered by position without mutating the
// input slice.
func sorted(records []*model.EmailRecord) []*model.EmailRecord {
	out := make([]*model.EmailRecord, len(records))
	copy(out, records)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Pos.Less(out[j].Pos)
	})
	return out
}

func itoa(n int) string { return strconv.Itoa(n) }
