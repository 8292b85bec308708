// Package dedupe collapses records that refer to the same mailbox.
// Exact deduplication groups records by canonical key and keeps the
// first occurrence in workbook order. Near-duplicate detection is
// advisory only: candidate pairs are reported, never merged. Records
// already tagged as exact duplicates are left out of the near scan,
// since their groups report them; the scan covers surviving records.
package dedupe

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"go.uber.org/zap"

	"github.com/sells-group/mailclean/internal/model"
)

// nearDupeMaxDistance is the per-part edit-distance budget for
// flagging two distinct canonical keys as near-duplicates. The same
// bound applies to the length difference of the compared parts.
const nearDupeMaxDistance = 2

// Exact groups records sharing a canonical key. Within each group the
// record at the smallest (sheet, row, col) position is the keeper; the
// rest are re-tagged as duplicates in place. Groups come back ordered
// by keeper position, members by position, so identical input yields
// identical output.
func Exact(records []*model.EmailRecord) []model.DuplicateGroup {
	byKey := make(map[string][]*model.EmailRecord)
	for _, rec := range records {
		if rec.CanonicalKey == "" || rec.Action == model.ActionSuppress {
			continue
		}
		byKey[rec.CanonicalKey] = append(byKey[rec.CanonicalKey], rec)
	}

	var groups []model.DuplicateGroup
	for key, members := range byKey {
		if len(members) < 2 {
			continue
		}
		sort.Slice(members, func(i, j int) bool {
			return members[i].Pos.Less(members[j].Pos)
		})
		keeper := members[0]
		dups := members[1:]
		for _, d := range dups {
			d.Action = model.ActionDuplicate
			d.Reason = "duplicate of " + keeper.Cleaned
		}
		groups = append(groups, model.DuplicateGroup{
			CanonicalKey: key,
			Keeper:       keeper,
			Duplicates:   dups,
		})
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Keeper.Pos.Less(groups[j].Keeper.Pos)
	})
	return groups
}

// Near reports pairs of surviving records whose canonical keys are
// close but not identical. Keys are compared part-wise: a pair is a
// near-duplicate when the domains are within the edit-distance budget
// and similar in length, or when the domains match exactly and the
// local parts are within the same budget. The scan is pairwise, so it
// is skipped entirely when the candidate count exceeds ceiling; a
// skipped scan is logged and returns nil rather than a partial result.
func Near(records []*model.EmailRecord, ceiling int) []model.NearDuplicate {
	var cands []*model.EmailRecord
	for _, rec := range records {
		if rec.CanonicalKey == "" ||
			rec.Action == model.ActionSuppress ||
			rec.Action == model.ActionDuplicate {
			continue
		}
		cands = append(cands, rec)
	}

	if ceiling > 0 && len(cands) > ceiling {
		zap.L().Warn("dedupe: near-duplicate scan skipped",
			zap.Int("candidates", len(cands)),
			zap.Int("ceiling", ceiling))
		return nil
	}

	sort.Slice(cands, func(i, j int) bool {
		return cands[i].Pos.Less(cands[j].Pos)
	})

	var pairs []model.NearDuplicate
	for i := 0; i < len(cands); i++ {
		for j := i + 1; j < len(cands); j++ {
			a, b := cands[i], cands[j]
			if a.CanonicalKey == b.CanonicalKey {
				continue
			}
			if !nearKeys(a.CanonicalKey, b.CanonicalKey) {
				continue
			}
			pairs = append(pairs, model.NearDuplicate{
				A:          a,
				B:          b,
				Similarity: similarity(a.CanonicalKey, b.CanonicalKey),
			})
		}
	}
	return pairs
}

// nearKeys applies the part-wise rule to two canonical keys. Keys
// without an at sign never match.
func nearKeys(a, b string) bool {
	localA, domainA, okA := splitKey(a)
	localB, domainB, okB := splitKey(b)
	if !okA || !okB {
		return false
	}

	if withinBudget(domainA, domainB) {
		return true
	}
	if domainA == domainB && withinBudget(localA, localB) {
		return true
	}
	return false
}

// withinBudget reports whether two parts are within the edit-distance
// budget and differ in length by no more than the same bound.
func withinBudget(a, b string) bool {
	diff := len(a) - len(b)
	if diff < 0 {
		diff = -diff
	}
	if diff > nearDupeMaxDistance {
		return false
	}
	return levenshtein.ComputeDistance(a, b) <= nearDupeMaxDistance
}

func splitKey(key string) (local, domain string, ok bool) {
	at := strings.LastIndex(key, "@")
	if at < 0 {
		return "", "", false
	}
	return key[:at], key[at+1:], true
}

func similarity(a, b string) float64 {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(maxLen)
}
