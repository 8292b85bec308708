package model

// Action is the terminal classification for a record.
type Action string

const (
	ActionAccept    Action = "accept"
	ActionFixAuto   Action = "fix_auto"
	ActionReview    Action = "review"
	ActionSuppress  Action = "suppress"
	ActionDuplicate Action = "duplicate"
)

// ValidAction reports whether a is one of the four decision-engine
// actions. ActionDuplicate is assigned only by the duplicate engine and
// is not part of the decision vocabulary.
func ValidAction(a Action) bool {
	switch a {
	case ActionAccept, ActionFixAuto, ActionReview, ActionSuppress:
		return true
	}
	return false
}

// Position identifies a cell in the source workbook. Rows and columns
// are 1-based.
type Position struct {
	Sheet  string `json:"sheet"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Column string `json:"column"`
}

// Less orders positions by (sheet, row, col) ascending. Keeper selection
// within a duplicate group depends on this ordering.
func (p Position) Less(o Position) bool {
	if p.Sheet != o.Sheet {
		return p.Sheet < o.Sheet
	}
	if p.Row != o.Row {
		return p.Row < o.Row
	}
	return p.Col < o.Col
}

// EmailRecord is the unit of work: one non-blank cell plus everything
// the engine decided about it. Records are created at extraction time
// with only Pos and Raw set, mutated exactly once by the decision
// engine, and optionally re-tagged as duplicate by the duplicate engine.
// Suppressed and duplicate records are retained for audit.
type EmailRecord struct {
	Pos Position `json:"pos"`
	Raw string   `json:"raw"`

	Cleaned      string  `json:"cleaned"`
	Action       Action  `json:"action"`
	Confidence   float64 `json:"confidence"`
	CanonicalKey string  `json:"canonical_key,omitempty"`
	Flags        FlagSet `json:"-"`
	Reason       string  `json:"reason"`
	Changed      bool    `json:"changed"`
}

// Suppressed reports whether the record was removed from the output.
func (r *EmailRecord) Suppressed() bool {
	return r.Action == ActionSuppress
}

// DuplicateGroup is one canonical-key equivalence class with more than
// one member. Duplicates are ordered by position.
type DuplicateGroup struct {
	CanonicalKey string         `json:"canonical_key"`
	Keeper       *EmailRecord   `json:"keeper"`
	Duplicates   []*EmailRecord `json:"duplicates"`
}

// NearDuplicate is an advisory pairing of two records within a small
// edit-distance budget. Near-duplicates are flagged, never auto-merged.
type NearDuplicate struct {
	A          *EmailRecord `json:"a"`
	B          *EmailRecord `json:"b"`
	Similarity float64      `json:"similarity"`
}
