package reconcile

import (
	"fmt"
	"itdashboard-robot/lib/textutil"
)

// Verdict is the outcome of reconciling one tabular record against one
// extracted document.
type Verdict int

const (
	Match Verdict = iota
	TitleMismatch
	IdentifierMismatch
	FieldMissing
)

var verdictNames = map[Verdict]string{
	Match:              "MATCH",
	TitleMismatch:      "TITLE_MISMATCH",
	IdentifierMismatch: "IDENTIFIER_MISMATCH",
	FieldMissing:       "FIELD_MISSING",
}

func (v Verdict) String() string {
	name, ok := verdictNames[v]
	if !ok {
		return fmt.Sprintf("VERDICT(%d)", int(v))
	}
	return name
}

func ParseVerdict(s string) (Verdict, error) {
	for v, name := range verdictNames {
		if name == s {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown verdict %q", s)
}

// Columns is the header of an agency investments sheet.
var Columns = []string{
	"UII",
	"Bureau",
	"Investment title",
	"Total FY2021 Spending($M)",
	"Type",
	"CIO Rating",
	"# of Projects",
}

// TabularRecord is one row of an agency investments table, every value kept
// as the text that was rendered.
type TabularRecord struct {
	UII          string
	Bureau       string
	Title        string
	Spending     string
	Type         string
	CIORating    string
	ProjectCount string
}

func (r TabularRecord) Row() []string {
	return []string{r.UII, r.Bureau, r.Title, r.Spending, r.Type, r.CIORating, r.ProjectCount}
}

// RecordFromRow builds a record from cells in Columns order, missing trailing
// cells are left empty.
func RecordFromRow(cells []string) TabularRecord {
	get := func(i int) string {
		if i < len(cells) {
			return cells[i]
		}
		return ""
	}
	return TabularRecord{
		UII:          get(0),
		Bureau:       get(1),
		Title:        get(2),
		Spending:     get(3),
		Type:         get(4),
		CIORating:    get(5),
		ProjectCount: get(6),
	}
}

// Reconcile compares a record against a document. Titles are checked before
// identifiers, so when both differ TitleMismatch is reported.
func Reconcile(record TabularRecord, document ExtractedDocument) Verdict {
	title, ok := document.Field(LabelTitle)
	if !ok {
		return FieldMissing
	}
	identifier, ok := document.Field(LabelIdentifier)
	if !ok {
		return FieldMissing
	}

	if textutil.Normalize(record.Title) != textutil.Normalize(title) {
		return TitleMismatch
	}
	if textutil.Normalize(record.UII) != textutil.Normalize(identifier) {
		return IdentifierMismatch
	}
	return Match
}
