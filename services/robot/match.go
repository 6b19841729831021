package robot

import (
	"itdashboard-robot/lib/reconcile"
	"itdashboard-robot/lib/runstore"
	"itdashboard-robot/lib/textutil"

	"github.com/antzucaro/matchr"
)

// Matcher finds the sheet row a business case belongs to.
type Matcher struct {
	records []reconcile.TabularRecord
	byUII   map[string]int
}

func NewMatcher(records []reconcile.TabularRecord) Matcher {
	byUII := make(map[string]int, len(records))
	for i, r := range records {
		key := textutil.Normalize(r.UII)
		if _, exists := byUII[key]; exists {
			continue
		}
		byUII[key] = i
	}
	return Matcher{records: records, byUII: byUII}
}

func (m Matcher) lookup(uii string) (reconcile.TabularRecord, bool) {
	key := textutil.Normalize(uii)
	if key == "" {
		return reconcile.TabularRecord{}, false
	}
	i, ok := m.byUII[key]
	if !ok {
		return reconcile.TabularRecord{}, false
	}
	return m.records[i], true
}

// MatchRecord reconciles doc against the row whose UII is fileUII, falling
// back to the UII written in the document. A document with no row is an
// orphan and gets FieldMissing. Findings that do not match carry the most
// similar record title.
func (m Matcher) MatchRecord(fileUII string, doc reconcile.ExtractedDocument) runstore.Finding {
	finding := runstore.Finding{
		UII:    fileUII,
		Source: doc.Source,
	}

	record, ok := m.lookup(fileUII)
	if !ok {
		extracted, found := doc.Field(reconcile.LabelIdentifier)
		if found {
			record, ok = m.lookup(extracted)
		}
	}

	if ok {
		finding.UII = record.UII
		finding.Verdict = reconcile.Reconcile(record, doc)
	} else {
		finding.Verdict = reconcile.FieldMissing
		finding.Orphan = true
	}

	if finding.Verdict == reconcile.Match {
		return finding
	}
	title, found := doc.Field(reconcile.LabelTitle)
	if found {
		finding.ClosestTitle, finding.Similarity = m.closestTitle(title)
	}
	return finding
}

func (m Matcher) closestTitle(title string) (string, float64) {
	title = textutil.NormalizeKey(title)
	if title == "" {
		return "", 0
	}

	var mostSimilarity float64
	var mostSimilarTitle string
	for _, r := range m.records {
		similarity := matchr.JaroWinkler(title, textutil.NormalizeKey(r.Title), false)
		if similarity > mostSimilarity {
			mostSimilarity = similarity
			mostSimilarTitle = r.Title
		}
	}
	return mostSimilarTitle, mostSimilarity
}
