package reconcile

import (
	"fmt"
	"strings"
	"unicode"
)

// Label names a field that can be recovered from a business case document.
type Label int

const (
	LabelTitle Label = iota
	LabelIdentifier
)

func (l Label) String() string {
	switch l {
	case LabelTitle:
		return "investment title"
	case LabelIdentifier:
		return "unique identifier"
	}
	return fmt.Sprintf("label(%d)", int(l))
}

type LabelPrefix struct {
	Label  Label
	Prefix string
}

// LabelSet is an ordered, validated table of label prefixes.
type LabelSet struct {
	prefixes []LabelPrefix
}

// MustLabelSet panics when a prefix is empty or a label or prefix appears
// twice, those tables are written by hand and never come from input.
func MustLabelSet(prefixes ...LabelPrefix) LabelSet {
	if len(prefixes) == 0 {
		panic("reconcile: empty label set")
	}
	seenLabels := make(map[Label]struct{}, len(prefixes))
	seenPrefixes := make(map[string]struct{}, len(prefixes))
	for _, p := range prefixes {
		if strings.TrimSpace(p.Prefix) == "" {
			panic(fmt.Sprintf("reconcile: empty prefix for %s", p.Label))
		}
		if _, ok := seenLabels[p.Label]; ok {
			panic(fmt.Sprintf("reconcile: duplicate label %s", p.Label))
		}
		if _, ok := seenPrefixes[p.Prefix]; ok {
			panic(fmt.Sprintf("reconcile: duplicate prefix %q", p.Prefix))
		}
		seenLabels[p.Label] = struct{}{}
		seenPrefixes[p.Prefix] = struct{}{}
	}
	return LabelSet{prefixes: append([]LabelPrefix(nil), prefixes...)}
}

// BusinessCaseLabels are the labels printed on page one of an IT Dashboard
// business case PDF.
var BusinessCaseLabels = MustLabelSet(
	LabelPrefix{Label: LabelTitle, Prefix: "1. Name of this Investment: "},
	LabelPrefix{Label: LabelIdentifier, Prefix: "2. Unique Investment Identifier (UII): "},
)

const trailingArtifacts = ".,;:"

// Extract returns the text after the first occurrence of prefix, up to the
// end of that line, with one trailing punctuation artifact removed.
func Extract(text, prefix string) (string, bool) {
	if prefix == "" {
		return "", false
	}
	idx := strings.Index(text, prefix)
	if idx < 0 {
		return "", false
	}
	return cutValue(text[idx+len(prefix):]), true
}

func cutValue(rest string) string {
	if end := strings.IndexAny(rest, "\r\n"); end >= 0 {
		rest = rest[:end]
	}
	rest = strings.TrimRightFunc(rest, unicode.IsSpace)
	if n := len(rest); n > 0 && strings.IndexByte(trailingArtifacts, rest[n-1]) >= 0 {
		rest = rest[:n-1]
	}
	return rest
}

// find locates the first occurrence of label's prefix in text that is not
// claimed by a longer prefix of the set starting at the same offset.
func (s LabelSet) find(text string, target LabelPrefix) (string, bool) {
	offset := 0
	for offset <= len(text) {
		idx := strings.Index(text[offset:], target.Prefix)
		if idx < 0 {
			return "", false
		}
		at := offset + idx
		if !s.shadowed(text[at:], target) {
			return cutValue(text[at+len(target.Prefix):]), true
		}
		offset = at + 1
	}
	return "", false
}

func (s LabelSet) shadowed(text string, target LabelPrefix) bool {
	for _, p := range s.prefixes {
		if p.Label == target.Label || len(p.Prefix) <= len(target.Prefix) {
			continue
		}
		if strings.HasPrefix(text, p.Prefix) {
			return true
		}
	}
	return false
}

type ExtractedField struct {
	Label Label
	Value string
}

// ExtractedDocument holds the fields recovered from one source document, in
// label set order. It is not modified after ExtractDocument returns it.
type ExtractedDocument struct {
	Source string
	fields []ExtractedField
}

func (d ExtractedDocument) Fields() []ExtractedField {
	return append([]ExtractedField(nil), d.fields...)
}

func (d ExtractedDocument) Field(label Label) (string, bool) {
	for _, f := range d.fields {
		if f.Label == label {
			return f.Value, true
		}
	}
	return "", false
}

// ExtractDocument runs every label of the set over the ordered text units of
// a document (one per text box, or a single blob) and keeps the first hit
// per label.
func (s LabelSet) ExtractDocument(source string, units []string) ExtractedDocument {
	doc := ExtractedDocument{Source: source}
	for _, p := range s.prefixes {
		for _, unit := range units {
			value, ok := s.find(unit, p)
			if !ok {
				continue
			}
			doc.fields = append(doc.fields, ExtractedField{Label: p.Label, Value: value})
			break
		}
	}
	return doc
}

// NewExtractedDocument builds a document from already extracted fields,
// later duplicates of a label are dropped.
func NewExtractedDocument(source string, fields ...ExtractedField) ExtractedDocument {
	doc := ExtractedDocument{Source: source}
	seen := map[Label]struct{}{}
	for _, f := range fields {
		if _, ok := seen[f.Label]; ok {
			continue
		}
		seen[f.Label] = struct{}{}
		doc.fields = append(doc.fields, f)
	}
	return doc
}
