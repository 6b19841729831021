package reconcile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func businessCase(lines ...string) ExtractedDocument {
	return BusinessCaseLabels.ExtractDocument("test.pdf", lines)
}

func TestReconcile(t *testing.T) {
	record := TabularRecord{
		UII:   "010-000001234",
		Title: "Network Modernization",
	}

	testCases := []struct {
		name     string
		record   TabularRecord
		document ExtractedDocument
		expected Verdict
	}{
		{
			name:   "exact",
			record: record,
			document: businessCase(
				"1. Name of this Investment: Network Modernization.",
				"2. Unique Investment Identifier (UII): 010-000001234.",
			),
			expected: Match,
		},
		{
			name:   "double space in document",
			record: record,
			document: businessCase(
				"1. Name of this Investment: Network  Modernization.",
				"2. Unique Investment Identifier (UII): 010-000001234.",
			),
			expected: Match,
		},
		{
			name:   "padded table cell",
			record: TabularRecord{UII: " 010-000001234\n", Title: "Network\tModernization "},
			document: businessCase(
				"1. Name of this Investment: Network Modernization.",
				"2. Unique Investment Identifier (UII): 010-000001234.",
			),
			expected: Match,
		},
		{
			name:   "identifier line missing",
			record: record,
			document: businessCase(
				"1. Name of this Investment: Network Modernization.",
			),
			expected: FieldMissing,
		},
		{
			name:     "title line missing",
			record:   record,
			document: businessCase("2. Unique Investment Identifier (UII): 010-000001234."),
			expected: FieldMissing,
		},
		{
			name:     "empty document",
			record:   TabularRecord{},
			document: businessCase(),
			expected: FieldMissing,
		},
		{
			name:   "identifier differs",
			record: record,
			document: businessCase(
				"1. Name of this Investment: Network Modernization.",
				"2. Unique Investment Identifier (UII): 010-000009999.",
			),
			expected: IdentifierMismatch,
		},
		{
			name:   "title differs",
			record: record,
			document: businessCase(
				"1. Name of this Investment: Network Upgrade.",
				"2. Unique Investment Identifier (UII): 010-000001234.",
			),
			expected: TitleMismatch,
		},
		{
			name:   "both differ reports title",
			record: record,
			document: businessCase(
				"1. Name of this Investment: Network Upgrade.",
				"2. Unique Investment Identifier (UII): 010-000009999.",
			),
			expected: TitleMismatch,
		},
		{
			name:   "title is never compared to the identifier",
			record: TabularRecord{UII: "Network Modernization", Title: "010-000001234"},
			document: businessCase(
				"1. Name of this Investment: Network Modernization.",
				"2. Unique Investment Identifier (UII): 010-000001234.",
			),
			expected: TitleMismatch,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, Reconcile(test.record, test.document))
		})
	}
}

func TestVerdictNames(t *testing.T) {
	for _, v := range []Verdict{Match, TitleMismatch, IdentifierMismatch, FieldMissing} {
		parsed, err := ParseVerdict(v.String())
		require.NoError(t, err)
		require.Equal(t, v, parsed)
	}
	require.Equal(t, "IDENTIFIER_MISMATCH", IdentifierMismatch.String())
	_, err := ParseVerdict("NOPE")
	require.Error(t, err)
}

func TestRecordFromRow(t *testing.T) {
	record := TabularRecord{
		UII:          "010-000001234",
		Bureau:       "Office of the Secretary",
		Title:        "Network Modernization",
		Spending:     "12.34",
		Type:         "Major IT Investments",
		CIORating:    "4",
		ProjectCount: "3",
	}
	require.Equal(t, record, RecordFromRow(record.Row()))
	require.Len(t, record.Row(), len(Columns))
	require.Equal(t, TabularRecord{UII: "x"}, RecordFromRow([]string{"x"}))
}
