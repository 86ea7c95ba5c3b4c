package ingest_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/legal-radar/internal/ingest"
	"github.com/DeafMist/legal-radar/internal/models"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "entities and tags", input: "<p>Section 3 &amp; 4</p>", want: "Section 3 & 4"},
		{name: "collapse whitespace", input: "foo\n\nbar\t baz", want: "foo bar baz"},
		{name: "keeps punctuation", input: "Art. 21(1)(a), IPC", want: "Art. 21(1)(a), IPC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ingest.CleanText(tt.input))
		})
	}
}

func TestExtractURLs(t *testing.T) {
	require.Nil(t, ingest.ExtractURLs("no links"))
	require.Equal(t,
		[]string{"https://example.com/a", "http://test.org"},
		ingest.ExtractURLs("see https://example.com/a and http://test.org, again https://example.com/a"),
	)
}

func TestGenerateTitleFromText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxWords int
		want     string
	}{
		{name: "empty", text: "", maxWords: 10, want: ""},
		{name: "first sentence", text: "High Court grants bail! Hearing next week.", maxWords: 10, want: "High Court grants bail"},
		{name: "truncated", text: "Supreme Court issues notice to the Union on the plea", maxWords: 4, want: "Supreme Court issues notice..."},
		{name: "url skipped", text: "https://x.org/a.b Court update", maxWords: 0, want: "Court update"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ingest.GenerateTitleFromText(tt.text, tt.maxWords))
		})
	}
}

func TestBuildDocumentIDIsDeterministic(t *testing.T) {
	a := ingest.BuildDocumentID("news", "t", "2024-01-01")
	require.Equal(t, a, ingest.BuildDocumentID("news", "t", "2024-01-01"))
	require.NotEqual(t, a, ingest.BuildDocumentID("reports", "t", "2024-01-01"))
}

func TestPrepareReportFoldsLegacyFields(t *testing.T) {
	p, err := ingest.Prepare(models.CollectionReports, []byte(`{
		"Title": "Custodial death inquiry",
		"Place": "Delhi",
		"Date": "05.02.2024",
		"Attachments": ["a.pdf"],
		"link": "https://nhrc.example/1"
	}`), now)
	require.NoError(t, err)

	rec := p.Record
	require.Equal(t, "Custodial death inquiry", rec["title"])
	require.Equal(t, "Delhi", rec["place"])
	require.Equal(t, "05.02.2024", rec["date"])
	require.Equal(t, "https://nhrc.example/1", rec["url"])
	require.Equal(t, []any{"a.pdf"}, rec["attachments"])
	require.NotContains(t, rec, "Place")
	require.NotContains(t, rec, "Date")
	require.Equal(t, time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC).UnixMilli(), rec["date_ms"])
	require.Equal(t, true, rec["date_checked"])
}

func TestPrepareNewsGeneratesTitle(t *testing.T) {
	p, err := ingest.Prepare(models.CollectionNews, []byte(`{
		"summary": "Court stays demolition. Details at https://news.example/x",
		"published_at": "garbage"
	}`), now)
	require.NoError(t, err)
	require.Equal(t, "Court stays demolition", p.Record["title"])
	require.Equal(t, "https://news.example/x", p.Record["url"])
	require.NotContains(t, p.Record, "published_at_ms")
	require.Equal(t, true, p.Record["published_at_checked"])

	_, err = ingest.Prepare(models.CollectionNews, []byte(`{"summary": "  "}`), now)
	require.ErrorIs(t, err, ingest.ErrEmptyDocument)
}

func TestPrepareAlertDefaultsToPending(t *testing.T) {
	p, err := ingest.Prepare(models.CollectionAlerts, []byte(`{"gazette_id": "G1", "summary": "New rules"}`), now)
	require.NoError(t, err)
	require.Equal(t, false, p.Record["slack_sent"])
	require.Equal(t, now.Format(time.RFC3339Nano), p.Record["alerted_at"])
	require.NotContains(t, p.Record, "updated_at")

	declined, err := ingest.Prepare(models.CollectionAlerts, []byte(`{"gazette_id": "G1", "slack_sent": null}`), now)
	require.NoError(t, err)
	require.Nil(t, declined.Record["slack_sent"])

	_, err = ingest.Prepare(models.CollectionAlerts, []byte(`{"summary": "no key"}`), now)
	require.ErrorIs(t, err, ingest.ErrEmptyDocument)
}

func TestPrepareGazetteKeyedByBusinessID(t *testing.T) {
	a, err := ingest.Prepare(models.CollectionGazettes, []byte(`{"gazette_id": "G1", "subject": "v1", "publish_date": "12/03/2024"}`), now)
	require.NoError(t, err)
	b, err := ingest.Prepare(models.CollectionGazettes, []byte(`{"gazette_id": "G1", "subject": "v2", "publish_date": "12/03/2024"}`), now)
	require.NoError(t, err)

	require.Equal(t, a.ID, b.ID)
	require.NotEqual(t, a.Fingerprint, b.Fingerprint)
	require.NotNil(t, a.Record["publish_date_ms"])
}

func TestPrepareRejectsBadPayload(t *testing.T) {
	_, err := ingest.Prepare(models.CollectionNews, []byte(`{`), now)
	require.Error(t, err)

	_, err = ingest.Prepare("tweets", []byte(`{}`), now)
	require.Error(t, err)
}
