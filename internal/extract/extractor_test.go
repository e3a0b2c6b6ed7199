package extract

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saransh482003/healthassist/internal/llm"
	"github.com/saransh482003/healthassist/internal/model"
)

// fakeRenderer returns a canned page per URL.
type fakeRenderer struct {
	pages map[string]*model.RenderedPage
	err   error
}

func (f *fakeRenderer) Render(_ context.Context, url string) (*model.RenderedPage, error) {
	if f.err != nil {
		return nil, f.err
	}
	page, ok := f.pages[url]
	if !ok {
		return nil, fmt.Errorf("no page for %s", url)
	}
	return page, nil
}

func (f *fakeRenderer) Close() {}

// fakeModel replies with queued responses in order.
type fakeModel struct {
	replies []string
	calls   []string
	err     error
}

func (f *fakeModel) Complete(_ context.Context, _ string, msgs []llm.Message) (string, error) {
	f.calls = append(f.calls, msgs[len(msgs)-1].Content)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "[]", nil
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply, nil
}

const validRoster = `[
	{"Name": "Dr. A Rao", "Designation": "Senior Consultant", "Specialization": "Cardiology", "Contact": "+91 80 1111", "Doctor_Image": "https://x.test/rao.jpg"},
	{"Name": "Dr. B Shah", "Designation": "", "Specialization": "Cardiology", "Contact": null, "Doctor_Image": ""}
]`

func TestExtract_Success(t *testing.T) {
	renderer := &fakeRenderer{pages: map[string]*model.RenderedPage{
		"https://h.test/doctors": {URL: "https://h.test/doctors", Text: "Dr. A Rao, Senior Consultant ..."},
	}}
	m := &fakeModel{replies: []string{validRoster}}

	e := New(renderer, m)
	got, err := e.Extract(context.Background(), "https://h.test/doctors", "cardiology")

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Dr. A Rao", got[0].Name)
	// Empty and null fields become the explicit unknown marker.
	assert.Equal(t, model.Unknown, got[1].Designation)
	assert.Equal(t, model.Unknown, got[1].Contact)
	assert.Equal(t, model.Unknown, got[1].DoctorImage)
}

func TestExtract_TruncatesLongText(t *testing.T) {
	long := make([]byte, 20000)
	for i := range long {
		long[i] = 'x'
	}
	renderer := &fakeRenderer{pages: map[string]*model.RenderedPage{
		"https://h.test/": {Text: string(long)},
	}}
	m := &fakeModel{replies: []string{"[]"}}

	e := New(renderer, m)
	_, err := e.Extract(context.Background(), "https://h.test/", "")

	require.NoError(t, err)
	require.Len(t, m.calls, 1)
	assert.Less(t, len(m.calls[0]), 8000, "prompt should carry at most %d chars of page text", maxTextChars)
}

func TestExtract_FallsBackToNetworkPayloads(t *testing.T) {
	renderer := &fakeRenderer{pages: map[string]*model.RenderedPage{
		"https://h.test/doctors": {
			Text:         "Loading...",
			JSONPayloads: []string{`{"doctors": [{"name": "Dr. C"}]}`},
		},
	}}
	m := &fakeModel{replies: []string{
		"[]", // primary pass over rendered text finds nothing
		`[{"Name": "Dr. C", "Designation": "Consultant", "Specialization": "Dermatology", "Contact": "Unknown", "Doctor_Image": "Unknown"}]`,
	}}

	e := New(renderer, m)
	got, err := e.Extract(context.Background(), "https://h.test/doctors", "dermatology")

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Dr. C", got[0].Name)
	require.Len(t, m.calls, 2)
	assert.Contains(t, m.calls[1], `"doctors"`)
}

func TestExtract_NoFallbackWithoutPayloads(t *testing.T) {
	renderer := &fakeRenderer{pages: map[string]*model.RenderedPage{
		"https://h.test/": {Text: "Nothing here"},
	}}
	m := &fakeModel{replies: []string{"[]"}}

	e := New(renderer, m)
	got, err := e.Extract(context.Background(), "https://h.test/", "")

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Len(t, m.calls, 1)
}

func TestExtract_RenderFailure(t *testing.T) {
	renderer := &fakeRenderer{err: fmt.Errorf("browser crashed")}
	e := New(renderer, &fakeModel{})

	_, err := e.Extract(context.Background(), "https://h.test/", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "browser crashed")
}

func TestExtract_SchemaViolationIsError(t *testing.T) {
	renderer := &fakeRenderer{pages: map[string]*model.RenderedPage{
		"https://h.test/": {Text: "content"},
	}}
	m := &fakeModel{replies: []string{`[{"Name": "Dr. D"}]`}} // missing keys

	e := New(renderer, m)
	_, err := e.Extract(context.Background(), "https://h.test/", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing key")
}

func TestExtract_ProseReplyIsError(t *testing.T) {
	renderer := &fakeRenderer{pages: map[string]*model.RenderedPage{
		"https://h.test/": {Text: "content"},
	}}
	m := &fakeModel{replies: []string{"I could not find any doctors on this page."}}

	e := New(renderer, m)
	_, err := e.Extract(context.Background(), "https://h.test/", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a JSON array")
}

func TestTruncate_NeverSplitsRune(t *testing.T) {
	// Devanagari characters are three bytes each; a byte-count cap can
	// land mid-character.
	s := strings.Repeat("डॉ", 10)

	for n := 0; n <= len(s); n++ {
		got := truncate(s, n)
		assert.True(t, utf8.ValidString(got), "cap %d produced invalid UTF-8", n)
		assert.LessOrEqual(t, len(got), n)
	}

	assert.Equal(t, "abc", truncate("abc", 10))
	assert.Equal(t, "ab", truncate("abc", 2))
}

func TestParseRoster_MarkdownFences(t *testing.T) {
	got, err := ParseRoster("```json\n" + validRoster + "\n```")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestParseRoster_EmptyArray(t *testing.T) {
	got, err := ParseRoster("[]")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseRoster_AllKeysAlwaysPresent(t *testing.T) {
	got, err := ParseRoster(validRoster)
	require.NoError(t, err)
	for _, rec := range got {
		assert.NotEmpty(t, rec.Name)
		assert.NotEmpty(t, rec.Designation)
		assert.NotEmpty(t, rec.Specialization)
		assert.NotEmpty(t, rec.Contact)
		assert.NotEmpty(t, rec.DoctorImage)
	}
}
