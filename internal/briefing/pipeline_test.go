package briefing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gobapps/gob-api/internal/llm"
	"github.com/gobapps/gob-api/internal/notify"
	"github.com/gobapps/gob-api/internal/types"
)

const researchJSON = `{"date":"2026-10-15","summary":"Les marchés ouvrent en hausse après les données d'inflation.","markets":[{"name":"S&P 500","value":5800.5,"change_percent":0.4}],"sources":["https://www.reuters.com"]}`

const composedMarkdown = "## Résumé\nLes marchés montent.\n\n## Sources\n- Reuters\n"

type fakeCompleter struct {
	content string
	err     error
	calls   int
	prompts []string
}

func (f *fakeCompleter) Complete(ctx context.Context, system, user string, opts llm.Options) (*llm.Completion, error) {
	f.calls++
	f.prompts = append(f.prompts, user)
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Completion{Content: f.content}, nil
}

type recorder struct {
	order []string
}

type fakeMailer struct {
	rec   *recorder
	err   error
	calls int
	last  notify.Email
}

func (m *fakeMailer) Send(ctx context.Context, email notify.Email) (string, error) {
	m.calls++
	m.last = email
	m.rec.order = append(m.rec.order, "send")
	if m.err != nil {
		return "", m.err
	}
	return "msg-42", nil
}

type fakeArchive struct {
	rec   *recorder
	calls int
	last  types.BriefingArchive
}

func (a *fakeArchive) InsertBriefingArchive(ctx context.Context, archive types.BriefingArchive) error {
	a.calls++
	a.last = archive
	a.rec.order = append(a.rec.order, "archive")
	return nil
}

type fixture struct {
	research *fakeCompleter
	writer   *fakeCompleter
	mailer   *fakeMailer
	archive  *fakeArchive
	rec      *recorder
	pipeline *Pipeline
}

func newFixture(researchContent string) *fixture {
	rec := &recorder{}
	f := &fixture{
		research: &fakeCompleter{content: researchContent},
		writer:   &fakeCompleter{content: composedMarkdown},
		mailer:   &fakeMailer{rec: rec},
		archive:  &fakeArchive{rec: rec},
		rec:      rec,
	}
	f.pipeline = NewPipeline(Deps{
		Research:  f.research,
		Writer:    f.writer,
		Mailer:    f.mailer,
		Archive:   f.archive,
		DefaultTo: []string{"team@gobapps.com"},
		Now:       func() time.Time { return time.Date(2026, 10, 15, 11, 20, 0, 0, time.UTC) },
		NewID:     func() string { return "00000000-0000-0000-0000-000000000001" },
	})
	return f
}

func TestPreviewOnlySkipsDelivery(t *testing.T) {
	f := newFixture(researchJSON)

	res, err := f.pipeline.Run(context.Background(), Request{Type: TypeMorning, PreviewOnly: true})
	require.NoError(t, err)

	assert.Equal(t, 0, f.mailer.calls)
	assert.Equal(t, 0, f.archive.calls)
	assert.False(t, res.Delivered)
	assert.JSONEq(t, researchJSON, string(res.JSON))
	assert.Equal(t, composedMarkdown, res.Markdown)
	assert.Contains(t, res.HTML, "<h2>Résumé</h2>")
	assert.NotEmpty(t, res.Sections)
}

func TestDeliverSendsThenArchivesOnce(t *testing.T) {
	f := newFixture(researchJSON)

	res, err := f.pipeline.Run(context.Background(), Request{Type: TypeEvening, To: []string{"a@x.com"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"send", "archive"}, f.rec.order)
	assert.Equal(t, 1, f.mailer.calls)
	assert.Equal(t, 1, f.archive.calls)
	assert.Equal(t, []string{"a@x.com"}, f.mailer.last.To)
	assert.Equal(t, "evening", f.archive.last.Type)
	assert.JSONEq(t, researchJSON, string(f.archive.last.JSON))
	assert.True(t, res.Delivered)
	assert.Equal(t, "msg-42", res.MessageID)
	assert.Equal(t, "00000000-0000-0000-0000-000000000001", res.ArchiveID)
}

func TestDefaultRecipientsUsed(t *testing.T) {
	f := newFixture(researchJSON)

	_, err := f.pipeline.Run(context.Background(), Request{Type: TypeMidday})
	require.NoError(t, err)
	assert.Equal(t, []string{"team@gobapps.com"}, f.mailer.last.To)
}

func TestSendFailureSkipsArchive(t *testing.T) {
	f := newFixture(researchJSON)
	f.mailer.err = errors.New("resend down")

	_, err := f.pipeline.Run(context.Background(), Request{Type: TypeMorning})
	require.Error(t, err)
	assert.ErrorContains(t, err, "resend down")
	assert.Equal(t, 1, f.mailer.calls)
	assert.Equal(t, 0, f.archive.calls)
}

func TestResearchFailureStopsBeforeCompose(t *testing.T) {
	f := newFixture(researchJSON)
	f.research.err = errors.New("perplexity 500")

	_, err := f.pipeline.Run(context.Background(), Request{Type: TypeMorning})
	require.Error(t, err)
	assert.Equal(t, 0, f.writer.calls)
	assert.Equal(t, 0, f.mailer.calls)
}

func TestStringEncodedDataIsParsedTwice(t *testing.T) {
	quoted := `"{\"date\":\"2026-10-15\",\"summary\":\"x\",\"markets\":[]}"`
	f := newFixture(quoted)

	res, err := f.pipeline.Run(context.Background(), Request{Type: TypeMorning, PreviewOnly: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2026-10-15","summary":"x","markets":[]}`, string(res.JSON))
}

func TestValidationFailureStopsPipeline(t *testing.T) {
	f := newFixture(`{"date":"2026-10-15","summary":"court","markets":[]}`)

	_, err := f.pipeline.Run(context.Background(), Request{Type: TypeMorning, Validate: true})
	require.Error(t, err)
	assert.ErrorContains(t, err, "validation")
	assert.Equal(t, 0, f.writer.calls)
	assert.Equal(t, 0, f.mailer.calls)
}

func TestCustomRequiresPrompt(t *testing.T) {
	f := newFixture(researchJSON)

	_, err := f.pipeline.Run(context.Background(), Request{Type: TypeCustom})
	assert.ErrorIs(t, err, ErrPromptRequired)

	_, err = f.pipeline.Run(context.Background(), Request{Type: TypeCustom, PromptOverride: "Dette du Canada", PreviewOnly: true})
	require.NoError(t, err)
	assert.Equal(t, "Dette du Canada", f.research.prompts[0])
}

func TestNoRecipientsIsError(t *testing.T) {
	f := newFixture(researchJSON)
	f.pipeline.d.DefaultTo = nil

	_, err := f.pipeline.Run(context.Background(), Request{Type: TypeMorning})
	assert.ErrorIs(t, err, ErrNoRecipients)
	assert.Equal(t, 0, f.mailer.calls)
}
