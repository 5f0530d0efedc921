// Package briefing produces Emma's market briefings: research data from
// Perplexity, prose from GPT, rendered to HTML and optionally emailed.
package briefing

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gobapps/gob-api/internal/llm"
	"github.com/gobapps/gob-api/internal/metrics"
	"github.com/gobapps/gob-api/internal/notify"
	"github.com/gobapps/gob-api/internal/types"
	"github.com/gobapps/gob-api/internal/utils"
)

type Completer interface {
	Complete(ctx context.Context, system, user string, opts llm.Options) (*llm.Completion, error)
}

type Archiver interface {
	InsertBriefingArchive(ctx context.Context, archive types.BriefingArchive) error
}

type DesignSource interface {
	Design(ctx context.Context) (Design, error)
}

type TickerLister interface {
	ListTickers(ctx context.Context, activeOnly bool) ([]types.TickerRegistryRow, error)
}

type Deps struct {
	Research  Completer
	Writer    Completer
	Mailer    notify.Sender
	Archive   Archiver
	Designs   DesignSource // optional
	Tickers   TickerLister // optional
	DefaultTo []string
	From      string
	Now       func() time.Time
	NewID     func() string
	Validator *validator.Validate
}

// Pipeline runs research, optional validation, composition, rendering and delivery in order.
// Nothing is retried; the first error ends the run.
type Pipeline struct {
	d Deps
}

func NewPipeline(d Deps) *Pipeline {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.NewID == nil {
		d.NewID = uuid.NewString
	}
	if d.Validator == nil {
		d.Validator = validator.New()
	}
	return &Pipeline{d: d}
}

func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	res, err := p.run(ctx, req)
	outcome := "success"
	switch {
	case err != nil:
		outcome = "error"
	case req.PreviewOnly:
		outcome = "preview"
	}
	metrics.BriefingRunsTotal.WithLabelValues(string(req.Type), outcome).Inc()
	return res, err
}

func (p *Pipeline) run(ctx context.Context, req Request) (*Result, error) {
	if req.Type == TypeCustom && req.PromptOverride == "" {
		return nil, ErrPromptRequired
	}
	now := p.d.Now().UTC()
	log := utils.Zlog.With(zap.String("type", string(req.Type)), zap.Bool("previewOnly", req.PreviewOnly))

	// research
	prompt := req.PromptOverride
	if prompt == "" {
		prompt = DefaultPrompt(req.Type, now, p.teamTickers(ctx))
	}
	research, err := p.d.Research.Complete(ctx, researchSystem, prompt, llm.Options{Temperature: 0.2, MaxTokens: 4000})
	if err != nil {
		return nil, fmt.Errorf("fetch data: %w", err)
	}
	data, err := ParseData(research.Content)
	if err != nil {
		return nil, fmt.Errorf("fetch data: %w", err)
	}
	log.Info("Briefing data fetched", zap.Int("bytes", len(data)))

	// validate
	if req.Validate {
		if err := ValidateData(p.d.Validator, data); err != nil {
			return nil, err
		}
	}

	// compose
	composed, err := p.d.Writer.Complete(ctx, ComposeSystem, composePrompt(req.Type, data), llm.Options{Temperature: 0.5, MaxTokens: 3000})
	if err != nil {
		return nil, fmt.Errorf("compose: %w", err)
	}
	markdown := composed.Content

	// render
	body, err := MarkdownToHTML(markdown)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	sections, err := SplitSections(ctx, markdown)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	subj := subject(req.Type, now)
	html, err := WrapEmail(p.design(ctx), req.Type, subj, body, now)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	res := &Result{
		Type:     req.Type,
		Subject:  subj,
		JSON:     data,
		Markdown: markdown,
		HTML:     html,
		Sections: sections,
	}
	if req.PreviewOnly {
		return res, nil
	}

	// deliver: send, then archive. A failed send skips the archive.
	to := req.To
	if len(to) == 0 {
		to = p.d.DefaultTo
	}
	if len(to) == 0 {
		return nil, ErrNoRecipients
	}
	msgID, err := p.d.Mailer.Send(ctx, notify.Email{From: p.d.From, To: to, Subject: subj, HTML: html, Text: markdown})
	if err != nil {
		return nil, fmt.Errorf("deliver: %w", err)
	}
	archive := types.BriefingArchive{
		ID:         p.d.NewID(),
		Type:       string(req.Type),
		JSON:       data,
		HTML:       html,
		Recipients: to,
		SentAt:     p.d.Now().UTC(),
	}
	if err := p.d.Archive.InsertBriefingArchive(ctx, archive); err != nil {
		return nil, fmt.Errorf("archive: %w", err)
	}

	res.Delivered = true
	res.MessageID = msgID
	res.ArchiveID = archive.ID
	log.Info("Briefing delivered", zap.Strings("to", to), zap.String("archiveId", archive.ID))
	return res, nil
}

func (p *Pipeline) design(ctx context.Context) Design {
	if p.d.Designs == nil {
		return DefaultDesign()
	}
	d, err := p.d.Designs.Design(ctx)
	if err != nil {
		utils.Zlog.Warn("Email design unavailable, using defaults", zap.Error(err))
		return DefaultDesign()
	}
	return d
}

func (p *Pipeline) teamTickers(ctx context.Context) []string {
	if p.d.Tickers == nil {
		return nil
	}
	rows, err := p.d.Tickers.ListTickers(ctx, true)
	if err != nil {
		utils.Zlog.Warn("Ticker registry unavailable for briefing prompt", zap.Error(err))
		return nil
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.Source == types.TickerSourceTeam || r.Source == types.TickerSourceBoth {
			out = append(out, r.Ticker)
		}
	}
	return out
}
