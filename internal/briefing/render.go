package briefing

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/cloudwego/eino-ext/components/document/transformer/splitter/markdown"
	"github.com/cloudwego/eino/schema"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var headerKeys = []string{"h1", "h2", "h3", "h4"}

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// MarkdownToHTML renders GitHub-flavoured markdown. Raw HTML in the input is
// not passed through.
func MarkdownToHTML(src string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}

// SplitSections cuts src on # to #### headers, keeping the header lines.
func SplitSections(ctx context.Context, src string) ([]Section, error) {
	splitter, err := markdown.NewHeaderSplitter(ctx, &markdown.HeaderConfig{
		Headers: map[string]string{
			"#":    "h1",
			"##":   "h2",
			"###":  "h3",
			"####": "h4",
		},
		TrimHeaders: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown splitter: %w", err)
	}

	docs, err := splitter.Transform(ctx, []*schema.Document{{ID: "briefing", Content: src}})
	if err != nil {
		return nil, fmt.Errorf("failed to split markdown: %w", err)
	}

	sections := make([]Section, 0, len(docs))
	for _, doc := range docs {
		s := Section{Content: doc.Content, Headers: map[string]string{}}
		for level, key := range headerKeys {
			if v, ok := doc.MetaData[key].(string); ok && v != "" {
				s.Headers[key] = v
				s.Heading = v
				s.Level = level + 1
			}
		}
		sections = append(sections, s)
	}
	return sections, nil
}

var emailTemplate = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Subject}}</title>
</head>
<body style="margin:0;padding:0;background:{{.Design.Colors.Background}};">
<div style="max-width:680px;margin:0 auto;padding:24px;font-family:{{.Design.Typography.FontFamily}};font-size:{{.Design.Typography.FontSize}};line-height:{{.Design.Typography.LineHeight}};color:{{.Design.Colors.Text}};">
  <div style="border-bottom:3px solid {{.Design.Colors.Primary}};padding-bottom:12px;margin-bottom:20px;">
    <h1 style="margin:0;color:{{.Design.Colors.Primary}};">{{.Design.Header.Title}}</h1>
    <p style="margin:4px 0 0;color:{{.Design.Colors.Secondary}};">{{.Design.Header.Subtitle}}</p>
    <p style="margin:8px 0 0;color:{{.Design.Colors.Accent}};font-weight:600;">{{.Label}}{{if .Design.Header.ShowDate}} · {{.Date}}{{end}}</p>
  </div>
  <div>{{.Body}}</div>
  <div style="border-top:1px solid {{.Design.Colors.Secondary}};margin-top:28px;padding-top:12px;font-size:12px;color:{{.Design.Colors.Secondary}};">
    <p style="margin:0;">{{.Design.Footer.Text}}</p>
    <p style="margin:6px 0 0;">{{.Design.Footer.Disclaimer}}</p>
  </div>
</div>
</body>
</html>`))

type emailView struct {
	Subject string
	Label   string
	Date    string
	Design  Design
	Body    template.HTML
}

// WrapEmail places an already rendered HTML body inside the branded layout.
func WrapEmail(design Design, t Type, subject, body string, at time.Time) (string, error) {
	var buf bytes.Buffer
	err := emailTemplate.Execute(&buf, emailView{
		Subject: subject,
		Label:   t.Label(),
		Date:    at.Format("2006-01-02"),
		Design:  design,
		Body:    template.HTML(body),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render email template: %w", err)
	}
	return buf.String(), nil
}
