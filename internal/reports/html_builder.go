package reports

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"coviddash/internal/view"
)

// PageData is what one render of the dashboard needs.
type PageData struct {
	View        view.View
	Loading     bool
	Version     string
	GeneratedAt time.Time
	// RefreshAfter is the meta refresh interval while loading.
	RefreshAfter time.Duration
}

// PageBuilder renders the dashboard page.
type PageBuilder struct {
	tmpl     *template.Template
	goldmark goldmark.Markdown
	note     template.HTML
}

// NewPageBuilder parses the embedded template and renders the markdown note
// shown under the table.
func NewPageBuilder(note string) (*PageBuilder, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
		),
	)

	b := &PageBuilder{goldmark: md}

	noteHTML, err := b.ConvertMarkdownToHTML(note)
	if err != nil {
		return nil, err
	}
	b.note = template.HTML(noteHTML)

	src, err := NewTemplateLoader().LoadHTMLTemplate()
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New("dashboard").Funcs(template.FuncMap{
		"count": FormatCount,
	}).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dashboard template: %w", err)
	}
	b.tmpl = tmpl
	return b, nil
}

// ConvertMarkdownToHTML converts markdown to HTML using goldmark. Raw HTML
// in the source is dropped.
func (b *PageBuilder) ConvertMarkdownToHTML(markdownContent string) (string, error) {
	var buf bytes.Buffer
	if err := b.goldmark.Convert([]byte(markdownContent), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	return buf.String(), nil
}

// Build writes the page for data to w.
func (b *PageBuilder) Build(w io.Writer, data PageData) error {
	var buf bytes.Buffer
	if err := b.tmpl.Execute(&buf, b.model(data)); err != nil {
		return fmt.Errorf("failed to render dashboard: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

type option struct {
	Value    int
	Label    string
	Selected bool
}

type link struct {
	Label  string
	Href   string
	Active bool
}

type pageModel struct {
	Title        string
	WindowLabel  string
	LatestDate   string
	Loading      bool
	RefreshAfter int

	Params      view.Parameters
	Lookbacks   []option
	PageSizes   []option
	ChartKinds  []link
	ChartScopes []link

	SortHref  string
	SortArrow string

	Rows       []view.Row
	PageNumber int
	TotalPages int
	PrevHref   string
	NextHref   string

	ChartSrc    string
	ChartPNGSrc string

	Note        template.HTML
	Version     string
	GeneratedAt string
}

func (b *PageBuilder) model(data PageData) pageModel {
	v := data.View
	p := v.Params

	m := pageModel{
		Title:        "COVID-19 Historical Data",
		WindowLabel:  view.WindowLabel(p.LookbackDays),
		LatestDate:   FormatLatest(v.LatestDate, v.HasLatest),
		Loading:      data.Loading,
		RefreshAfter: max(int(data.RefreshAfter.Round(time.Second)/time.Second), 1),
		Params:       p,
		Rows:         v.Rows,
		PageNumber:   p.PageNumber,
		TotalPages:   v.TotalPages,
		ChartSrc:     "/chart?" + p.Query().Encode(),
		ChartPNGSrc:  "/chart.png?" + p.Query().Encode(),
		Note:         b.note,
		Version:      data.Version,
		GeneratedAt:  data.GeneratedAt.UTC().Format("2006-01-02 15:04:05 UTC"),
	}

	for _, n := range view.LookbackOptions {
		m.Lookbacks = append(m.Lookbacks, option{Value: n, Label: view.WindowLabel(n), Selected: n == p.LookbackDays})
	}
	for _, n := range view.PageSizeOptions {
		m.PageSizes = append(m.PageSizes, option{Value: n, Label: strconv.Itoa(n), Selected: n == p.PageSize})
	}

	for _, kind := range []view.ChartKind{view.LineChart, view.BarChart} {
		q := p
		q.Chart = kind
		m.ChartKinds = append(m.ChartKinds, link{Label: chartKindLabel(kind), Href: href(q), Active: kind == p.Chart})
	}
	for _, scope := range []view.ChartScope{view.PageScope, view.AllScope} {
		q := p
		q.ChartScope = scope
		m.ChartScopes = append(m.ChartScopes, link{Label: chartScopeLabel(scope), Href: href(q), Active: scope == p.ChartScope})
	}

	sorted := p
	sorted.Sort = p.Sort.Toggle()
	m.SortHref = href(sorted)
	m.SortArrow = "↓"
	if p.Sort == view.Descending {
		m.SortArrow = "↑"
	}

	if v.HasPrevious() {
		prev := p
		prev.PageNumber = view.ClampPage(p.PageNumber-1, v.TotalPages)
		m.PrevHref = href(prev)
	}
	if v.HasNext() {
		next := p
		next.PageNumber = p.PageNumber + 1
		m.NextHref = href(next)
	}
	return m
}

func href(p view.Parameters) string {
	return "/?" + p.Query().Encode()
}

func chartKindLabel(k view.ChartKind) string {
	if k == view.BarChart {
		return "Bar"
	}
	return "Line"
}

func chartScopeLabel(s view.ChartScope) string {
	if s == view.AllScope {
		return "Whole window"
	}
	return "This page"
}
