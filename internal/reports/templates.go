package reports

import (
	"embed"
	"fmt"
)

//go:embed templates/dashboard.html templates/styles.css
var templateFS embed.FS

// TemplateLoader reads the page template and stylesheet compiled into the
// binary.
type TemplateLoader struct{}

// NewTemplateLoader creates a new template loader
func NewTemplateLoader() *TemplateLoader {
	return &TemplateLoader{}
}

// LoadHTMLTemplate returns the dashboard page template.
func (t *TemplateLoader) LoadHTMLTemplate() (string, error) {
	content, err := templateFS.ReadFile("templates/dashboard.html")
	if err != nil {
		return "", fmt.Errorf("failed to read dashboard template: %w", err)
	}
	return string(content), nil
}

// LoadCSSStyles returns the dashboard stylesheet.
func (t *TemplateLoader) LoadCSSStyles() ([]byte, error) {
	content, err := templateFS.ReadFile("templates/styles.css")
	if err != nil {
		return nil, fmt.Errorf("failed to read stylesheet: %w", err)
	}
	return content, nil
}
