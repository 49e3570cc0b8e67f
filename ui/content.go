package ui

import (
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Content blocks rendered from content/*.md, keyed by file name without extension
const (
	contentIntro          = "intro"
	contentDataNotes      = "data_notes"
	contentSignificance   = "clinical_significance"
	contentHighRisk       = "recommendations_high"
	contentLowRisk        = "recommendations_low"
	contentDisclaimer     = "disclaimer"
	contentPredictorIntro = "predictor_intro"
)

var requiredContent = []string{
	contentIntro, contentDataNotes, contentSignificance,
	contentHighRisk, contentLowRisk, contentDisclaimer, contentPredictorIntro,
}

// renderMarkdown converts one markdown document to HTML. The documents are
// embedded at build time, so their HTML is trusted.
func renderMarkdown(md []byte) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	r := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	return template.HTML(markdown.ToHTML(md, p, r))
}

// loadContent renders every markdown file under dir
func loadContent(fsys fs.FS, dir string) (map[string]template.HTML, error) {
	files, err := fs.Glob(fsys, path.Join(dir, "*.md"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob content: %w", err)
	}
	out := make(map[string]template.HTML, len(files))
	for _, file := range files {
		raw, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("failed to read content %s: %w", file, err)
		}
		out[strings.TrimSuffix(path.Base(file), ".md")] = renderMarkdown(raw)
	}
	for _, name := range requiredContent {
		if _, ok := out[name]; !ok {
			return nil, fmt.Errorf("content %s.md is missing", name)
		}
	}
	return out, nil
}
