package handler

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strconv"
	"strings"
	"time"

	"votedesk/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	layoutTemplate  = "templates/layout.html"
	dateTimeLayout  = "2006-01-02T15:04"
	displayLayout   = "02 Jan 2006 15:04"
	templatePattern = "templates/*.html"
)

var templateFuncs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Local().Format(displayLayout)
	},
	"dateInput": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Local().Format(dateTimeLayout)
	},
	"pct": func(f float64) string {
		return strconv.FormatFloat(f, 'f', 1, 64) + "%"
	},
	"has": func(list []string, s string) bool {
		for _, v := range list {
			if v == s {
				return true
			}
		}
		return false
	},
	"statuses": func() []domain.ElectionStatus {
		return domain.ElectionStatuses
	},
	"join": strings.Join,
}

// views holds one template set per page, each sharing the layout
type views struct {
	pages map[string]*template.Template
}

func loadViews() (*views, error) {
	files, err := fs.Glob(templateFS, templatePattern)
	if err != nil {
		return nil, err
	}
	base, err := template.New("votedesk").Funcs(templateFuncs).ParseFS(templateFS, layoutTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	v := &views{pages: make(map[string]*template.Template, len(files))}
	for _, f := range files {
		if f == layoutTemplate {
			continue
		}
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", f, err)
		}
		v.pages[strings.TrimSuffix(path.Base(f), ".html")] = t
	}
	return v, nil
}

func (v *views) render(w io.Writer, name string, data interface{}) error {
	t, ok := v.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
