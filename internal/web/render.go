package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/clinic-admin/patient-service/internal/auth"
)

//go:embed templates/*.html
var templatesFS embed.FS

const layoutFile = "templates/layout.html"

// PageData is what every template receives. Data is the page specific value
// passed by the handler.
type PageData struct {
	Authenticated bool
	Flashes       []auth.Flash
	Data          any
}

// Renderer executes the embedded page templates inside the shared layout.
type Renderer struct {
	pages map[string]*template.Template
}

var _ auth.Renderer = (*Renderer)(nil)

// NewRenderer parses every page under templates/ together with the layout.
// The page name is the file name without extension.
func NewRenderer() (*Renderer, error) {
	base, err := template.New("layout").ParseFS(templatesFS, layoutFile)
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	files, err := fs.Glob(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		if file == layoutFile {
			continue
		}

		t, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to clone layout: %w", err)
		}
		if _, err := t.ParseFS(templatesFS, file); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", file, err)
		}

		name := strings.TrimSuffix(path.Base(file), ".html")
		pages[name] = t
	}

	return &Renderer{pages: pages}, nil
}

// Render writes page with status. Pending flash notices are consumed here, so
// they show exactly once. Output is buffered and a template failure becomes a
// plain 500.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	t, ok := rd.pages[page]
	if !ok {
		slog.Error("unknown page template", slog.String("page", page))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	sess := auth.Current(r.Context())
	pd := PageData{
		Authenticated: sess.IsAuthenticated(),
		Flashes:       sess.Flashes(),
		Data:          data,
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", pd); err != nil {
		slog.Error("failed to render page",
			slog.String("page", page),
			slog.Any("error", err),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("failed to write page", slog.String("page", page), slog.Any("error", err))
	}
}
