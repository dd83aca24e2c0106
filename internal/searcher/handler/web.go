package handler

import (
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/searcher/parser"
	apperrors "github.com/Adithya-Monish-Kumar-K/diskindex/pkg/errors"
)

var pageTemplate = template.Must(template.New("page").Parse(`<html><head><title>diskindex</title></head>
<body>
<center style="font-size:300%;">diskindex</center>
<center>
<form action="/query" method="get">
<input type="text" size=30 name="terms" value="{{.Terms}}" />
<input type="submit" value="Search" />
</form>
</center><p>
{{- if .Searched}}
<p><br>
{{- if .Result.Results}}
{{if eq .Result.TotalHits 1}}1 result{{else}}{{.Result.TotalHits}} results{{end}} found for <b>{{.Terms}}</b>
<p>
<ul>
{{- range .Result.Results}}
 <li> <a href="/static/{{.Document}}">{{.Document}}</a> [{{.Rank}}]<br>
{{- end}}
</ul>
{{- else}}
No results found for <b>{{.Terms}}</b>
<p>
{{- end}}
{{- end}}
</body>
</html>
`))

type page struct {
	Terms    string
	Searched bool
	Result   *executor.SearchResult
}

// Home renders the empty search form.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, page{})
}

// Query renders the results for GET /query?terms=....
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	terms := r.URL.Query().Get("terms")
	plan := parser.Parse(terms)
	if plan.Empty() {
		h.render(w, http.StatusOK, page{Terms: terms})
		return
	}
	result, err := h.run(r.Context(), plan, h.maxResults)
	if err != nil {
		status := apperrors.HTTPStatusCode(err)
		http.Error(w, http.StatusText(status), status)
		return
	}
	h.render(w, http.StatusOK, page{Terms: terms, Searched: true, Result: result})
}

// Static serves /static/<name> from the static directory. Names are
// resolved relative to it and may not leave it.
func (h *Handler) Static(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/static/")
	path, ok := h.resolveStatic(name)
	if !ok {
		h.notFound(w, name)
		return
	}
	f, err := os.Open(path)
	if err != nil {
		h.notFound(w, name)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		h.notFound(w, name)
		return
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

func (h *Handler) resolveStatic(name string) (string, bool) {
	base, err := filepath.Abs(h.staticDir)
	if err != nil {
		return "", false
	}
	path := filepath.Join(base, filepath.FromSlash(name))
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return path, true
}

var notFoundTemplate = template.Must(template.New("notfound").Parse(
	`<html><body>Couldn't find file "{{.}}"</body></html>` + "\n"))

func (h *Handler) notFound(w http.ResponseWriter, name string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	notFoundTemplate.Execute(w, name)
}

func (h *Handler) render(w http.ResponseWriter, status int, p page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, p); err != nil {
		h.logger.Error("failed to render page", "error", err)
	}
}
