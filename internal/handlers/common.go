package handlers

import (
	"embed"
	"encoding/base64"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/nightowl/sleepsite/internal/middleware"
	"github.com/nightowl/sleepsite/internal/models"
	"github.com/nightowl/sleepsite/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"base64encode": func(b []byte) string {
		return base64.StdEncoding.EncodeToString(b)
	},
	"fmtDate": func(t time.Time) string {
		return t.Format("Jan 2, 2006")
	},
	"fmtTime": func(t time.Time) string {
		return t.Format("3:04 PM")
	},
	"fmtDateTime": func(t time.Time) string {
		return t.Format("Jan 2, 2006 3:04 PM")
	},
	"dateValue": func(t time.Time) string {
		return t.Format("2006-01-02")
	},
	"timeValue": func(t time.Time) string {
		return t.Format("15:04")
	},
	"ratings": func() []string {
		return []string{"1", "2", "3", "4", "5"}
	},
}

var pages = map[string]*template.Template{}

func init() {
	names := []string{
		"home", "overview",
		"profile", "profileform", "consentform",
		"sleep", "sleeps", "sleepform", "sleepgraph",
		"blog", "blogs", "blogform", "commentform",
	}
	for _, name := range names {
		pages[name] = template.Must(
			template.New("base.html").Funcs(templateFuncs).ParseFS(
				templateFS,
				"templates/base.html",
				"templates/"+name+".html",
			),
		)
	}
}

// view is the envelope every template receives.
type view struct {
	User    *models.User
	Flashes []string
	Data    interface{}
}

type Renderer struct {
	sessions *session.Manager
}

func NewRenderer(sessions *session.Manager) *Renderer {
	return &Renderer{sessions: sessions}
}

func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, page string, data interface{}) {
	tmpl, ok := pages[page]
	if !ok {
		log.Printf("[Render] unknown template %q", page)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	v := view{
		User:    middleware.GetUser(r.Context()),
		Flashes: rd.sessions.Flashes(w, r),
		Data:    data,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "base.html", v); err != nil {
		log.Printf("[Render] template %q: %v", page, err)
	}
}
