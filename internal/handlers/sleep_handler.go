package handlers

import (
	"fmt"
	"log"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/nightowl/sleepsite/internal/middleware"
	"github.com/nightowl/sleepsite/internal/models"
	"github.com/nightowl/sleepsite/internal/services"
	"github.com/nightowl/sleepsite/internal/session"
)

type SleepHandler struct {
	*Renderer
	sleeps   services.SleepStore
	chart    *services.ChartService
	chartURL string
	sessions *session.Manager
}

func NewSleepHandler(renderer *Renderer, sleeps services.SleepStore, chart *services.ChartService, chartURL string, sessions *session.Manager) *SleepHandler {
	return &SleepHandler{
		Renderer: renderer,
		sleeps:   sleeps,
		chart:    chart,
		chartURL: chartURL,
		sessions: sessions,
	}
}

type sleepFormView struct {
	Form   url.Values
	Errors map[string]string
}

func (h *SleepHandler) New(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	if r.Method == http.MethodGet {
		h.Render(w, r, http.StatusOK, "sleepform", sleepFormView{Form: url.Values{}})
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission.", http.StatusBadRequest)
		return
	}

	req, errs := models.ParseSleepForm(r.PostForm)
	if errs == nil {
		errs = req.Validate()
	}
	if len(errs) > 0 {
		h.Render(w, r, http.StatusOK, "sleepform", sleepFormView{Form: r.PostForm, Errors: errs})
		return
	}

	sleep, err := h.sleeps.Create(user.ID, req)
	if err != nil {
		log.Printf("[NewSleep] create for %s: %v", user.ID, err)
		http.Error(w, "Failed to save sleep.", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/sleep/"+sleep.ID, http.StatusFound)
}

func (h *SleepHandler) Edit(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	sleepID := chi.URLParam(r, "sleepID")

	sleep, err := h.sleeps.GetByID(sleepID)
	if err != nil {
		if err == services.ErrSleepNotFound {
			http.NotFound(w, r)
			return
		}
		log.Printf("[EditSleep] load %s: %v", sleepID, err)
		http.Error(w, "Failed to load sleep.", http.StatusInternalServerError)
		return
	}

	if sleep.SleeperID != user.ID {
		h.sessions.Flash(w, r, "You can't edit a sleep you don't own.")
		http.Redirect(w, r, "/sleeps", http.StatusFound)
		return
	}

	if r.Method == http.MethodGet {
		form := url.Values{}
		form.Set("rating", fmt.Sprintf("%d", sleep.Rating))
		form.Set("feel", fmt.Sprintf("%d", sleep.Feel))
		form.Set("minstosleep", fmt.Sprintf("%d", sleep.MinsToSleep))
		form.Set("sleep_date", sleep.Start.Format("2006-01-02"))
		form.Set("starttime", sleep.Start.Format("15:04"))
		form.Set("wake_date", sleep.End.Format("2006-01-02"))
		form.Set("endtime", sleep.End.Format("15:04"))
		h.Render(w, r, http.StatusOK, "sleepform", sleepFormView{Form: form})
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission.", http.StatusBadRequest)
		return
	}

	req, errs := models.ParseSleepForm(r.PostForm)
	if errs == nil {
		errs = req.Validate()
	}
	if len(errs) > 0 {
		h.Render(w, r, http.StatusOK, "sleepform", sleepFormView{Form: r.PostForm, Errors: errs})
		return
	}

	if _, err := h.sleeps.Update(user.ID, sleepID, req); err != nil {
		if err == services.ErrUnauthorized {
			h.sessions.Flash(w, r, "You can't edit a sleep you don't own.")
			http.Redirect(w, r, "/sleeps", http.StatusFound)
			return
		}
		log.Printf("[EditSleep] update %s: %v", sleepID, err)
		http.Error(w, "Failed to update sleep.", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/sleep/"+sleepID, http.StatusFound)
}

type sleepView struct {
	Sleep *models.Sleep
}

func (h *SleepHandler) Show(w http.ResponseWriter, r *http.Request) {
	sleepID := chi.URLParam(r, "sleepID")

	sleep, err := h.sleeps.GetByID(sleepID)
	if err != nil {
		if err == services.ErrSleepNotFound {
			http.NotFound(w, r)
			return
		}
		log.Printf("[ShowSleep] load %s: %v", sleepID, err)
		http.Error(w, "Failed to load sleep.", http.StatusInternalServerError)
		return
	}

	h.Render(w, r, http.StatusOK, "sleep", sleepView{Sleep: sleep})
}

type sleepsView struct {
	Sleeps []*models.Sleep
}

func (h *SleepHandler) List(w http.ResponseWriter, r *http.Request) {
	sleeps, err := h.sleeps.ListAll()
	if err != nil {
		log.Printf("[ListSleeps] %v", err)
		http.Error(w, "Failed to load sleeps.", http.StatusInternalServerError)
		return
	}

	h.Render(w, r, http.StatusOK, "sleeps", sleepsView{Sleeps: sleeps})
}

// Delete removes any entry. The route intentionally performs no
// ownership check; any logged-in member can delete a night.
func (h *SleepHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sleepID := chi.URLParam(r, "sleepID")

	sleep, err := h.sleeps.Delete(sleepID)
	if err != nil {
		if err == services.ErrSleepNotFound {
			http.NotFound(w, r)
			return
		}
		log.Printf("[DeleteSleep] %s: %v", sleepID, err)
		http.Error(w, "Failed to delete sleep.", http.StatusInternalServerError)
		return
	}

	h.sessions.Flash(w, r, fmt.Sprintf("Sleep with date %s has been deleted.", sleep.SleepDate.Format("Jan 2, 2006")))
	http.Redirect(w, r, "/sleeps", http.StatusFound)
}

type sleepGraphView struct {
	ImageURL string
}

// Graph renders the shared scatter artifact and shows the page pointing
// at it.
func (h *SleepHandler) Graph(w http.ResponseWriter, r *http.Request) {
	sleeps, err := h.sleeps.ListAll()
	if err != nil {
		log.Printf("[SleepGraph] list: %v", err)
		http.Error(w, "Failed to load sleeps.", http.StatusInternalServerError)
		return
	}

	if err := h.chart.RenderScatter(sleeps); err != nil {
		if err == services.ErrNoSleepData {
			h.sessions.Flash(w, r, "No sleep data to graph yet.")
			http.Redirect(w, r, "/sleeps", http.StatusFound)
			return
		}
		log.Printf("[SleepGraph] render: %v", err)
		http.Error(w, "Failed to render graph.", http.StatusInternalServerError)
		return
	}

	h.Render(w, r, http.StatusOK, "sleepgraph", sleepGraphView{ImageURL: h.chartURL})
}
