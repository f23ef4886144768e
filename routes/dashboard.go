package routes

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/voicebridge/apiv1/middlewares"
	"github.com/voicebridge/apiv1/models"
	"github.com/voicebridge/apiv1/ui"
	"github.com/voicebridge/apiv1/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type dashboardPage struct {
	Slug  string
	Title string
}

var dashboardPages = []dashboardPage{
	{Slug: "", Title: "Dashboard"},
	{Slug: "bridge", Title: "Speech Bridge"},
	{Slug: "therapy", Title: "Speech Therapy"},
	{Slug: "kids", Title: "Kids Corner"},
	{Slug: "guides", Title: "Phoneme Guides"},
	{Slug: "settings", Title: "Settings"},
}

type navLink struct {
	Path   string
	Label  string
	Active bool
}

type dashboardView struct {
	Title string
	User  models.Profile
	Nav   []navLink
}

func DashboardRouter(r *mux.Router, h *Handler) {
	r.HandleFunc("/login", h.LoginPage).Methods(http.MethodGet)
	r.HandleFunc("/dashboard", h.Dashboard).Methods(http.MethodGet)
	r.HandleFunc("/dashboard/{page}", h.Dashboard).Methods(http.MethodGet)
}

func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "login.html", nil)
}

// Dashboard renders a protected page. The gate starts loading, resolves the
// session from the bearer header or cookie, and redirects to the login page
// when there is none.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["page"]
	page, ok := findPage(slug)
	if !ok {
		http.NotFound(w, r)
		return
	}

	gate := ui.NewGate(ui.NavigatorFunc(func(path string) {
		http.Redirect(w, r, path, http.StatusSeeOther)
	}), "/login")

	user, authenticated := h.sessionUser(r)
	if !authenticated {
		gate.Update(ui.StateUnauthenticated)
		return
	}
	gate.Update(ui.StateAuthenticated)
	if !gate.ShowContent() {
		return
	}

	nav := make([]navLink, 0, len(dashboardPages))
	for _, p := range dashboardPages {
		path := "/dashboard"
		if p.Slug != "" {
			path += "/" + p.Slug
		}
		nav = append(nav, navLink{Path: path, Label: p.Title, Active: p.Slug == page.Slug})
	}
	h.render(w, r, "dashboard.html", dashboardView{Title: page.Title, User: user.Profile(), Nav: nav})
}

func findPage(slug string) (dashboardPage, bool) {
	for _, p := range dashboardPages {
		if p.Slug == slug {
			return p, true
		}
	}
	return dashboardPage{}, false
}

func (h *Handler) sessionUser(r *http.Request) (models.User, bool) {
	token, err := middlewares.TokenFromRequest(r)
	if err != nil {
		return models.User{}, false
	}
	claims, err := h.tokens.VerifyAccessToken(token)
	if err != nil {
		return models.User{}, false
	}
	user, err := h.users.GetUserByID(r.Context(), claims.Subject)
	if err != nil {
		return models.User{}, false
	}
	return user, true
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		h.log.ErrorContext(r.Context(), "render failed",
			slog.String("op", "routes.render"),
			slog.String("template", name),
			utils.Err(err),
		)
	}
}
