package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MahanteshPatil1214/agency-platform/internal/backend"
	"github.com/MahanteshPatil1214/agency-platform/internal/middleware"
	"github.com/MahanteshPatil1214/agency-platform/internal/models"
)

func (h *Handler) handleClientDashboard(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())

	data := map[string]any{}
	stats, err := h.api.ClientStats(r.Context(), sess.Token)
	if err != nil {
		h.log.Errorw("client stats", "err", err)
		data["Error"] = "Failed to load data. Please try refreshing."
	}
	data["Stats"] = stats

	projects, err := h.api.MyProjects(r.Context(), sess.Token)
	if err != nil {
		h.log.Errorw("client projects", "err", err)
		data["Error"] = "Failed to load data. Please try refreshing."
	}
	data["Projects"] = projectViews(projects)

	h.renderDashboard(w, r, "client_dashboard.html", data)
}

func (h *Handler) handleClientProjects(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())

	projects, err := h.api.MyProjects(r.Context(), sess.Token)
	if err != nil {
		h.log.Errorw("list my projects", "err", err)
		h.renderDashboard(w, r, "client_projects.html", map[string]any{
			"Error": backend.UserMessage(err),
		})
		return
	}

	h.renderDashboard(w, r, "client_projects.html", map[string]any{
		"Projects": projectViews(projects),
	})
}

func (h *Handler) handleClientProjectView(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())

	project, err := h.api.GetProject(r.Context(), sess.Token, chi.URLParam(r, "id"))
	if err != nil {
		h.log.Errorw("get project", "err", err)
		http.NotFound(w, r)
		return
	}

	// Clients see their own projects only.
	if project.ClientID != sess.User.ID {
		http.NotFound(w, r)
		return
	}

	h.renderDashboard(w, r, "project_view.html", map[string]any{
		"Project":  project,
		"Progress": project.DerivedProgress(),
		"CanEdit":  false,
	})
}

func (h *Handler) handleMyRequests(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())

	data := map[string]any{
		"Services":  models.ServiceTypes,
		"Submitted": r.URL.Query().Get("submitted") == "1",
	}

	requests, err := h.api.MyRequests(r.Context(), sess.Token)
	if err != nil {
		h.log.Errorw("list my requests", "err", err)
		data["Error"] = backend.UserMessage(err)
	}
	data["Requests"] = requests

	projects, err := h.api.MyProjects(r.Context(), sess.Token)
	if err == nil {
		data["Projects"] = projects
	}

	h.renderDashboard(w, r, "my_requests.html", data)
}

// handleSubmitRequest files a NEW_PROJECT or PROJECT_UPDATE request on
// behalf of the signed-in client.
func (h *Handler) handleSubmitRequest(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	sess := middleware.SessionFromContext(r.Context())
	requestType := r.FormValue("request_type")
	if requestType != models.RequestTypeNewProject && requestType != models.RequestTypeProjectUpdate {
		http.Error(w, "Invalid request type", http.StatusBadRequest)
		return
	}

	req := models.ServiceRequest{
		FullName:    sess.User.FullName,
		Email:       sess.User.Email,
		CompanyName: sess.User.CompanyName,
		ClientID:    sess.User.ID,
		ServiceType: r.FormValue("service_type"),
		BudgetRange: r.FormValue("budget_range"),
		Timeline:    r.FormValue("timeline"),
		Description: strings.TrimSpace(r.FormValue("description")),
		ProjectName: strings.TrimSpace(r.FormValue("project_name")),
		ProjectID:   r.FormValue("project_id"),
		Priority:    r.FormValue("priority"),
		RequestType: requestType,
		Status:      models.RequestPending,
	}

	if req.Description == "" {
		h.renderDashboard(w, r, "my_requests.html", map[string]any{
			"Services": models.ServiceTypes,
			"Error":    "A short description is required.",
		})
		return
	}

	if err := h.api.SubmitRequest(r.Context(), sess.Token, req); err != nil {
		h.log.Errorw("submit request", "type", requestType, "err", err)
		h.renderDashboard(w, r, "my_requests.html", map[string]any{
			"Services": models.ServiceTypes,
			"Error":    backend.UserMessage(err),
		})
		return
	}

	http.Redirect(w, r, "/dashboard/client/requests?submitted=1", http.StatusFound)
}

// projectView pairs a project with its derived completion so templates
// never compute progress themselves.
type projectView struct {
	models.Project
	DerivedPct int
}

func projectViews(projects []models.Project) []projectView {
	views := make([]projectView, 0, len(projects))
	for _, p := range projects {
		views = append(views, projectView{Project: p, DerivedPct: p.DerivedProgress()})
	}
	return views
}
