package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MahanteshPatil1214/agency-platform/internal/backend"
	"github.com/MahanteshPatil1214/agency-platform/internal/middleware"
	"github.com/MahanteshPatil1214/agency-platform/internal/models"
)

func (h *Handler) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())

	data := map[string]any{
		"Approved": r.URL.Query().Get("approved") == "1",
		"Rejected": r.URL.Query().Get("rejected") == "1",
	}

	stats, err := h.api.AdminStats(r.Context(), sess.Token)
	if err != nil {
		h.log.Errorw("admin stats", "err", err)
		data["Error"] = "Failed to load data. Please try refreshing."
	}
	data["Stats"] = stats

	requests, err := h.api.AllRequests(r.Context(), sess.Token)
	if err != nil {
		h.log.Errorw("admin list requests", "err", err)
		data["Error"] = "Failed to load data. Please try refreshing."
	}
	var pending []models.ServiceRequest
	for _, req := range requests {
		if req.Status == models.RequestPending {
			pending = append(pending, req)
		}
	}
	data["Requests"] = requests
	data["Pending"] = pending

	h.renderDashboard(w, r, "admin_dashboard.html", data)
}

// handleApproveRequest approves a pending service request. A NEW_CLIENT
// request first creates the client account from the admin-supplied
// password, then the request is marked APPROVED; other types only flip
// the status.
func (h *Handler) handleApproveRequest(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	sess := middleware.SessionFromContext(r.Context())
	id := chi.URLParam(r, "id")

	requests, err := h.api.AllRequests(r.Context(), sess.Token)
	if err != nil {
		h.log.Errorw("load requests for approval", "err", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	var req *models.ServiceRequest
	for i := range requests {
		if requests[i].ID == id {
			req = &requests[i]
			break
		}
	}
	if req == nil {
		http.NotFound(w, r)
		return
	}

	if req.RequestType == models.RequestTypeNewClient {
		password := r.FormValue("password")
		confirm := r.FormValue("confirm_password")
		if password == "" || password != confirm {
			h.renderDashboard(w, r, "admin_dashboard.html", map[string]any{
				"Error": "Passwords do not match.",
			})
			return
		}

		err := h.api.Register(r.Context(), backend.Registration{
			Username:    req.Email,
			Email:       req.Email,
			FullName:    req.FullName,
			CompanyName: req.CompanyName,
			Password:    password,
			Roles:       []string{"client"},
		})
		if err != nil {
			h.log.Errorw("create client from request", "request", id, "err", err)
			h.renderDashboard(w, r, "admin_dashboard.html", map[string]any{
				"Error": backend.UserMessage(err),
			})
			return
		}
	}

	if err := h.api.UpdateRequestStatus(r.Context(), sess.Token, id, models.RequestApproved); err != nil {
		h.log.Errorw("approve request", "request", id, "err", err)
		h.renderDashboard(w, r, "admin_dashboard.html", map[string]any{
			"Error": backend.UserMessage(err),
		})
		return
	}

	http.Redirect(w, r, "/dashboard/admin?approved=1", http.StatusFound)
}

func (h *Handler) handleRejectRequest(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.api.UpdateRequestStatus(r.Context(), sess.Token, id, models.RequestRejected); err != nil {
		h.log.Errorw("reject request", "request", id, "err", err)
		h.renderDashboard(w, r, "admin_dashboard.html", map[string]any{
			"Error": backend.UserMessage(err),
		})
		return
	}

	http.Redirect(w, r, "/dashboard/admin?rejected=1", http.StatusFound)
}

func (h *Handler) handleAdminClients(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())

	clients, err := h.api.ListClients(r.Context(), sess.Token)
	if err != nil {
		h.log.Errorw("list clients", "err", err)
		h.renderDashboard(w, r, "admin_clients.html", map[string]any{
			"Error":  backend.UserMessage(err),
			"Search": r.URL.Query().Get("search"),
		})
		return
	}

	search := strings.ToLower(r.URL.Query().Get("search"))
	if search != "" {
		filtered := clients[:0]
		for _, c := range clients {
			if strings.Contains(strings.ToLower(c.FullName), search) ||
				strings.Contains(strings.ToLower(c.Email), search) ||
				strings.Contains(strings.ToLower(c.CompanyName), search) {
				filtered = append(filtered, c)
			}
		}
		clients = filtered
	}

	h.renderDashboard(w, r, "admin_clients.html", map[string]any{
		"Clients": clients,
		"Search":  r.URL.Query().Get("search"),
	})
}

func (h *Handler) handleAdminProjects(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())

	data := map[string]any{
		"Created": r.URL.Query().Get("created") == "1",
	}

	projects, err := h.api.AllProjects(r.Context(), sess.Token)
	if err != nil {
		h.log.Errorw("list all projects", "err", err)
		data["Error"] = backend.UserMessage(err)
	}

	status := r.URL.Query().Get("status")
	if status != "" {
		filtered := projects[:0]
		for _, p := range projects {
			if p.Status == status {
				filtered = append(filtered, p)
			}
		}
		projects = filtered
	}
	data["Projects"] = projectViews(projects)
	data["StatusFilter"] = status

	clients, err := h.api.ListClients(r.Context(), sess.Token)
	if err == nil {
		data["Clients"] = clients
	}
	data["Services"] = models.ServiceTypes

	h.renderDashboard(w, r, "admin_projects.html", data)
}

func (h *Handler) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	sess := middleware.SessionFromContext(r.Context())

	project := models.Project{
		ClientID:    r.FormValue("client_id"),
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Status:      r.FormValue("status"),
		ServiceType: r.FormValue("service_type"),
		Priority:    r.FormValue("priority"),
	}
	if project.Status == "" {
		project.Status = models.ProjectActive
	}
	if start := r.FormValue("start_date"); start != "" {
		if t, err := time.Parse("2006-01-02", start); err == nil {
			project.StartDate = &t
		}
	}
	if end := r.FormValue("end_date"); end != "" {
		if t, err := time.Parse("2006-01-02", end); err == nil {
			project.EndDate = &t
		}
	}

	if project.ClientID == "" || project.Name == "" {
		h.renderDashboard(w, r, "admin_projects.html", map[string]any{
			"Error": "Client and project name are required.",
		})
		return
	}

	if _, err := h.api.CreateProject(r.Context(), sess.Token, project); err != nil {
		h.log.Errorw("create project", "err", err)
		h.renderDashboard(w, r, "admin_projects.html", map[string]any{
			"Error": backend.UserMessage(err),
		})
		return
	}

	http.Redirect(w, r, "/dashboard/admin/projects?created=1", http.StatusFound)
}

func (h *Handler) handleAdminProjectView(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())

	project, err := h.api.GetProject(r.Context(), sess.Token, chi.URLParam(r, "id"))
	if err != nil {
		h.log.Errorw("get project", "err", err)
		http.NotFound(w, r)
		return
	}

	h.renderDashboard(w, r, "project_view.html", map[string]any{
		"Project":  project,
		"Progress": project.DerivedProgress(),
		"CanEdit":  true,
	})
}

func (h *Handler) handleAddTask(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	sess := middleware.SessionFromContext(r.Context())
	projectID := chi.URLParam(r, "id")

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		http.Redirect(w, r, "/dashboard/admin/projects/"+projectID, http.StatusFound)
		return
	}

	task := models.Task{
		Title:  title,
		Status: models.TaskPending,
	}
	if _, err := h.api.AddTask(r.Context(), sess.Token, projectID, task); err != nil {
		h.log.Errorw("add task", "project", projectID, "err", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/dashboard/admin/projects/"+projectID, http.StatusFound)
}

// handleToggleTask flips a task between Completed and Pending. Progress
// is re-derived from the returned task list on the next render, never
// cached.
func (h *Handler) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	sess := middleware.SessionFromContext(r.Context())
	projectID := chi.URLParam(r, "id")
	taskID := chi.URLParam(r, "taskID")

	status := models.TaskCompleted
	if r.FormValue("current_status") == models.TaskCompleted {
		status = models.TaskPending
	}
	task := models.Task{
		Status:    status,
		Completed: status == models.TaskCompleted,
	}

	if _, err := h.api.UpdateTask(r.Context(), sess.Token, projectID, taskID, task); err != nil {
		h.log.Errorw("update task", "project", projectID, "task", taskID, "err", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/dashboard/admin/projects/"+projectID, http.StatusFound)
}
