package handler

import (
	"net/http"
	"strings"

	"github.com/MahanteshPatil1214/agency-platform/internal/backend"
	"github.com/MahanteshPatil1214/agency-platform/internal/models"
)

func (h *Handler) handleHome(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "home.html", map[string]any{
		"Services": models.ServiceTypes,
	})
}

func (h *Handler) handleAbout(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "about.html", nil)
}

func (h *Handler) handleServices(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "services.html", map[string]any{
		"Services": models.ServiceTypes,
	})
}

func (h *Handler) handleContact(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "contact.html", map[string]any{
		"Services": models.ServiceTypes,
		"Form":     models.ServiceRequest{},
	})
}

// handleContactSubmit files the public contact form as a NEW_CLIENT
// service request; an admin turns it into an account on approval.
func (h *Handler) handleContactSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	req := models.ServiceRequest{
		FullName:       strings.TrimSpace(r.FormValue("full_name")),
		Email:          strings.TrimSpace(r.FormValue("email")),
		CompanyName:    strings.TrimSpace(r.FormValue("company_name")),
		PhoneNumber:    strings.TrimSpace(r.FormValue("phone_number")),
		ServiceType:    r.FormValue("service_type"),
		BudgetRange:    r.FormValue("budget_range"),
		Timeline:       r.FormValue("timeline"),
		Description:    strings.TrimSpace(r.FormValue("description")),
		ReferenceLinks: strings.TrimSpace(r.FormValue("reference_links")),
		RequestType:    models.RequestTypeNewClient,
		Status:         models.RequestPending,
	}

	if req.FullName == "" || req.Email == "" || req.Description == "" {
		h.render(w, r, "contact.html", map[string]any{
			"Services": models.ServiceTypes,
			"Error":    "Name, email and a short description are required.",
			"Form":     req,
		})
		return
	}

	if err := h.api.SubmitRequest(r.Context(), "", req); err != nil {
		h.log.Errorw("submit contact request", "err", err)
		h.render(w, r, "contact.html", map[string]any{
			"Services": models.ServiceTypes,
			"Error":    backend.UserMessage(err),
			"Form":     req,
		})
		return
	}

	h.render(w, r, "contact.html", map[string]any{
		"Services": models.ServiceTypes,
		"Success":  true,
	})
}
