package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MahanteshPatil1214/agency-platform/internal/backend"
	"github.com/MahanteshPatil1214/agency-platform/internal/inbox"
	"github.com/MahanteshPatil1214/agency-platform/internal/middleware"
	"github.com/MahanteshPatil1214/agency-platform/internal/models"
)

// handleMessages renders the inbox: contacts are fetched first, each
// conversation is pulled and concatenated, and the flat list is grouped
// into threads. Served under both dashboards.
func (h *Handler) handleMessages(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())

	contacts, err := h.api.Contacts(r.Context(), sess.Token)
	if err != nil {
		h.log.Errorw("list contacts", "err", err)
		h.renderDashboard(w, r, "messages.html", map[string]any{
			"Error": backend.UserMessage(err),
		})
		return
	}

	var all []models.Message
	for _, contact := range contacts {
		msgs, err := h.api.Conversation(r.Context(), sess.Token, contact.ID)
		if err != nil {
			h.log.Warnw("fetch conversation", "contact", contact.ID, "err", err)
			continue
		}
		all = append(all, msgs...)
	}

	threads := inbox.BuildThreads(all, sess.User.ID)

	var selected *inbox.Thread
	if want := r.URL.Query().Get("contact"); want != "" {
		subject := r.URL.Query().Get("subject")
		for i := range threads {
			if threads[i].CounterpartID == want && (subject == "" || threads[i].Subject == subject) {
				selected = &threads[i]
				break
			}
		}
	}

	h.renderDashboard(w, r, "messages.html", map[string]any{
		"Contacts":     contacts,
		"ContactNames": contactNames(contacts),
		"Threads":      threads,
		"Selected":     selected,
		"Sent":         r.URL.Query().Get("sent") == "1",
		"SelfID":       sess.User.ID,
	})
}

func contactNames(contacts []models.User) map[string]string {
	names := make(map[string]string, len(contacts))
	for _, c := range contacts {
		name := c.FullName
		if name == "" {
			name = c.Username
		}
		names[c.ID] = name
	}
	return names
}

func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	sess := middleware.SessionFromContext(r.Context())
	msg := backend.OutgoingMessage{
		ReceiverID: r.FormValue("receiver_id"),
		Subject:    strings.TrimSpace(r.FormValue("subject")),
		Priority:   r.FormValue("priority"),
		Content:    strings.TrimSpace(r.FormValue("content")),
	}
	if msg.Priority == "" {
		msg.Priority = models.PriorityNormal
	}

	if msg.ReceiverID == "" || msg.Content == "" {
		http.Error(w, "Recipient and message body are required", http.StatusBadRequest)
		return
	}
	// Self-addressed messages have no sensible thread; reject at the
	// send boundary.
	if msg.ReceiverID == sess.User.ID {
		http.Error(w, "Cannot message yourself", http.StatusBadRequest)
		return
	}

	if _, err := h.api.SendMessage(r.Context(), sess.Token, msg); err != nil {
		h.log.Errorw("send message", "receiver", msg.ReceiverID, "err", err)
		http.Error(w, backend.UserMessage(err), http.StatusBadGateway)
		return
	}

	dest := fmt.Sprintf("%s/messages?sent=1&contact=%s", dashboardPath(sess.User.Roles), msg.ReceiverID)
	if msg.Subject != "" {
		dest += "&subject=" + url.QueryEscape(msg.Subject)
	}
	http.Redirect(w, r, dest, http.StatusFound)
}

// handleMessageStream keeps one open conversation fresh over SSE. The
// watcher is bound to the request context: when the browser closes the
// EventSource (contact switch, page unload) the poll loop is cancelled,
// not merely superseded.
func (h *Handler) handleMessageStream(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())
	contactID := chi.URLParam(r, "contactID")

	fl, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	watcher := inbox.NewWatcher(h.api, sess.Token, contactID, h.pollInterval, h.log)
	for msgs := range watcher.Run(r.Context()) {
		threads := inbox.BuildThreads(msgs, sess.User.ID)
		payload, err := json.Marshal(threads)
		if err != nil {
			h.log.Errorw("encode snapshot", "err", err)
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", payload)
		fl.Flush()
	}
}
