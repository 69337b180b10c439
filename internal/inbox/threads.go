// Package inbox turns the flat message lists the backend serves into
// the conversation threads the messaging views render, and owns the
// poll loop that keeps an open conversation fresh.
package inbox

import (
	"sort"
	"time"

	"github.com/MahanteshPatil1214/agency-platform/internal/models"
)

// NoSubject labels threads whose messages carry no subject.
const NoSubject = "(No Subject)"

// Thread is a client-derived conversation: every message exchanged with
// one counterpart under one subject. The backend has no thread entity.
type Thread struct {
	CounterpartID string
	Subject       string
	Priority      string
	Messages      []models.Message
	LastMessage   models.Message
	UpdatedAt     time.Time
}

type threadKey struct {
	counterpart string
	subject     string
}

// BuildThreads groups a flat message collection into threads keyed by
// (counterpart, subject) and orders them most-recent first.
//
// Duplicate ids collapse to the last-seen copy; the per-contact fetch
// strategy can hand the same message back twice. Thread priority follows
// the most recent message: a later message only takes over on a strictly
// greater timestamp, so exact ties keep the earliest-processed value.
// A self-addressed message (sender == receiver == selfID) files under
// the sender id.
func BuildThreads(msgs []models.Message, selfID string) []Thread {
	byID := make(map[string]models.Message, len(msgs))
	idOrder := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if _, seen := byID[m.ID]; !seen {
			idOrder = append(idOrder, m.ID)
		}
		byID[m.ID] = m
	}

	threads := make(map[threadKey]*Thread)
	keyOrder := make([]threadKey, 0)
	for _, id := range idOrder {
		m := byID[id]

		counterpart := m.SenderID
		if m.SenderID == selfID && m.ReceiverID != selfID {
			counterpart = m.ReceiverID
		}
		subject := m.Subject
		if subject == "" {
			subject = NoSubject
		}

		key := threadKey{counterpart: counterpart, subject: subject}
		t, ok := threads[key]
		if !ok {
			t = &Thread{CounterpartID: counterpart, Subject: subject}
			threads[key] = t
			keyOrder = append(keyOrder, key)
		}

		t.Messages = append(t.Messages, m)
		if len(t.Messages) == 1 || m.CreatedAt.After(t.UpdatedAt) {
			t.UpdatedAt = m.CreatedAt
			t.LastMessage = m
			t.Priority = m.Priority
			if t.Priority == "" {
				t.Priority = models.PriorityNormal
			}
		}
	}

	out := make([]Thread, 0, len(keyOrder))
	for _, key := range keyOrder {
		t := threads[key]
		sort.SliceStable(t.Messages, func(i, j int) bool {
			return t.Messages[i].CreatedAt.Before(t.Messages[j].CreatedAt)
		})
		out = append(out, *t)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}
