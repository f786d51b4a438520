// Package server exposes the bot over HTTP: a Twilio-style webhook for
// inbound messages and a ping endpoint for liveness checks.
package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"aulinha/internal/engine"
)

// Handler routes webhook requests into the engine.
type Handler struct {
	engine *engine.Engine
}

func New(e *engine.Engine) *Handler {
	return &Handler{engine: e}
}

// Router builds the chi mux.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Post("/bot", h.handleBot)
	r.Get("/admin/ping", h.handlePing)
	return r
}

// jsonMessage is the non-Twilio request body accepted as a fallback.
type jsonMessage struct {
	SenderID    string `json:"sender_id"`
	Body        string `json:"body"`
	Attachments []struct {
		ContentType string `json:"content_type"`
		URL         string `json:"url"`
		Data        []byte `json:"data"`
	} `json:"attachments"`
}

func (h *Handler) handleBot(w http.ResponseWriter, r *http.Request) {
	msg, err := parseInbound(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	reply, err := h.engine.HandleMessage(r.Context(), msg)
	if err != nil {
		slog.Error("message handling failed", "sender", msg.SenderID, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, reply)
}

// parseInbound accepts either Twilio form fields (From, Body, NumMedia,
// MediaUrl0, MediaContentType0) or the JSON fallback body.
func parseInbound(r *http.Request) (engine.InboundMessage, error) {
	if r.Header.Get("Content-Type") == "application/json" {
		var jm jsonMessage
		if err := json.NewDecoder(r.Body).Decode(&jm); err != nil {
			return engine.InboundMessage{}, fmt.Errorf("bad json body: %w", err)
		}
		if jm.SenderID == "" {
			return engine.InboundMessage{}, fmt.Errorf("sender_id is required")
		}
		msg := engine.InboundMessage{SenderID: jm.SenderID, Body: jm.Body}
		for _, a := range jm.Attachments {
			msg.Attachments = append(msg.Attachments, engine.Attachment{
				ContentType: a.ContentType,
				URL:         a.URL,
				Data:        a.Data,
			})
		}
		return msg, nil
	}

	if err := r.ParseForm(); err != nil {
		return engine.InboundMessage{}, fmt.Errorf("bad form body: %w", err)
	}
	from := r.PostFormValue("From")
	if from == "" {
		return engine.InboundMessage{}, fmt.Errorf("From is required")
	}
	msg := engine.InboundMessage{
		SenderID: normalizeSender(from),
		Body:     r.PostFormValue("Body"),
	}
	if n, _ := strconv.Atoi(r.PostFormValue("NumMedia")); n > 0 {
		// Media bytes are fetched out of band; the webhook carries the
		// content type and download location.
		msg.Attachments = append(msg.Attachments, engine.Attachment{
			ContentType: r.PostFormValue("MediaContentType0"),
			URL:         r.PostFormValue("MediaUrl0"),
		})
	}
	return msg, nil
}

// normalizeSender strips the channel prefix from ids like "whatsapp:+5551...".
func normalizeSender(from string) string {
	const prefix = "whatsapp:"
	if len(from) > len(prefix) && from[:len(prefix)] == prefix {
		return from[len(prefix):]
	}
	return from
}

func (h *Handler) handlePing(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
