// Package receiver implements the inbound webhook ingestion endpoint.
//
// Requests are parsed, authorized, and the raw event envelope is published
// unmodified to the webhook topic. Downstream consumers perform all
// interpretation of the payload.
package receiver

import (
	"io"
	"net/http"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/brysontyrrell/voltron/internal/auth"
	"github.com/brysontyrrell/voltron/internal/ids"
	"github.com/brysontyrrell/voltron/internal/jsoncodec"
	"github.com/brysontyrrell/voltron/internal/logging"
)

// maxBodyBytes caps the size of an inbound webhook payload.
const maxBodyBytes = 1 << 20

// Handler accepts webhook deliveries and forwards them to the pub/sub layer.
type Handler struct {
	publisher message.Publisher
	topic     string
	policies  auth.Chain
	logger    logging.ServiceLogger
}

// NewHandler creates a webhook ingestion handler publishing to topic.
func NewHandler(publisher message.Publisher, topic string, policies auth.Chain, logger logging.ServiceLogger) *Handler {
	return &Handler{
		publisher: publisher,
		topic:     topic,
		policies:  policies,
		logger:    logger,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil || !jsoncodec.Valid(body) {
		h.logger.Info("rejected request without JSON content", logging.LogFields{
			"remote_addr": r.RemoteAddr,
		})
		respond(w, http.StatusBadRequest, "Bad Request: No JSON content found")
		return
	}

	if !h.policies.Authorize(r) {
		h.logger.Info("rejected unauthorized request", logging.LogFields{
			"remote_addr": r.RemoteAddr,
		})
		respond(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	msg := message.NewMessage(ids.CreateULID(), body)
	if err := h.publisher.Publish(h.topic, msg); err != nil {
		h.logger.Error("failed to publish webhook event", err, logging.LogFields{
			"topic": h.topic,
		})
		respond(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	h.logger.Debug("published webhook event", logging.LogFields{
		"topic":      h.topic,
		"message_id": msg.UUID,
	})
	respond(w, http.StatusCreated, "Success")
}

func respond(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = jsoncodec.Encode(w, map[string]string{"message": msg})
}
