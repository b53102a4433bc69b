package worker

// email_worker.go
// Sends notification emails (welcome, plan request, plan decision) from
// QueueEmail through the SMTP circuit breaker.

import (
	"context"
	"encoding/json"
	"fmt"

	"printscrap/internal/infra"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
	HTML    string   `json:"html,omitempty"`
}

// Sender delivers a message. *infra.Mailer is the production implementation.
type Sender interface {
	Send(msg infra.Message) error
}

type EmailWorker struct {
	sender  Sender
	breaker *infra.CircuitBreaker
}

func NewEmailWorker(sender Sender, breaker *infra.CircuitBreaker) *EmailWorker {
	return &EmailWorker{sender: sender, breaker: breaker}
}

func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("%w: invalid email payload: %v", ErrPermanent, err)
	}
	if len(payload.To) == 0 {
		log.Warn().Str("subject", payload.Subject).Msg("email_worker: no recipients, skipping")
		return nil
	}
	return send(w.sender, w.breaker, infra.Message{
		To:      payload.To,
		Subject: payload.Subject,
		Text:    payload.Text,
		HTML:    payload.HTML,
	})
}

// send delivers msg through breaker. An unconfigured mailer drops the message
// so development setups without SMTP keep working.
func send(sender Sender, breaker *infra.CircuitBreaker, msg infra.Message) error {
	if c, ok := sender.(interface{ Configured() bool }); ok && !c.Configured() {
		log.Info().Strs("to", msg.To).Str("subject", msg.Subject).Msg("email_worker: SMTP not configured, message dropped")
		return nil
	}
	deliver := func() error { return sender.Send(msg) }
	var err error
	if breaker != nil {
		err = breaker.Execute(deliver)
	} else {
		err = deliver()
	}
	if err != nil {
		return err
	}
	log.Info().Strs("to", msg.To).Str("subject", msg.Subject).Msg("email_worker: sent")
	return nil
}
