package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"printscrap/internal/model"
	"printscrap/internal/worker"

	"github.com/rs/zerolog/log"
)

// Notifier turns domain events into email and invoice jobs. A nil *Notifier,
// or one without a dispatcher, drops every event; notifications are
// best-effort and never fail the request that caused them.
type Notifier struct {
	dispatcher *worker.Dispatcher
	adminEmail string
	loc        *time.Location
}

func NewNotifier(dispatcher *worker.Dispatcher, adminEmail string, loc *time.Location) *Notifier {
	if loc == nil {
		loc = time.UTC
	}
	return &Notifier{dispatcher: dispatcher, adminEmail: adminEmail, loc: loc}
}

var mailLayout = template.Must(template.New("mail").Parse(`<!doctype html>
<html><body style="font-family:Arial,sans-serif;color:#222">
<h2 style="color:#1f6f43">PrintScrap</h2>
<p>Hello {{.Name}},</p>
{{range .Lines}}<p>{{.}}</p>
{{end}}<p style="color:#888;font-size:12px">This is an automated message.</p>
</body></html>`))

type mailView struct {
	Name  string
	Lines []string
}

func (n *Notifier) email(ctx context.Context, to []string, subject, name string, lines ...string) {
	if n == nil || n.dispatcher == nil || len(to) == 0 {
		return
	}
	var html bytes.Buffer
	if err := mailLayout.Execute(&html, mailView{Name: name, Lines: lines}); err != nil {
		log.Error().Err(err).Str("subject", subject).Msg("notifier: render failed")
		return
	}
	text := "Hello " + name + ",\n\n"
	for _, l := range lines {
		text += l + "\n\n"
	}
	err := n.dispatcher.EnqueueEmail(ctx, worker.EmailJobPayload{
		To: to, Subject: subject, Text: text, HTML: html.String(),
	})
	if err != nil {
		log.Error().Err(err).Str("subject", subject).Msg("notifier: enqueue failed")
	}
}

func (n *Notifier) day(t time.Time) string {
	return t.In(n.loc).Format("02 Jan 2006 15:04")
}

// Welcome greets a newly registered client and states the trial window.
func (n *Notifier) Welcome(ctx context.Context, u *model.User, sub *model.Subscription) {
	if n == nil {
		return
	}
	n.email(ctx, []string{u.Email}, "Welcome to PrintScrap", u.Name,
		fmt.Sprintf("Your account for %s is ready.", u.CompanyName),
		fmt.Sprintf("Your free trial runs until %s. Request a plan from the Subscription page to keep using PrintScrap after that.", n.day(sub.EndDate)),
	)
}

// PlanRequested tells the platform admin a client asked for a plan.
func (n *Notifier) PlanRequested(ctx context.Context, u *model.User, plan *model.Plan) {
	if n == nil || n.adminEmail == "" {
		return
	}
	n.email(ctx, []string{n.adminEmail}, "New plan request: "+u.CompanyName, "admin",
		fmt.Sprintf("%s (%s) requested the %s plan (%s, %s).", u.CompanyName, u.Email, plan.Name, plan.Price.StringFixed(2), plan.BillingCycle),
	)
}

// PlanDecision tells the client whether the request was approved.
func (n *Notifier) PlanDecision(ctx context.Context, u *model.User, plan *model.Plan, sub *model.Subscription, remarks *string) {
	if n == nil {
		return
	}
	var lines []string
	subject := "Your plan request was rejected"
	if sub != nil {
		subject = "Your " + plan.Name + " plan is active"
		lines = append(lines, fmt.Sprintf("Your %s plan is active from %s until %s.", plan.Name, n.day(sub.StartDate), n.day(sub.EndDate)))
	} else {
		lines = append(lines, fmt.Sprintf("Your request for the %s plan was not approved. You can submit a new request at any time.", plan.Name))
	}
	if remarks != nil && *remarks != "" {
		lines = append(lines, "Remarks: "+*remarks)
	}
	n.email(ctx, []string{u.Email}, subject, u.Name, lines...)
}

// SaleInvoice queues the PDF invoice of sale for archiving and, when the
// buyer gave an address, for mailing.
func (n *Notifier) SaleInvoice(ctx context.Context, sale *model.Sale) {
	if n == nil || n.dispatcher == nil {
		return
	}
	payload := worker.InvoiceJobPayload{SaleID: sale.ID, UserID: sale.CreatedBy}
	if sale.BuyerEmail != nil {
		payload.To = *sale.BuyerEmail
	}
	if err := n.dispatcher.EnqueueInvoice(ctx, payload); err != nil {
		log.Error().Err(err).Str("invoice", sale.InvoiceNumber).Msg("notifier: enqueue invoice failed")
	}
}
