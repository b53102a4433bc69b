package worker

// invoice_worker.go
// Renders the PDF invoice of a completed sale, archives it under
// PDF_STORAGE_PATH and mails it to the buyer when an address was given.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"printscrap/internal/infra"
	"printscrap/internal/repository"

	"github.com/rs/zerolog/log"
)

// InvoiceJobPayload is the job envelope sent to QueueInvoice.
type InvoiceJobPayload struct {
	SaleID uint   `json:"sale_id"`
	UserID uint   `json:"user_id"`
	To     string `json:"to,omitempty"`
}

type InvoiceWorker struct {
	sales       repository.SaleRepository
	users       repository.UserRepository
	sender      Sender
	breaker     *infra.CircuitBreaker
	storagePath string
	loc         *time.Location
}

func NewInvoiceWorker(
	sales repository.SaleRepository,
	users repository.UserRepository,
	sender Sender,
	breaker *infra.CircuitBreaker,
	storagePath string,
	loc *time.Location,
) *InvoiceWorker {
	return &InvoiceWorker{
		sales:       sales,
		users:       users,
		sender:      sender,
		breaker:     breaker,
		storagePath: storagePath,
		loc:         loc,
	}
}

func (w *InvoiceWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload InvoiceJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("%w: invalid invoice payload: %v", ErrPermanent, err)
	}

	sale, err := w.sales.FindByID(ctx, payload.UserID, payload.SaleID)
	if repository.IsNotFound(err) {
		return fmt.Errorf("%w: sale %d not found", ErrPermanent, payload.SaleID)
	}
	if err != nil {
		return err
	}
	seller, err := w.users.FindByID(ctx, payload.UserID)
	if err != nil {
		return err
	}
	party := infra.InvoiceParty{CompanyName: seller.CompanyName, Email: seller.Email}
	if seller.Phone != nil {
		party.Phone = *seller.Phone
	}

	data, err := infra.InvoicePDFBytes(sale, party, w.loc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPermanent, err)
	}
	if w.storagePath != "" {
		path, err := infra.SaveInvoicePDF(w.storagePath, sale, data)
		if err != nil {
			return err
		}
		log.Info().Str("invoice", sale.InvoiceNumber).Str("path", path).Msg("invoice_worker: PDF stored")
	}

	if payload.To == "" {
		return nil
	}
	return send(w.sender, w.breaker, infra.Message{
		To:      []string{payload.To},
		Subject: fmt.Sprintf("Invoice %s from %s", sale.InvoiceNumber, seller.CompanyName),
		Text: fmt.Sprintf("Dear %s,\n\nPlease find attached invoice %s for %s.\n\nRegards,\n%s\n",
			sale.BuyerName, sale.InvoiceNumber, sale.TotalAmount.StringFixed(2), seller.CompanyName),
		Attachments: []infra.Attachment{{
			Name:        sale.InvoiceNumber + ".pdf",
			ContentType: "application/pdf",
			Data:        data,
		}},
	})
}
