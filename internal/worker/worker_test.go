package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"printscrap/internal/infra"
	"printscrap/internal/model"
	"printscrap/internal/repository"
	"printscrap/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []infra.Message
	err  error
}

func (f *fakeSender) Send(msg infra.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type handlerFunc func(ctx context.Context, payload json.RawMessage) error

func (f handlerFunc) Process(ctx context.Context, payload json.RawMessage) error { return f(ctx, payload) }

func TestRetryBackoff(t *testing.T) {
	assert.Equal(t, 30*time.Second, retryBackoff(0))
	assert.Equal(t, 30*time.Second, retryBackoff(1))
	assert.Equal(t, time.Minute, retryBackoff(2))
	assert.Equal(t, 4*time.Minute, retryBackoff(4))
	assert.Equal(t, 30*time.Minute, retryBackoff(20))
}

func TestPoolProcess_RoutesByTypeAndCountsAttempts(t *testing.T) {
	var got json.RawMessage
	p := NewPool(nil, map[string]Handler{
		JobEmail: handlerFunc(func(_ context.Context, payload json.RawMessage) error {
			got = payload
			return nil
		}),
	})

	job := &Job{ID: "1", Type: JobEmail, Payload: json.RawMessage(`{"subject":"hi"}`)}
	require.NoError(t, p.process(context.Background(), job))
	assert.Equal(t, 1, job.Attempts)
	assert.JSONEq(t, `{"subject":"hi"}`, string(got))

	unknown := &Job{ID: "2", Type: "fax"}
	assert.Error(t, p.process(context.Background(), unknown))
	assert.Equal(t, 1, unknown.Attempts)
}

func TestEmailWorker_SendsThroughBreaker(t *testing.T) {
	sender := &fakeSender{}
	w := NewEmailWorker(sender, infra.NewCircuitBreaker(infra.DefaultCBConfig("smtp")))

	raw, _ := json.Marshal(EmailJobPayload{To: []string{"owner@example.com"}, Subject: "Welcome", Text: "hello"})
	require.NoError(t, w.Process(context.Background(), raw))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "Welcome", sender.sent[0].Subject)
}

func TestEmailWorker_Failures(t *testing.T) {
	sender := &fakeSender{err: errors.New("554 relay denied")}
	w := NewEmailWorker(sender, nil)

	raw, _ := json.Marshal(EmailJobPayload{To: []string{"owner@example.com"}, Subject: "x"})
	err := w.Process(context.Background(), raw)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPermanent, "SMTP errors are retried")

	err = w.Process(context.Background(), json.RawMessage(`not json`))
	assert.ErrorIs(t, err, ErrPermanent)

	raw, _ = json.Marshal(EmailJobPayload{Subject: "nobody"})
	assert.NoError(t, w.Process(context.Background(), raw), "no recipients is skipped")
}

func TestInvoiceWorker_StoresAndMailsPDF(t *testing.T) {
	db := testutil.NewSQLite(t)
	users := repository.NewUserRepository(db)
	sales := repository.NewSaleRepository(db)

	seller := &model.User{Name: "Asha", CompanyName: "Sharma Printers", Email: "asha@example.com", PasswordHash: "x", Role: model.RoleClient, Active: true}
	require.NoError(t, users.CreateTx(db, seller))
	cat := &model.Category{Name: "Paper", Unit: "Kg", CreatedBy: seller.ID}
	require.NoError(t, db.Create(cat).Error)
	sale := &model.Sale{
		InvoiceNumber: "INV-20261016-0001",
		BuyerName:     "Kabadi Traders",
		TotalAmount:   decimal.NewFromInt(300),
		CreatedBy:     seller.ID,
		SaleDate:      time.Now().UTC(),
		Items:         []model.SaleItem{{CategoryID: cat.ID, Quantity: decimal.NewFromInt(30), Rate: decimal.NewFromInt(10), TotalValue: decimal.NewFromInt(300)}},
	}
	require.NoError(t, sales.CreateTx(db, sale))

	sender := &fakeSender{}
	w := NewInvoiceWorker(sales, users, sender, nil, t.TempDir(), time.UTC)

	raw, _ := json.Marshal(InvoiceJobPayload{SaleID: sale.ID, UserID: seller.ID, To: "buyer@example.com"})
	require.NoError(t, w.Process(context.Background(), raw))
	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, []string{"buyer@example.com"}, msg.To)
	require.Len(t, msg.Attachments, 1)
	assert.True(t, bytes.HasPrefix(msg.Attachments[0].Data, []byte("%PDF")))

	raw, _ = json.Marshal(InvoiceJobPayload{SaleID: sale.ID, UserID: seller.ID + 1})
	assert.ErrorIs(t, w.Process(context.Background(), raw), ErrPermanent, "other tenant's sale is not found")
}
