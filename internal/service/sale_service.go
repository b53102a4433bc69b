package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"printscrap/internal/apierror"
	"printscrap/internal/dto"
	"printscrap/internal/infra"
	"printscrap/internal/ledger"
	"printscrap/internal/model"
	"printscrap/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// maxInvoiceAttempts bounds the retries on an invoice number collision.
const maxInvoiceAttempts = 3

// FormatInvoiceNumber renders INV-YYYYMMDD-NNNN.
func FormatInvoiceNumber(day string, seq int) string {
	return fmt.Sprintf("INV-%s-%04d", day, seq)
}

type SaleService interface {
	Create(ctx context.Context, userID uint, req dto.CreateSaleRequest) (*dto.SaleResponse, error)
	Get(ctx context.Context, userID, id uint) (*dto.SaleResponse, error)
	List(ctx context.Context, userID uint, filter dto.SaleFilter) (*dto.Page[dto.SaleResponse], error)
	InvoicePDF(ctx context.Context, userID, id uint) (string, []byte, error)
}

type saleService struct {
	sales       repository.SaleRepository
	stock       repository.StockRepository
	categories  repository.CategoryRepository
	users       repository.UserRepository
	ledger      LedgerService
	notifier    *Notifier
	loc         *time.Location
	phoneRegion string
	now         func() time.Time
}

func NewSaleService(
	sales repository.SaleRepository,
	stock repository.StockRepository,
	categories repository.CategoryRepository,
	users repository.UserRepository,
	ledgerSvc LedgerService,
	notifier *Notifier,
	loc *time.Location,
	phoneRegion string,
) SaleService {
	if loc == nil {
		loc = time.UTC
	}
	return &saleService{
		sales:       sales,
		stock:       stock,
		categories:  categories,
		users:       users,
		ledger:      ledgerSvc,
		notifier:    notifier,
		loc:         loc,
		phoneRegion: phoneRegion,
		now:         time.Now,
	}
}

// resolvedItem is a validated sale line with its reference rows.
type resolvedItem struct {
	key      repository.StockKey
	category *model.Category
	sub      *model.SubCategory
	quantity decimal.Decimal
	rate     decimal.Decimal
	total    decimal.Decimal
}

// ── Create ────────────────────────────────────────────────────────────────────
// One transaction:
//   1. allocate the invoice number from the tenant's daily counter
//   2. compute line and sale totals
//   3. insert the sale, then its items
//   4. decrement stock per item; any shortfall rolls everything back
// A collision on (created_by, invoice_number) restarts the transaction.

func (s *saleService) Create(ctx context.Context, userID uint, req dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	buyer := strings.TrimSpace(req.BuyerName)
	if buyer == "" {
		return nil, apierror.Validation("buyerName", "is required")
	}
	if len(req.SaleItems) == 0 {
		return nil, apierror.Validation("saleItems", "at least one item is required")
	}
	contact, err := normalizeContact("buyerContact", derefOr(req.BuyerContact, ""), s.phoneRegion)
	if err != nil {
		return nil, err
	}
	buyerEmail := trimPtr(req.BuyerEmail)
	if buyerEmail != nil {
		if err := contactValidator.Var(*buyerEmail, "email"); err != nil {
			return nil, apierror.Validation("buyerEmail", "must be a valid email address")
		}
	}

	items, err := s.resolveItems(ctx, userID, req.SaleItems)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.total)
	}

	now := s.now()
	day := now.In(s.loc).Format("20060102")

	var sale model.Sale
	for attempt := 1; ; attempt++ {
		err = runTx(ctx, s.sales.DB(), func(tx *gorm.DB) error {
			seq, err := s.sales.NextInvoiceSeqTx(tx, userID, day)
			if err != nil {
				return err
			}
			sale = model.Sale{
				InvoiceNumber: FormatInvoiceNumber(day, seq),
				BuyerName:     buyer,
				BuyerContact:  contact,
				BuyerEmail:    buyerEmail,
				TotalAmount:   total,
				Remarks:       trimPtr(req.Remarks),
				CreatedBy:     userID,
				SaleDate:      now.UTC(),
				Items:         make([]model.SaleItem, 0, len(items)),
			}
			for _, it := range items {
				sale.Items = append(sale.Items, model.SaleItem{
					CategoryID:    it.key.CategoryID,
					SubCategoryID: it.key.SubCategoryID,
					Quantity:      it.quantity,
					Rate:          it.rate,
					TotalValue:    it.total,
				})
			}
			if err := s.sales.CreateTx(tx, &sale); err != nil {
				return err
			}
			for i, it := range items {
				err := s.ledger.RecordOutflowTx(tx, it.key, it.quantity)
				if errors.Is(err, ledger.ErrInsufficientStock) {
					return shortfall(tx, s.stock, i+1, it.key, it.category, it.sub, it.quantity)
				}
				if err != nil {
					return err
				}
			}
			return nil
		})
		if err == nil {
			break
		}
		if repository.IsUniqueViolation(err) && attempt < maxInvoiceAttempts {
			log.Warn().Uint("user_id", userID).Str("day", day).Int("attempt", attempt).
				Msg("sale: invoice number collision, retrying")
			continue
		}
		return nil, apierror.Storage("create sale", err)
	}

	for i := range sale.Items {
		sale.Items[i].Category = items[i].category
		sale.Items[i].SubCategory = items[i].sub
	}
	s.notifier.SaleInvoice(ctx, &sale)

	resp := saleToResponse(&sale)
	return &resp, nil
}

func (s *saleService) resolveItems(ctx context.Context, userID uint, reqs []dto.SaleItemRequest) ([]resolvedItem, error) {
	cats := map[uint]*model.Category{}
	out := make([]resolvedItem, 0, len(reqs))
	for i, r := range reqs {
		field := func(name string) string { return fmt.Sprintf("saleItems[%d].%s", i, name) }
		if err := validateLine(field, r.Quantity, r.Rate); err != nil {
			return nil, err
		}
		cat, ok := cats[r.CategoryID]
		if !ok {
			c, err := s.categories.FindByID(ctx, userID, r.CategoryID)
			if err != nil {
				return nil, lookupErr(err, "category", r.CategoryID)
			}
			cats[r.CategoryID], cat = c, c
		}
		var sub *model.SubCategory
		if r.SubCategoryID != nil {
			sc, err := s.categories.FindSubByID(ctx, userID, *r.SubCategoryID)
			if err != nil {
				return nil, lookupErr(err, "sub-category", *r.SubCategoryID)
			}
			if sc.CategoryID != cat.ID {
				return nil, apierror.Validation(field("subCategoryId"), "does not belong to the selected category")
			}
			sub = sc
		}
		out = append(out, resolvedItem{
			key:      repository.StockKey{UserID: userID, CategoryID: cat.ID, SubCategoryID: r.SubCategoryID},
			category: cat,
			sub:      sub,
			quantity: r.Quantity,
			rate:     r.Rate,
			total:    ledger.LineTotal(r.Quantity, r.Rate),
		})
	}
	return out, nil
}

func (s *saleService) Get(ctx context.Context, userID, id uint) (*dto.SaleResponse, error) {
	sale, err := s.sales.FindByID(ctx, userID, id)
	if err != nil {
		return nil, lookupErr(err, "sale", id)
	}
	resp := saleToResponse(sale)
	return &resp, nil
}

func (s *saleService) List(ctx context.Context, userID uint, filter dto.SaleFilter) (*dto.Page[dto.SaleResponse], error) {
	filter.Normalize()
	from, to, err := parseDayRange(filter.From, filter.To, s.loc)
	if err != nil {
		return nil, err
	}
	sales, total, err := s.sales.List(ctx, userID, repository.SaleQuery{
		From: from, To: to, Offset: filter.Offset(), Limit: filter.Limit,
	})
	if err != nil {
		return nil, apierror.Storage("list sales", err)
	}
	out := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		out = append(out, saleToResponse(&sales[i]))
	}
	return &dto.Page[dto.SaleResponse]{Data: out, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// InvoicePDF renders the invoice on demand and returns its file name and bytes.
func (s *saleService) InvoicePDF(ctx context.Context, userID, id uint) (string, []byte, error) {
	sale, err := s.sales.FindByID(ctx, userID, id)
	if err != nil {
		return "", nil, lookupErr(err, "sale", id)
	}
	seller, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", nil, lookupErr(err, "user", userID)
	}
	party := infra.InvoiceParty{CompanyName: seller.CompanyName, Email: seller.Email, Phone: derefOr(seller.Phone, "")}
	data, err := infra.InvoicePDFBytes(sale, party, s.loc)
	if err != nil {
		return "", nil, apierror.Storage("render invoice", err)
	}
	return sale.InvoiceNumber + ".pdf", data, nil
}

func saleToResponse(sale *model.Sale) dto.SaleResponse {
	items := make([]dto.SaleItemResponse, 0, len(sale.Items))
	for _, it := range sale.Items {
		item := dto.SaleItemResponse{
			ID:            it.ID,
			CategoryID:    it.CategoryID,
			SubCategoryID: it.SubCategoryID,
			Quantity:      it.Quantity,
			Rate:          it.Rate,
			TotalValue:    it.TotalValue,
		}
		if it.Category != nil {
			item.CategoryName = it.Category.Name
		}
		if it.SubCategory != nil {
			item.SubCategoryName = it.SubCategory.Name
		}
		items = append(items, item)
	}
	return dto.SaleResponse{
		ID:            sale.ID,
		InvoiceNumber: sale.InvoiceNumber,
		BuyerName:     sale.BuyerName,
		BuyerContact:  sale.BuyerContact,
		BuyerEmail:    sale.BuyerEmail,
		TotalAmount:   sale.TotalAmount,
		Remarks:       sale.Remarks,
		CreatedBy:     sale.CreatedBy,
		SaleDate:      formatTime(sale.SaleDate),
		SaleItems:     items,
	}
}
