package service

import (
	"context"
	"errors"

	"printscrap/internal/apierror"
	"printscrap/internal/dto"
	"printscrap/internal/ledger"
	"printscrap/internal/model"
	"printscrap/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InflowInput is one receipt of material into a ledger key.
type InflowInput struct {
	Key      repository.StockKey
	Unit     string
	Quantity decimal.Decimal
	Rate     decimal.Decimal
}

// LedgerService maintains the per-key running balance of every tenant's
// scrap. The Tx variants join a caller's transaction and report shortfalls as
// ledger.ErrInsufficientStock; the others run their own transaction and
// return typed apierror values.
type LedgerService interface {
	// RecordInflow is the entry point for callers outside a transaction; it opens its own.
	RecordInflow(ctx context.Context, in InflowInput) (*dto.StockResponse, error)
	RecordInflowTx(tx *gorm.DB, in InflowInput) (*model.StockLedger, error)
	// RecordOutflow is the entry point for callers outside a transaction; it opens its own.
	RecordOutflow(ctx context.Context, key repository.StockKey, quantity decimal.Decimal) (*dto.StockResponse, error)
	RecordOutflowTx(tx *gorm.DB, key repository.StockKey, quantity decimal.Decimal) error
	GetAvailable(ctx context.Context, key repository.StockKey) (*dto.StockResponse, error)
	ListForTenant(ctx context.Context, userID uint) ([]dto.StockResponse, error)
}

type ledgerService struct {
	stock      repository.StockRepository
	categories repository.CategoryRepository
}

func NewLedgerService(stock repository.StockRepository, categories repository.CategoryRepository) LedgerService {
	return &ledgerService{stock: stock, categories: categories}
}

func validateInflow(quantity, rate decimal.Decimal) error {
	return validateLine(func(name string) string { return name }, quantity, rate)
}

// validateLine checks one quantity/rate pair; field names the offending input.
func validateLine(field func(string) string, quantity, rate decimal.Decimal) error {
	if !quantity.IsPositive() {
		return apierror.Validation(field("quantity"), "must be greater than 0")
	}
	if !ledger.FitsScale(quantity) {
		return apierror.Validation(field("quantity"), "must have at most 2 decimal places")
	}
	if rate.IsNegative() {
		return apierror.Validation(field("rate"), "must not be negative")
	}
	if !ledger.FitsScale(rate) {
		return apierror.Validation(field("rate"), "must have at most 2 decimal places")
	}
	return nil
}

func (s *ledgerService) RecordInflowTx(tx *gorm.DB, in InflowInput) (*model.StockLedger, error) {
	if err := validateInflow(in.Quantity, in.Rate); err != nil {
		return nil, err
	}
	row, err := s.stock.RecordInflowTx(tx, in.Key, in.Unit, in.Quantity, in.Rate)
	if err != nil {
		return nil, apierror.Storage("record inflow", err)
	}
	return row, nil
}

func (s *ledgerService) RecordInflow(ctx context.Context, in InflowInput) (*dto.StockResponse, error) {
	if err := validateInflow(in.Quantity, in.Rate); err != nil {
		return nil, err
	}
	cat, sub, err := s.resolveKey(ctx, in.Key)
	if err != nil {
		return nil, err
	}
	if in.Unit == "" {
		in.Unit = keyUnit(cat, sub)
	}
	var row *model.StockLedger
	err = runTx(ctx, s.stock.DB(), func(tx *gorm.DB) error {
		var err error
		row, err = s.RecordInflowTx(tx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return stockResponse(row, cat, sub), nil
}

func (s *ledgerService) RecordOutflowTx(tx *gorm.DB, key repository.StockKey, quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return apierror.Validation("quantity", "must be greater than 0")
	}
	if !ledger.FitsScale(quantity) {
		return apierror.Validation("quantity", "must have at most 2 decimal places")
	}
	return s.stock.RecordOutflowTx(tx, key, quantity)
}

func (s *ledgerService) RecordOutflow(ctx context.Context, key repository.StockKey, quantity decimal.Decimal) (*dto.StockResponse, error) {
	cat, sub, err := s.resolveKey(ctx, key)
	if err != nil {
		return nil, err
	}
	var row *model.StockLedger
	err = runTx(ctx, s.stock.DB(), func(tx *gorm.DB) error {
		if err := s.RecordOutflowTx(tx, key, quantity); err != nil {
			if errors.Is(err, ledger.ErrInsufficientStock) {
				return shortfall(tx, s.stock, 0, key, cat, sub, quantity)
			}
			return err
		}
		var err error
		row, err = s.stock.FindTx(tx, key)
		return err
	})
	if err != nil {
		return nil, apierror.Storage("record outflow", err)
	}
	return stockResponse(row, cat, sub), nil
}

func (s *ledgerService) GetAvailable(ctx context.Context, key repository.StockKey) (*dto.StockResponse, error) {
	cat, sub, err := s.resolveKey(ctx, key)
	if err != nil {
		return nil, err
	}
	row, err := s.stock.Find(ctx, key)
	if err != nil {
		return nil, apierror.Storage("load stock", err)
	}
	if row == nil {
		row = &model.StockLedger{
			UserID:        key.UserID,
			CategoryID:    key.CategoryID,
			SubCategoryID: key.SubCategoryID,
			Unit:          keyUnit(cat, sub),
		}
	}
	return stockResponse(row, cat, sub), nil
}

func (s *ledgerService) ListForTenant(ctx context.Context, userID uint) ([]dto.StockResponse, error) {
	rows, err := s.stock.ListByUser(ctx, userID)
	if err != nil {
		return nil, apierror.Storage("list stock", err)
	}
	out := make([]dto.StockResponse, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		resp := snapshotResponse(&r.StockLedger, r.MarketRate)
		resp.CategoryName = r.CategoryName
		resp.SubCategoryName = derefOr(r.SubCategoryName, "")
		out = append(out, resp)
	}
	return out, nil
}

// resolveKey checks the key's category (and sub-category) belong to its tenant.
func (s *ledgerService) resolveKey(ctx context.Context, key repository.StockKey) (*model.Category, *model.SubCategory, error) {
	cat, err := s.categories.FindByID(ctx, key.UserID, key.CategoryID)
	if err != nil {
		return nil, nil, lookupErr(err, "category", key.CategoryID)
	}
	if key.SubCategoryID == nil {
		return cat, nil, nil
	}
	sub, err := s.categories.FindSubByID(ctx, key.UserID, *key.SubCategoryID)
	if err != nil {
		return nil, nil, lookupErr(err, "sub-category", *key.SubCategoryID)
	}
	if sub.CategoryID != cat.ID {
		return nil, nil, apierror.Validation("subCategoryId", "does not belong to the selected category")
	}
	return cat, sub, nil
}

// shortfall builds the InsufficientStockError for a refused outflow, reading
// the balance inside tx so the reported figure matches what was refused.
func shortfall(tx *gorm.DB, stock repository.StockRepository, item int, key repository.StockKey,
	cat *model.Category, sub *model.SubCategory, requested decimal.Decimal) error {
	available := decimal.Zero
	if row, err := stock.FindTx(tx, key); err == nil && row != nil {
		available = row.AvailableStock
	}
	e := &apierror.InsufficientStockError{
		Item:      item,
		Available: ledger.Round(available),
		Requested: requested,
	}
	if cat != nil {
		e.Category = cat.Name
	}
	if sub != nil {
		e.SubCategory = sub.Name
	}
	return e
}

func keyUnit(cat *model.Category, sub *model.SubCategory) string {
	if sub != nil && sub.Unit != "" {
		return sub.Unit
	}
	if cat != nil {
		return cat.Unit
	}
	return ""
}

func stockResponse(row *model.StockLedger, cat *model.Category, sub *model.SubCategory) *dto.StockResponse {
	fallback := decimal.Zero
	if cat != nil {
		fallback = cat.MarketRate
	}
	resp := snapshotResponse(row, fallback)
	if cat != nil {
		resp.CategoryName = cat.Name
	}
	if sub != nil {
		resp.SubCategoryName = sub.Name
	}
	return &resp
}

// snapshotResponse renders a ledger row from its accumulators, rounding only here.
func snapshotResponse(row *model.StockLedger, marketRate decimal.Decimal) dto.StockResponse {
	snap := ledger.Position{
		TotalInflow:  row.TotalInflow,
		TotalOutflow: row.TotalOutflow,
		InflowCost:   row.InflowCost,
	}.Snapshot(marketRate)
	return dto.StockResponse{
		CategoryID:     row.CategoryID,
		SubCategoryID:  row.SubCategoryID,
		TotalInflow:    snap.TotalInflow,
		TotalOutflow:   snap.TotalOutflow,
		AvailableStock: snap.AvailableStock,
		Unit:           row.Unit,
		AverageRate:    snap.AverageRate,
		TotalValue:     snap.TotalValue,
	}
}
