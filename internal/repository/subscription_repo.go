package repository

import (
	"context"
	"time"

	"printscrap/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubscriptionRow is a subscription joined with its tenant's company name.
type SubscriptionRow struct {
	model.Subscription
	CompanyName string
	PlanName    *string
}

type SubscriptionRepository interface {
	CreateTx(tx *gorm.DB, s *model.Subscription) error
	FindByUser(ctx context.Context, userID uint) (*model.Subscription, error)
	FindByUserForUpdateTx(tx *gorm.DB, userID uint) (*model.Subscription, error)
	FindByID(ctx context.Context, id uint) (*model.Subscription, error)
	SaveTx(tx *gorm.DB, s *model.Subscription) error
	// MarkExpired persists the lazily derived expiry. Only rows still trial or
	// active with an elapsed end date are touched.
	MarkExpired(ctx context.Context, id uint, now time.Time) error
	// List pages through every tenant's subscription. status filters on the
	// effective status at now.
	List(ctx context.Context, status string, now time.Time, offset, limit int) ([]SubscriptionRow, int64, error)
	ListAll(ctx context.Context) ([]model.Subscription, error)
	DB() *gorm.DB
}

type subscriptionRepo struct{ db *gorm.DB }

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepo{db: db}
}

func (r *subscriptionRepo) DB() *gorm.DB { return r.db }

func (r *subscriptionRepo) CreateTx(tx *gorm.DB, s *model.Subscription) error {
	return tx.Omit("Plan").Create(s).Error
}

func (r *subscriptionRepo) FindByUser(ctx context.Context, userID uint) (*model.Subscription, error) {
	var s model.Subscription
	err := r.db.WithContext(ctx).Preload("Plan").Where("user_id = ?", userID).First(&s).Error
	return &s, err
}

func (r *subscriptionRepo) FindByUserForUpdateTx(tx *gorm.DB, userID uint) (*model.Subscription, error) {
	var s model.Subscription
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID).First(&s).Error
	return &s, err
}

func (r *subscriptionRepo) FindByID(ctx context.Context, id uint) (*model.Subscription, error) {
	var s model.Subscription
	err := r.db.WithContext(ctx).Preload("Plan").First(&s, id).Error
	return &s, err
}

func (r *subscriptionRepo) SaveTx(tx *gorm.DB, s *model.Subscription) error {
	return tx.Omit("Plan").Save(s).Error
}

func (r *subscriptionRepo) MarkExpired(ctx context.Context, id uint, now time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Subscription{}).
		Where("id = ? AND status IN ? AND end_date <= ?", id,
			[]string{model.SubscriptionTrial, model.SubscriptionActive}, now).
		Update("status", model.SubscriptionExpired).Error
}

func (r *subscriptionRepo) List(ctx context.Context, status string, now time.Time, offset, limit int) ([]SubscriptionRow, int64, error) {
	var (
		rows  []SubscriptionRow
		total int64
	)
	live := []string{model.SubscriptionTrial, model.SubscriptionActive}
	base := r.db.WithContext(ctx).Table("subscriptions AS s")
	switch status {
	case "":
	case model.SubscriptionExpired:
		base = base.Where("s.status = ? OR (s.status IN ? AND s.end_date <= ?)", status, live, now)
	case model.SubscriptionCancelled:
		base = base.Where("s.status = ?", status)
	default:
		base = base.Where("s.status = ? AND s.end_date > ?", status, now)
	}
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	q := base.
		Select("s.*, u.company_name AS company_name, p.name AS plan_name").
		Joins("JOIN users u ON u.id = s.user_id").
		Joins("LEFT JOIN plans p ON p.id = s.plan_id").
		Order("s.end_date ASC, s.id ASC")
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	err := q.Scan(&rows).Error
	return rows, total, err
}

func (r *subscriptionRepo) ListAll(ctx context.Context) ([]model.Subscription, error) {
	var subs []model.Subscription
	err := r.db.WithContext(ctx).Preload("Plan").Find(&subs).Error
	return subs, err
}
