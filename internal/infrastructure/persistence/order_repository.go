package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/order"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func withOrderItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") })
}

func (r *GormOrderRepository) first(query *gorm.DB) (*order.Order, error) {
	var model models.OrderModel
	if err := withOrderItems(query).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByID finds an order with its items
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

// FindByIDForUpdate finds an order and locks its row until the transaction ends
func (r *GormOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id))
}

// FindByNumber finds an order by its order number
func (r *GormOrderRepository) FindByNumber(ctx context.Context, number string) (*order.Order, error) {
	return r.first(r.db.WithContext(ctx).Where("order_number = ?", number))
}

// ExistsByNumber checks whether an order number is taken
func (r *GormOrderRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("order_number = ?", number).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountCreatedOn counts orders whose number carries day as YYMMDD
func (r *GormOrderRepository) CountCreatedOn(ctx context.Context, day time.Time) (int64, error) {
	var count int64
	pattern := "___" + day.Format("060102") + "%"
	if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("order_number LIKE ?", pattern).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// List returns a page of orders, newest first unless filter asks otherwise
func (r *GormOrderRepository) List(ctx context.Context, filter order.Filter) (shared.Paginated[order.Order], error) {
	page, pageSize := shared.NormalizePage(filter.Page, filter.PageSize)

	query := r.db.WithContext(ctx).Model(&models.OrderModel{})
	if filter.BuyerID != nil {
		query = query.Where("buyer_id = ?", *filter.BuyerID)
	}
	if filter.SellerID != nil {
		query = query.Where("id IN (?)",
			r.db.WithContext(ctx).Model(&models.OrderItemModel{}).Select("order_id").Where("seller_id = ?", *filter.SellerID))
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[order.Order]{}, err
	}

	sortField := ValidateSortField(filter.SortBy, OrderSortFields, "created_at")
	sortDir := ValidateSortOrder(filter.SortOrder)

	var rows []models.OrderModel
	if err := withOrderItems(query).
		Order(fmt.Sprintf("%s %s, id %s", sortField, sortDir, sortDir)).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error; err != nil {
		return shared.Paginated[order.Order]{}, err
	}

	orders := make([]order.Order, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return shared.NewPaginated(orders, total, page, pageSize), nil
}

// FindReleasable finds delivered orders whose earnings are still pending
func (r *GormOrderRepository) FindReleasable(ctx context.Context, deliveredBefore time.Time, limit int) ([]*order.Order, error) {
	var rows []models.OrderModel
	if err := withOrderItems(r.db.WithContext(ctx)).
		Where("status = ? AND delivered_at IS NOT NULL AND delivered_at <= ? AND earnings_released_at IS NULL",
			order.StatusDelivered, deliveredBefore).
		Order("delivered_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	orders := make([]*order.Order, len(rows))
	for i := range rows {
		orders[i] = rows[i].ToDomain()
	}
	return orders, nil
}

// Create inserts the order together with its items
func (r *GormOrderRepository) Create(ctx context.Context, o *order.Order) error {
	model := models.OrderModelFromDomain(o)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return shared.ErrAlreadyExists.WithMessage("Order number already taken").Wrap(err)
			}
			return err
		}
		if len(model.Items) == 0 {
			return nil
		}
		return tx.Create(&model.Items).Error
	})
}

// Update writes the mutable order fields with an optimistic version check
func (r *GormOrderRepository) Update(ctx context.Context, o *order.Order) error {
	result := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ? AND version = ?", o.ID, o.Version).
		Updates(map[string]any{
			"status":               o.Status,
			"payment_status":       o.PaymentStatus,
			"cancel_reason":        o.CancelReason,
			"confirmed_at":         o.ConfirmedAt,
			"shipped_at":           o.ShippedAt,
			"delivered_at":         o.DeliveredAt,
			"cancelled_at":         o.CancelledAt,
			"earnings_released_at": o.EarningsReleasedAt,
			"version":              o.Version + 1,
			"updated_at":           o.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict.WithMessage("Order was modified by another request")
	}
	o.Version++
	return nil
}

var _ order.Repository = (*GormOrderRepository)(nil)
