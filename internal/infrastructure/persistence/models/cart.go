package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/cart"
	"github.com/marketplace/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CartModel is the persistence model for the Cart aggregate root.
// A partial unique index in the migrations keeps one active cart per user.
type CartModel struct {
	AggregateModel
	UserID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status cart.Status     `gorm:"type:varchar(20);not null;default:'active'"`
	Items  []CartItemModel `gorm:"foreignKey:CartID;references:ID"`
}

// TableName returns the table name for GORM
func (CartModel) TableName() string {
	return "carts"
}

// ToDomain converts the persistence model to a domain Cart aggregate.
func (m *CartModel) ToDomain() *cart.Cart {
	c := &cart.Cart{
		UserID: m.UserID,
		Status: m.Status,
		Items:  make([]cart.Item, len(m.Items)),
	}
	m.PopulateAggregateRoot(&c.BaseAggregateRoot)
	for i, item := range m.Items {
		c.Items[i] = item.ToDomain()
	}
	return c
}

// FromDomain populates the persistence model from a domain Cart aggregate.
func (m *CartModel) FromDomain(c *cart.Cart) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.UserID = c.UserID
	m.Status = c.Status
	m.Items = make([]CartItemModel, len(c.Items))
	for i, item := range c.Items {
		m.Items[i] = CartItemModelFromDomain(item)
	}
}

// CartModelFromDomain creates a new persistence model from a domain Cart aggregate.
func CartModelFromDomain(c *cart.Cart) *CartModel {
	m := &CartModel{}
	m.FromDomain(c)
	return m
}

// CartItemModel is the persistence model for a cart line.
type CartItemModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	CartID          uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_cart_items_cart_offer,priority:1"`
	OfferID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_cart_offer,priority:2"`
	Quantity        int             `gorm:"not null"`
	PriceAtAddition decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt       time.Time       `gorm:"not null"`
	UpdatedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CartItemModel) TableName() string {
	return "cart_items"
}

// ToDomain converts the persistence model to a domain cart line.
func (m *CartItemModel) ToDomain() cart.Item {
	return cart.Item{
		ID:              m.ID,
		CartID:          m.CartID,
		OfferID:         m.OfferID,
		Quantity:        m.Quantity,
		PriceAtAddition: valueobject.NewMoney(m.PriceAtAddition),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// CartItemModelFromDomain creates a persistence model from a domain cart line.
func CartItemModelFromDomain(item cart.Item) CartItemModel {
	return CartItemModel{
		ID:              item.ID,
		CartID:          item.CartID,
		OfferID:         item.OfferID,
		Quantity:        item.Quantity,
		PriceAtAddition: item.PriceAtAddition.Amount(),
		CreatedAt:       item.CreatedAt,
		UpdatedAt:       item.UpdatedAt,
	}
}
