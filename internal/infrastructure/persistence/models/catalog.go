package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/catalog"
	"github.com/marketplace/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CategoryModel is the persistence model for the Category entity.
type CategoryModel struct {
	BaseModel
	Name            string          `gorm:"type:varchar(200);not null"`
	CommissionRate  decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	VATRate         decimal.Decimal `gorm:"column:vat_rate;type:decimal(5,2);not null;default:0"`
	WithholdingRate decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category entity.
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{
		BaseEntity:      m.BaseModel.ToDomain(),
		Name:            m.Name,
		CommissionRate:  m.CommissionRate,
		VATRate:         m.VATRate,
		WithholdingRate: m.WithholdingRate,
	}
}

// FromDomain populates the persistence model from a domain Category entity.
func (m *CategoryModel) FromDomain(c *catalog.Category) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.Name = c.Name
	m.CommissionRate = c.CommissionRate
	m.VATRate = c.VATRate
	m.WithholdingRate = c.WithholdingRate
}

// CategoryModelFromDomain creates a new persistence model from a domain Category entity.
func CategoryModelFromDomain(c *catalog.Category) *CategoryModel {
	m := &CategoryModel{}
	m.FromDomain(c)
	return m
}

// OfferModel is the persistence model for the Offer aggregate root.
type OfferModel struct {
	AggregateModel
	SellerID   uuid.UUID           `gorm:"type:uuid;not null;index"`
	ProductID  uuid.UUID           `gorm:"type:uuid;not null;index"`
	CategoryID uuid.UUID           `gorm:"type:uuid;not null;index"`
	Title      string              `gorm:"type:varchar(300);not null"`
	Price      decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	Stock      int                 `gorm:"not null;default:0"`
	Desi       decimal.Decimal     `gorm:"type:decimal(10,2);not null;default:0"`
	Status     catalog.OfferStatus `gorm:"type:varchar(20);not null;default:'active';index"`
	ExpiryDate *time.Time
}

// TableName returns the table name for GORM
func (OfferModel) TableName() string {
	return "offers"
}

// ToDomain converts the persistence model to a domain Offer aggregate.
func (m *OfferModel) ToDomain() *catalog.Offer {
	o := &catalog.Offer{
		SellerID:   m.SellerID,
		ProductID:  m.ProductID,
		CategoryID: m.CategoryID,
		Title:      m.Title,
		Price:      valueobject.NewMoney(m.Price),
		Stock:      m.Stock,
		Desi:       m.Desi,
		Status:     m.Status,
		ExpiryDate: m.ExpiryDate,
	}
	m.PopulateAggregateRoot(&o.BaseAggregateRoot)
	return o
}

// FromDomain populates the persistence model from a domain Offer aggregate.
func (m *OfferModel) FromDomain(o *catalog.Offer) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.SellerID = o.SellerID
	m.ProductID = o.ProductID
	m.CategoryID = o.CategoryID
	m.Title = o.Title
	m.Price = o.Price.Amount()
	m.Stock = o.Stock
	m.Desi = o.Desi
	m.Status = o.Status
	m.ExpiryDate = o.ExpiryDate
}

// OfferModelFromDomain creates a new persistence model from a domain Offer aggregate.
func OfferModelFromDomain(o *catalog.Offer) *OfferModel {
	m := &OfferModel{}
	m.FromDomain(o)
	return m
}
