package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/order"
	"github.com/marketplace/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order aggregate root.
type OrderModel struct {
	AggregateModel
	OrderNumber      string              `gorm:"type:varchar(20);not null;uniqueIndex"`
	BuyerID          uuid.UUID           `gorm:"type:uuid;not null;index"`
	CartID           uuid.UUID           `gorm:"type:uuid;index"`
	Status           order.Status        `gorm:"type:varchar(20);not null;default:'pending';index"`
	PaymentStatus    order.PaymentStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	Items            []OrderItemModel    `gorm:"foreignKey:OrderID;references:ID"`
	Subtotal         decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	ShippingCost     decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	TotalAmount      decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	TotalCommission  decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	ShippingProvider string              `gorm:"type:varchar(50);not null"`
	ShippingRegion   string              `gorm:"type:varchar(100)"`
	ShippingAddress  string              `gorm:"type:text;not null"`
	TotalDesi        decimal.Decimal     `gorm:"type:decimal(10,2);not null;default:0"`
	FreeShipping     bool                `gorm:"not null;default:false"`
	CarrierCost      decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	Notes            string              `gorm:"type:text"`
	CancelReason     string              `gorm:"type:varchar(500)"`

	ConfirmedAt        *time.Time
	ShippedAt          *time.Time
	DeliveredAt        *time.Time `gorm:"index"`
	CancelledAt        *time.Time
	EarningsReleasedAt *time.Time
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order aggregate.
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		OrderNumber:     m.OrderNumber,
		BuyerID:         m.BuyerID,
		CartID:          m.CartID,
		Status:          m.Status,
		PaymentStatus:   m.PaymentStatus,
		Items:           make([]order.Item, len(m.Items)),
		Subtotal:        valueobject.NewMoney(m.Subtotal),
		ShippingCost:    valueobject.NewMoney(m.ShippingCost),
		TotalAmount:     valueobject.NewMoney(m.TotalAmount),
		TotalCommission: valueobject.NewMoney(m.TotalCommission),
		Shipping: order.Shipping{
			Provider:     m.ShippingProvider,
			Region:       m.ShippingRegion,
			Address:      m.ShippingAddress,
			TotalDesi:    m.TotalDesi,
			FreeShipping: m.FreeShipping,
			CarrierCost:  valueobject.NewMoney(m.CarrierCost),
		},
		Notes:              m.Notes,
		CancelReason:       m.CancelReason,
		ConfirmedAt:        m.ConfirmedAt,
		ShippedAt:          m.ShippedAt,
		DeliveredAt:        m.DeliveredAt,
		CancelledAt:        m.CancelledAt,
		EarningsReleasedAt: m.EarningsReleasedAt,
	}
	m.PopulateAggregateRoot(&o.BaseAggregateRoot)
	for i, item := range m.Items {
		o.Items[i] = item.ToDomain()
	}
	return o
}

// FromDomain populates the persistence model from a domain Order aggregate.
func (m *OrderModel) FromDomain(o *order.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.BuyerID = o.BuyerID
	m.CartID = o.CartID
	m.Status = o.Status
	m.PaymentStatus = o.PaymentStatus
	m.Subtotal = o.Subtotal.Amount()
	m.ShippingCost = o.ShippingCost.Amount()
	m.TotalAmount = o.TotalAmount.Amount()
	m.TotalCommission = o.TotalCommission.Amount()
	m.ShippingProvider = o.Shipping.Provider
	m.ShippingRegion = o.Shipping.Region
	m.ShippingAddress = o.Shipping.Address
	m.TotalDesi = o.Shipping.TotalDesi
	m.FreeShipping = o.Shipping.FreeShipping
	m.CarrierCost = o.Shipping.CarrierCost.Amount()
	m.Notes = o.Notes
	m.CancelReason = o.CancelReason
	m.ConfirmedAt = o.ConfirmedAt
	m.ShippedAt = o.ShippedAt
	m.DeliveredAt = o.DeliveredAt
	m.CancelledAt = o.CancelledAt
	m.EarningsReleasedAt = o.EarningsReleasedAt
	m.Items = make([]OrderItemModel, len(o.Items))
	for i, item := range o.Items {
		m.Items[i] = OrderItemModelFromDomain(item, o.CreatedAt)
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order aggregate.
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderItemModel is the persistence model for an order line snapshot.
// Rows are written once at checkout and never updated.
type OrderItemModel struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	OfferID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	SellerID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	Title             string          `gorm:"type:varchar(300);not null"`
	Quantity          int             `gorm:"not null"`
	UnitPrice         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalPrice        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CommissionRate    decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	CommissionAmount  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	MarketplaceFee    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	WithholdingTax    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ShippingCostShare decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	NetSellerAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt         time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain order line.
func (m *OrderItemModel) ToDomain() order.Item {
	return order.Item{
		ID:                m.ID,
		OrderID:           m.OrderID,
		OfferID:           m.OfferID,
		SellerID:          m.SellerID,
		Title:             m.Title,
		Quantity:          m.Quantity,
		UnitPrice:         valueobject.NewMoney(m.UnitPrice),
		TotalPrice:        valueobject.NewMoney(m.TotalPrice),
		CommissionRate:    m.CommissionRate,
		CommissionAmount:  valueobject.NewMoney(m.CommissionAmount),
		MarketplaceFee:    valueobject.NewMoney(m.MarketplaceFee),
		WithholdingTax:    valueobject.NewMoney(m.WithholdingTax),
		ShippingCostShare: valueobject.NewMoney(m.ShippingCostShare),
		NetSellerAmount:   valueobject.NewMoney(m.NetSellerAmount),
	}
}

// OrderItemModelFromDomain creates a persistence model from a domain order line.
func OrderItemModelFromDomain(item order.Item, createdAt time.Time) OrderItemModel {
	return OrderItemModel{
		ID:                item.ID,
		OrderID:           item.OrderID,
		OfferID:           item.OfferID,
		SellerID:          item.SellerID,
		Title:             item.Title,
		Quantity:          item.Quantity,
		UnitPrice:         item.UnitPrice.Amount(),
		TotalPrice:        item.TotalPrice.Amount(),
		CommissionRate:    item.CommissionRate,
		CommissionAmount:  item.CommissionAmount.Amount(),
		MarketplaceFee:    item.MarketplaceFee.Amount(),
		WithholdingTax:    item.WithholdingTax.Amount(),
		ShippingCostShare: item.ShippingCostShare.Amount(),
		NetSellerAmount:   item.NetSellerAmount.Amount(),
		CreatedAt:         createdAt,
	}
}
