// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Key Principles:
// 1. Domain entities should be free of GORM tags and infrastructure concerns
// 2. Persistence models contain all GORM annotations and table mappings
// 3. Mappers convert between domain entities and persistence models
// 4. Repositories use persistence models for database operations
//
// Structure:
// - base.go: Base persistence models (BaseModel, AggregateModel)
// - catalog.go: Offers and categories
// - cart.go: Carts and cart lines
// - order.go: Orders and their frozen line snapshots
// - wallet.go: Seller wallets and the append-only ledger
// - shipping.go: Desi rate tiers and free-shipping rules
// - settings.go: Marketplace key-value settings
// - outbox.go: Outbox pattern model for event delivery
//
// Money columns are decimal(18,2), matching the two fraction digits of
// valueobject.Money.
package models
