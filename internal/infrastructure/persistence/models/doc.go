// Package models contains GORM persistence models that map to database tables.
// Domain entities stay free of ORM tags; each model converts to and from its
// entity with ToDomain / FromDomain and repositories only touch models.
//
// Tables:
//   - identity.go: users, verification_tokens
//   - partner.go: shops
//   - catalog.go: categories, category_shops, products, product_infos,
//     parameters, product_parameters
//   - trade.go: orders, order_items
//   - contact.go: contacts
package models
