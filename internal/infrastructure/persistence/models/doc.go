// Package models contains the GORM rows behind the storefront's durable
// session, cart and checkout stores. Deadlines are stored as unix
// milliseconds so that comparisons behave the same on PostgreSQL and SQLite.
package models
