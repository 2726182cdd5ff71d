// Package models contains the GORM models behind the billing tables.
// Domain types stay free of ORM tags; each model converts to and from its
// domain counterpart with ToDomain and the *FromDomain constructors.
package models
