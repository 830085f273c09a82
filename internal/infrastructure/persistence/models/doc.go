// Package models contains the ledger record shapes returned by search_read.
// They absorb the wire conventions (false for empty values, [id, name] pairs
// for references) so domain entities stay free of them.
//
// Each record converts to its domain entity with ToDomain.
package models
