// Package model ties the symbol registry, the algebra builders and the
// renderer into a modeling session with an ordered statement log.
//
// A Session owns one registry and one alias generator. Every declaration,
// assignment and definition it accepts is rendered immediately and
// appended to the log with a logical sequence number and a
// content-addressed ID. Aliases the generator creates while a tree is
// being built are declared in the log before the statement that uses
// them.
//
// The log can be mirrored to a durable Sink; see package store.
package model
