// Package postgres provides PostgreSQL implementations of the store
// interfaces. It owns the schema, shipped as goose migrations embedded in
// the binary, and maps driver errors onto the store sentinel errors.
package postgres
