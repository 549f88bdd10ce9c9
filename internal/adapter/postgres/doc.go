// Package postgres provides PostgreSQL connectivity and the entrypoint
// repository.
//
// Uses pgx for connection pooling and tern for migrations. The repository
// maps flat (name, docuri) join rows to domain.Entrypoint values and runs
// every read through an injected TxRunner, normally inside a read-only
// transaction.
package postgres
