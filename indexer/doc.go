/*
Package indexer keeps a queryable copy of the events published by the
ledger in a SQL database. Both sqlite (pure Go driver) and mysql are
supported.

Indexing is fire and forget. A failure to store events is logged and never
affects the ledger.
*/
package indexer
