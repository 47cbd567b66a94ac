/*
Package orm provides an easy to use db wrapper

Break state space into prefixed sections called Buckets.
* Each bucket contains only one type of model.
* It has a primary index, and may possess secondary indexes (1:1 or 1:N).
* Easy queries for one and for all entities stored under an index value.

Indexes are compact: all primary keys indexed under a value are kept as a
sorted set in a single record. They are meant for small collections, like
the history of a single group.
*/
package orm
