/*
Package group implements groups of members sharing incoming payments.

A group is created by its creator, who prepays a number of usages at the
current usage fee. Every distribution consumes one usage. Members hold a
percentage of each distribution. Adding members and replacing the member
list always requires the percentages to sum up to exactly 100, while
removing a member does not, the creator is expected to fix the split with a
following update.

Payments for usages are recorded in an append only log that outlives the
groups it refers to.
*/
package group
