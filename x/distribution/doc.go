/*
Package distribution splits incoming payments between the members of a group.

Each distribution consumes one prepaid usage of the group. The sent amount is
moved into custody and paid out in member list order: every member but the
last receives floor(amount * percentage / 100), the last member receives
whatever is left. A member whose share is zero is skipped.

Every distribution is written once to an append only log, indexed by group
and by each paid member.
*/
package distribution
