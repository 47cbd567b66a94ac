/*
Package autosharetest provides mocks and helpers for testing ledger
extensions: an authenticator driven by the context, a counting decorator
and handler, a plain transaction wrapper and identity generators.
*/
package autosharetest
