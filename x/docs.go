/*
Package x contains the ledger extensions.

Extensions implement the domain functionality (Handler, Decorator, model
buckets and read helpers) and are combined together by the app package.
The root of this package holds what all extensions share: the
authentication abstraction.

Follow standard go naming conventions and avoid stutter, for example
use `group.CreateMsg` in place of `group.CreateGroupMsg`.
*/
package x
