/*
Package gconf implements a configuration store intended to be used as a
global, in-database configuration.

Each extension keeps its configuration as a single record saved under the
"_c:<package name>" key. A configuration is validated before it is written
and is encoded with the codec package. The record is kept alive using the
default time to live policy whenever it is read or written.

A configuration can be loaded from the genesis file, from the "conf" section
keyed by the package name.
*/
package gconf
