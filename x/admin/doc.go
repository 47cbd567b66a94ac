/*
Package admin keeps the global settings of the ledger: the admin identity,
the pause flag, the usage fee and the set of tokens accepted as payment.

All settings live in a single gconf record. The admin is set once, either
from the genesis file or with InitAdminMsg, and can only be handed over by
its current holder. While paused, every state changing message is rejected
except the admin transfer and the pause toggles themselves.

Tokens paid for usages are kept by the custody account. Only the admin can
withdraw them.
*/
package admin
