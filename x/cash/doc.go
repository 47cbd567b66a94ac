/*
Package cash keeps token balances of all accounts. Other extensions move
tokens through the Controller, accounts transfer their tokens with SendMsg.

A balance is a Wallet stored under the account address. Wallets hold a
normalized set of coins, one per ticker.
*/
package cash
