// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package admin implements the owner-gated panel for adding options.

Load evaluates the gate once: GateMustConnect without a wallet account,
GateAccessDenied when the account is not the contract owner (compared
case-insensitively) and GateAuthorized otherwise. Connect prompts the
wallet and re-runs Load.

AddOption checks ownership and the voting window locally before sending,
and the contract checks both again. Rejected input is kept so the owner
can correct it.
*/
package admin
