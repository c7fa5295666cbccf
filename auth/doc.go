// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides session, form-token and address helpers.

# Sessions

Each browser gets a random UUID session id, stored in a cookie:

	id := auth.NewSessionID()
	err := auth.ValidateSessionID(cookie.Value)

# CSRF Tokens

Form tokens use HMAC-SHA256 over the session id:

	token := auth.GenerateCSRFToken(sessionID, salt)
	err := auth.ValidateCSRFToken(sessionID, token, salt)

The token is URL-safe base64 encoded without padding. Since it's
deterministic, the same session id and salt always produce the same token,
so nothing needs to be stored.

# Addresses

Owner checks compare addresses without regard to checksum casing:

	if auth.SameAddress(owner.Hex(), account.Hex()) { ... }

# Option IDs

The contract derives an option's bytes32 id from its name with keccak256.
OptionID computes the same value locally for previews; ShortID abbreviates
it for display.
*/
package auth
