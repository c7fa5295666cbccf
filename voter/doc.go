// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package voter implements the ballot page state for one browser session.

A View moves from StateDisconnected to StateLoading once a wallet account
is known (Init finds an existing authorization, Connect prompts for one)
and to StateReady after the first candidate list arrives. Refresh re-reads
everything and is driven by the session poller while connected.

Selection is local. Vote casts the selected candidate, waits for the
transaction to be mined, clears the selection and shows the success notice
for SuccessDuration. Failures keep the selection so the user can retry.

Network calls run outside the view's lock; whichever response lands last
wins.
*/
package voter
