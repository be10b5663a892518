// Package auth provides session-backed authentication and tiered
// authorization for multi-tenant applications.
//
// Sessions:
//   - Sessions are server-side rows; the cookie only carries a signed
//     token whose subject is the session ID, so revocation takes effect
//     on the next request. SessionStore.Resolve fails closed: a bad
//     token, a missing row, an expired or revoked session all resolve
//     to nil.
//
// Tiers:
//   - Every request classifies into one of four ordered tiers:
//     anonymous, authenticated, org admin, and owner. Guards compare
//     the caller's tier against the floor a route or action requires
//     and hand back an Actor on allow. Denials surface as 401 so the
//     response never reveals whether a resource exists.
//
// Password recovery:
//   - Reset tokens are single use and time bounded. Requesting a new
//     token supersedes every live one, finalizing consumes the token,
//     rewrites the password, and revokes every open session in one
//     transaction. The request endpoint answers identically whether or
//     not the email maps to an account.
//
// Provisioning:
//   - Organizations and their admins are created by owners only. The
//     creator becomes the first member, and admin plus membership are
//     written atomically so a failure never leaves an orphaned admin.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter invoked by every
//     mutating action. Sinks run best-effort (errors are logged) so you
//     can forward to a database or queue without blocking requests.
package auth
