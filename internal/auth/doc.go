// Package auth provides admin authentication and session authorization for
// the NubArmory backend.
//
// # Session Tokens
//
// Sessions are stateless HS256 tokens carrying a snapshot of the admin
// identity:
//
//	{"id": "...", "email": "...", "name": "...", "iat": 1700000000, "exp": 1700604800}
//
// Tokens expire seven days after issuance. There is no server-side session
// record and no revocation list; a token stays usable until it expires or the
// browser drops the cookie. Identity fields are not refreshed when the admin
// record changes.
//
// # Codecs
//
// Codec is implemented twice:
//
//   - JWTCodec: golang-jwt based, used by the API server.
//   - EdgeCodec: HMAC-SHA256 only, for the lighter edge runtime.
//
// Both take the same secret at construction and accept each other's tokens.
// Verify never returns an error; every failure is reported as false and the
// cause is only logged.
//
// # Authentication
//
// Authenticator checks an email/password pair against bcrypt hashes in the
// credential store. Unknown email and wrong password both yield
// ErrInvalidCredentials.
//
// # Route Guard
//
// RequireAdmin wraps each protected handler:
//
//	mux.HandleFunc("GET /api/admin/orders", guard(h.handleListOrders))
//
// It reads the admin-token cookie, verifies it and puts the Identity in the
// request context (see FromContext). Missing or invalid tokens get
// 401 {"error":"Unauthorized"}.
package auth
