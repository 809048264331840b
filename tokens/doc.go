// Package tokens issues and verifies the service's bearer credentials.
//
// A credential is an HS256 JWT carrying the caller's uid as "sub" and the
// granted roles as a "roles" array, bounded by "iat" and "exp". The signing
// key is decoded once from a base64 secret and the current time comes from an
// injected Clock, so issuance and expiry are deterministic under test.
//
// iat and exp are JWT NumericDates with whole second precision. exp is rounded
// up, never down, so a credential is valid for at least the configured
// validity and less than one second longer.
//
// Nothing is stored server side: a credential stays valid until exp passes.
package tokens
