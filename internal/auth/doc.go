// Package auth provides the authentication primitives shared by the
// request pipeline and the user service.
//
// This package implements:
//   - the authenticated Principal and its role set
//   - request-scoped carriage of the Principal in a context.Context
//   - role list parsing for the trusted-header strategy
//   - password hashing
//
// A request without a Principal in its context is anonymous.
package auth
