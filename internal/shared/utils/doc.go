// Package utils holds input validation and content hashing shared by the
// REST handlers and the account service.
//
// Validation:
//   - String length and null-byte checks
//   - Username, password and email rules for registration
//   - Post content and hashtag limits
//
// Hashing:
//   - SHA256 digests of raw bytes or JSON values
//   - ETag formatting for export responses
package utils
