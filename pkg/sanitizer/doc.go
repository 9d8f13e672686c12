// Package sanitizer normalizes user input before validation and storage.
//
// All functions are idempotent: applying them twice gives the same result as
// applying them once. Invalid input degrades to an empty string rather than an
// error; validation decides whether empty is acceptable.
//
// Normalization includes:
//   - Text: trim, collapse runs of whitespace into a single space
//   - Codes: text normalization plus upper-casing ("eq- 001" becomes "EQ- 001")
//   - URLs: trim, default to https, lowercase host, drop utm_* parameters
//   - Slices: normalize each value, drop empties and duplicates
package sanitizer
