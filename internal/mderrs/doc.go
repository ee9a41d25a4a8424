// Package mderrs provides centralized error types for the md4qt CLI.
//
// All custom error types in this package:
//   - Use pointer receivers for the Error() method
//   - Include structured fields for contextual information
//   - Implement Unwrap() when wrapping underlying errors
//
// The parser core never fails - any byte sequence is valid markdown -
// so these types cover only the I/O boundary the CLI owns: locating
// input files, watching them, and writing output.
package mderrs
