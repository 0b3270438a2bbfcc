// Package corpus loads and validates the JSON knowledge base file.
//
// A corpus file is either a bare JSON array of records or an object
// wrapping the array in a "records" field. Loading is all-or-nothing:
// a malformed record, a duplicate id or a dangling related id aborts
// the load with an error and nothing is returned, so a broken corpus
// can never reach the index builder.
package corpus
