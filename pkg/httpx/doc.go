// Package httpx carries the small JSON plumbing shared by the HTTP modules:
// strict request decoding and a uniform response envelope. Status mapping
// from domain errors stays in the modules, next to the errors they know.
package httpx
