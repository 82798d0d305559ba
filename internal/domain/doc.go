// Package domain defines core data models and interfaces shared across flashio.
// It contains plain types (addresses, words, modes, geometry, image metadata)
// and contracts (device, image store, flash service) only.
package domain
