// Package domain defines core data models and interfaces shared across the app.
// It contains plain types (wire/state), sentinel errors and contracts only.
package domain
