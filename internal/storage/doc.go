package storage

// Package storage persists the task set and an audit trail of fired
// reminders.
//
// It currently supports:
//   - SQLite database file (default driver)
//   - Dependency-free pipe-delimited task file (legacy format)
