package repository

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.
// All queries are owner-scoped: a repository never returns another user's
// rows, so "not owned" and "missing" are indistinguishable to callers.
