// Package repository implements MySQL persistence for the catalog,
// favorites, reviews and the reservation store.  This file defines
// sentinel errors shared across repositories so handlers can map
// failures to HTTP responses without inspecting SQL error codes.
package repository

import "errors"

// ErrMovieNotFound is returned when a movie ID references no catalog
// entry.  Handlers translate this into a 404 response.
var ErrMovieNotFound = errors.New("movie not found")

// ErrHallNotFound is returned when a hall configuration ID is
// unknown.  Handlers translate this into a 404 response.
var ErrHallNotFound = errors.New("hall configuration not found")

// ErrShowNotFound is returned when a show ID references no row.
var ErrShowNotFound = errors.New("show not found")

// ErrConflict is returned when an operation cannot proceed because of
// dependent state, such as cancelling a show that still has paid
// bookings or renaming a hall that shows are scheduled against.
// Handlers translate this into a 409 response.
var ErrConflict = errors.New("conflict")

// ErrDuplicate is returned when an insert violates a uniqueness
// constraint, such as creating a second hall with the same name.
var ErrDuplicate = errors.New("already exists")
