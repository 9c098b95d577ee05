package model

// Package model defines domain data structures used across the app: monitored
// accounts, discovered items, listener states, and observer events. Structures
// are value types designed for snapshot passing between goroutines and
// explicit state transitions.
