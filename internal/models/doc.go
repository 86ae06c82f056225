// Package models holds the domain types shared by the store, the sync
// pipeline, the analytics services and the CLI.
package models
