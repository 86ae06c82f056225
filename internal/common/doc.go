// Package common defines shared constants and sentinel errors used across
// fintrack components. Callers should use errors.Is to match these values.
package common
