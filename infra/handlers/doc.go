// Package handlers registers the built-in jump vector handler types. Import
// it for its side effects before calling jumpvector.Build.
package handlers
