// Package configs provides embedded configuration files for storekb.
//
// The files are embedded at build time so every distribution carries them:
//   - hints.yaml: the default bilingual query hint table
//   - storekb.example.yaml: written by `storekb config init`
//
// Configuration hierarchy (see internal/config/config.go Load()):
//  1. Hardcoded defaults (internal/config/config.go NewConfig())
//  2. User config (~/.config/storekb/config.yaml)
//  3. Project config (.storekb.yaml)
//  4. Environment variables (STOREKB_*, SHOPIFY_*)
package configs

import _ "embed"

// DefaultHints is the built-in CJK to English hint table, a YAML sequence of
// {term, expansion} pairs.
//
//go:embed hints.yaml
var DefaultHints []byte

// ConfigTemplate is the annotated example configuration.
//
//go:embed storekb.example.yaml
var ConfigTemplate string
