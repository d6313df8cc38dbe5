// Package configs provides the embedded configuration template for
// seqdex. The template is embedded at build time so 'seqdex config
// init' can write a commented starting point regardless of how the
// binary was installed.
package configs

import _ "embed"

// ConfigTemplate is the annotated default configuration, written by
// 'seqdex config init'.
//
//go:embed config.example.yaml
var ConfigTemplate string
