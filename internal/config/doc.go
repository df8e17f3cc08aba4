// Package config loads the optional vmcalc configuration file.
//
// Both JSONC and YAML are accepted. JSONC (JSON with comments and
// trailing commas) is handled by github.com/tidwall/jsonc, which strips
// comments before the standard encoding/json decoder runs. YAML files are
// decoded with gopkg.in/yaml.v3.
//
// Key responsibilities:
//   - Locate the configuration file in standard paths
//   - Load and decode it, rejecting unknown keys
//   - Validate values and apply defaults for anything left unset
package config
