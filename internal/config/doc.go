// Package config loads taggable settings.
//
// Settings come from three layers, later layers overriding earlier ones:
//
//  1. built-in defaults (Default)
//  2. configuration files, TOML or YAML by extension, in the order given
//  3. environment variables prefixed with TAGGABLE_
//
// Files and environment are read into plain maps by the loader package,
// merged, then decoded into a typed Config. Decoding reports type problems
// as *TypeError; Validate reports semantic problems as *ValidationError.
//
// Example taggable.toml:
//
//	[logging]
//	level = "debug"
//
//	[lookup]
//	limit = 5
//	autoComplete = true
//
//	[[policies]]
//	prefix = "@"
//	pattern = "[A-Za-z0-9_-]+"
//	style = "mention"
//
//	[styles]
//	mention = "#5fafff"
package config
