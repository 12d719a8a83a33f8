// Package rules supplies the sort rules the synchronizer orders mods by.
//
// The per-mod rules stored on each Mod are always in effect. Games and users
// add more through a rules file: each [[rule]] entry selects mods by a name
// pattern and an optional expr predicate, and relates them to the mods a
// second pattern selects. Patterns use filepath.Match syntax.
//
// Example rules.toml:
//
//	[[rule]]
//	mod   = "*Patch*"
//	kind  = "after"
//	other = "Unofficial*"
//
//	[[rule]]
//	mod  = "*"
//	when = 'category == "overrides"'
//	kind = "last"
package rules
