// Package directory is an in-memory entity directory used to answer tag
// lookups.
//
// Entities are read from a JSON file, grouped by kind, and bound to tag
// prefixes ("@" for people and "#" for topics by default). Search ranks
// names with a fuzzy subsequence matcher over case-folded text and caches
// recent results. Resolve maps canonical ids back to entities, and
// Converter supplies the display/canonical pair sessions need:
//
//	dir, err := directory.Open("people.json")
//	if err != nil {
//		return err
//	}
//	s := session.New(policies, session.Host[directory.Entity]{
//		Converter: dir.Converter(),
//		Search:    dir.Search,
//	})
//
// Watch keeps the directory in sync with its file.
package directory
