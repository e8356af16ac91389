// Package profiles edits the launcher's shared profile store,
// launcher_profiles.json.
//
// The store belongs to the launcher and to every other tool that adds
// profiles to it. This package only ever inserts or replaces one entry:
//
//	entry := profiles.NewEntry("1.20.4", "quilt-loader-0.23.1-1.20.4")
//	err := profiles.Upsert(filepath.Join(dir, profiles.FileName), "quilt-loader-0.23.1-1.20.4", entry, time.Now())
//
// Members are read as raw JSON and written back untouched, so other
// profiles and top-level settings keep their exact bytes and order across
// installs. Upsert is a read-modify-write with no locking; only one install
// may target a store at a time.
package profiles
