// Package selection resolves a version selection policy against a catalog.
//
// Policies are Stable, PreRelease and Explicit(id). Select is generic over
// any catalog entry implementing Version, so the same rules serve game and
// loader catalogs:
//
//	game, err := selection.SelectKind(games, selection.ParsePlatformPolicy("snapshot"), "Minecraft")
//	loader, err := selection.SelectKind(loaders, selection.ExplicitPolicy("0.23.1"), "Quilt Loader")
//
// Only an Explicit miss is a user-facing failure (*model.NotFoundError with
// the requested id). A Stable or PreRelease miss wraps
// model.ErrNoMatchingVersion.
package selection
