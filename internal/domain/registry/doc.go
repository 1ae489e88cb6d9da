// Package registry loads application manifests into the app manager.
//
// Manifests describe the apps a shell offers. They come from two sources:
// files under an apps directory, and optionally a remote registry that
// serves the app list over HTTP.
//
// Components:
//   - Seeder: Walks the apps directory and installs every manifest
//   - Remote: Fetches the app list from a registry URL with retries
//   - ParseManifest: Decodes JSON, YAML or TOML manifests
//
// Manifest Formats:
//   - A single app: {"id": "users", "name": "Users"}
//   - A list: {"apps": [{"id": "users"}, {"id": "inventory"}]}
//
// Files are installed in lexical path order, so the default switcher order
// is stable across restarts.
//
// Example Usage:
//
//	seeder := registry.NewSeeder(appManager, "./apps", logger)
//	loaded, err := seeder.SeedApps(ctx)
//	if loaded == 0 {
//	    seeder.SeedDefaultApps()
//	}
package registry
