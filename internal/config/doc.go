// Package config loads grove's repository-local configuration and resolves
// the paths grove works with.
//
// # Configuration Files
//
// The configuration lives in the main working tree as .grove.json or
// .grove.toml. JSON files may contain // and /* */ comments and trailing
// commas. When both exist the JSON file wins. Every field is optional:
//
//	{
//	  "baseBranch": "main",
//	  "aiAgent": "claude",
//	  "codeEditor": "code",
//	  "branchPrefix": "feature/",
//	  "serverCommand": "npm run dev -- --port {port}",
//	  "sessionHooks": { "onStart": ["npm install"], "onStop": [] },
//	  "portRange": { "start": 3000, "end": 3100 },
//	  "worktreeRoot": "../myrepo-worktrees"
//	}
//
// # Paths
//
// Paths are derived from the repository's git common dir, so they resolve
// identically from the main tree and from any workspace:
//
//   - WorkspaceRoot defaults to <parent>/<repo>-worktrees
//   - StateDir is <git-common-dir>/grove and holds the event log
//
// Workspace directories are joined with filepath-securejoin and must sit
// exactly one level below WorkspaceRoot.
package config
