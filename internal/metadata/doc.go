// Package metadata persists per-workspace facts across grove invocations.
//
// Every workspace owns a namespace of string fields. The production
// backend stores them in the main repository's local git config:
//
//	[workspace "auth"]
//		base = main
//		origin-dir = /src/myrepo
//		origin-branch = main
//		tmux-session = myrepo_auth
//		ai-pane = 1
//		ai-agent = claude
//
// Because linked trees share the main repository's config, every
// invocation observes the same state whichever tree it runs from.
// MemoryStore implements the same Store interface for tests.
//
// Workspace and Session are typed views over the raw fields; the session
// fields can be cleared independently of the creation facts.
package metadata
