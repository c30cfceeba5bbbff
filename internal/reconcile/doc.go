// Package reconcile finds and repairs drift between the records of
// workspace existence: directories under the workspace root, git's
// worktree registry, the metadata store and live tmux sessions.
//
// Scan classifies drift into three kinds of task:
//
//	directory      a directory under the workspace root that git does not
//	               know; it is removed
//	registryEntry  a registered worktree whose directory is gone; the
//	               registry is pruned
//	sessionEntry   metadata of a removed workspace, a session record
//	               naming a dead session, or a live session of this
//	               repository that no workspace owns
//
// Execute asks for confirmation once, runs every task and keeps going when
// one fails. A directory that is registered with git is never removed, and
// a second run right after a successful one finds nothing to do.
package reconcile
