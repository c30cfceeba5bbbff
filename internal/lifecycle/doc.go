// Package lifecycle implements the workspace operations behind the grove
// commands: start, resume, switch, stop, submit and list.
//
// A workspace is a git linked working tree directly under the workspace
// root, a branch, and a namespace in the metadata store. The git worktree
// registry decides whether a workspace exists; the metadata store and the
// tmux session follow it. Operations are sequential and stop at the first
// failing git call. Session problems only degrade the result to a plain
// directory change.
package lifecycle
