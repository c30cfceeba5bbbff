// Package errors provides typed errors for grove.
//
// # Error Kinds
//
// GroveError wraps an error with a kind, a user-facing message and an
// optional remediation hint:
//
//	type GroveError struct {
//	    Kind    Kind   // validation, not-found, conflict, ...
//	    Code    int    // Exit code (always ExitFailure today)
//	    Message string // User-facing message
//	    Hint    string // Remediation hint, printed on its own line
//	    Cause   error  // Wrapped error
//	}
//
// # Error Constructors
//
//	errors.ValidationError("workspace name must not be empty")
//	errors.WorkspaceNotFound("auth", []string{"billing", "search"})
//	errors.NameConflict("auth")
//	errors.AmbiguousTarget("not inside a workspace")
//	errors.ExternalTool("git", "worktree remove", output, err)
//
// # Extracting Exit Codes
//
//	if err != nil {
//	    os.Exit(errors.GetExitCode(err))
//	}
package errors
