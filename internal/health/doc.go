// Package health checks the host for the external programs grove drives.
//
// Each dependency is reported with a Status:
//
//	StatusOK       - found and usable
//	StatusMissing  - not found; fatal when the check is required
//	StatusDegraded - not found, grove keeps working with reduced features
//
// git is the only required dependency. tmux, gh, the coding assistant and
// the editor are optional:
//
//	report := health.NewChecker(exec, env, cfg).Run(ctx)
//	if !report.Healthy() { ... }
package health
