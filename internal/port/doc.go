// Package port allocates dev-server ports for workspace sessions.
//
// Each session that runs a dev server needs its own port. Ports recorded
// in workspace metadata are considered taken, and so is any port another
// process already listens on:
//
//	used, _ := metadata.ServerPorts(ctx, store)
//	p, err := port.Allocate(cfg.PortRange, used, port.ListenCheck)
//
// # Allocation Strategy
//
// Ports are allocated using first-fit: the lowest available value is
// chosen, so ports freed by stopped workspaces are reused first.
package port
