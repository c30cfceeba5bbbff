// Package app provides the application context for grove.
//
// This package wires the repository-scoped components together using the
// functional options pattern, enabling easy testing through dependency
// injection.
//
// # Creating an App
//
// New discovers the repository from the working directory, loads its
// configuration and builds the lifecycle manager and cleanup engine:
//
//	// Production usage
//	a, err := app.New(ctx)
//
//	// Testing with custom dependencies
//	a, err := app.New(ctx,
//	    app.WithWorkDir(repo),
//	    app.WithMultiplexer(multiplexer.NewFake()),
//	    app.WithStore(metadata.NewMemoryStore()),
//	)
//
// The apptest subpackage builds a ready-made App around a throwaway git
// repository.
package app
