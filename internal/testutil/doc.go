// Package testutil provides test fixtures and git repository helpers.
//
// # Fixtures
//
// Config fixtures are embedded using go:embed:
//
//	fixtures/valid_config.json
//	fixtures/valid_config.toml
//	fixtures/invalid_config.json
//
// Helper functions parse them into config.Config values:
//
//	cfg, err := testutil.ValidConfig()
//	cfg, err := testutil.InvalidConfig()
//
// # Repositories
//
// InitRepo creates a throwaway repository on branch main with one commit;
// tests that need git call it and are skipped when git is missing:
//
//	func TestStart(t *testing.T) {
//	    repo := testutil.InitRepo(t)
//	    testutil.Git(t, repo, "checkout", "-b", "feature-x")
//	    ...
//	}
package testutil
