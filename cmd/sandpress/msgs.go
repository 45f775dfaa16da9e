package main

// Message constants
const (
	MsgInstallShort = "Provision the WordPress test environment"
	MsgInstallLong  = `The 'install' command provisions a complete disposable test environment:
  - Downloads and installs the WordPress runtime
  - Installs the SQLite persistence driver and generates the db.php drop-in
  - Generates a bootstrap wp-config.php bound to the managed database file

Installation is idempotent: when the environment is already provisioned
and current, no downloads are performed and nothing on disk changes.`

	MsgInstallExample = `  # Provision the default environment
  sandpress install

  # Provision into a specific directory
  sandpress install --root /tmp/wp-test-env

  # Force a full reinstall
  sandpress install --force`

	MsgStatusShort = "Show environment provisioning status"
	MsgStatusLong  = `The 'status' command inspects the environment without side effects and
reports which pieces are present: runtime tree, persistence drop-in,
driver plugin, bootstrap config, database file, and baseline snapshot.`

	MsgSnapshotShort = "Manage the baseline database snapshot"
	MsgSnapshotLong  = `The 'snapshot' commands manage the baseline used for per-test isolation:

  capture   capture the baseline from the live database (once per run)
  restore   copy the baseline back over the live database
  clean     delete the baseline at the end of a run

Test runners normally drive these through the library API; the CLI
surface exists for debugging and for scripting outside Go.`
)
