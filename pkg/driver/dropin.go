package driver

import "fmt"

// renderDropIn produces the full db.php contents. The file is owned by
// sandpress and fully regenerated on every install; hand edits are
// overwritten by design of the install contract.
func renderDropIn(dbDir, dbFileName, entryPath string) string {
	return fmt.Sprintf(`<?php
/**
 * Plugin Name: SQLite Database Integration (Drop-in)
 * Description: Generated by sandpress. Do not edit: this file is fully regenerated on every install.
 *
 * This drop-in points the WordPress database layer at the managed
 * single-file SQLite database instead of a network database server.
 */

if ( ! defined( 'DB_DIR' ) ) {
	define( 'DB_DIR', '%s' );
}
if ( ! defined( 'DB_FILE' ) ) {
	define( 'DB_FILE', '%s' );
}
if ( ! defined( 'SQLITE_MAIN_FILE' ) ) {
	define( 'SQLITE_MAIN_FILE', '%s' );
}

if ( file_exists( SQLITE_MAIN_FILE ) ) {
	require_once SQLITE_MAIN_FILE;
}
`, dbDir, dbFileName, entryPath)
}
