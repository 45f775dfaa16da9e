// Package wpconfig generates the runtime bootstrap configuration. Its
// one obligation: given an install path and a database file path,
// produce a wp-config.php the runtime can load without further input.
package wpconfig

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/sandpress/sandpress/pkg/errors"
	"github.com/sandpress/sandpress/pkg/filesystem"
	"github.com/sandpress/sandpress/pkg/logging"
	"github.com/sandpress/sandpress/pkg/paths"
	"github.com/sandpress/sandpress/pkg/types"
)

var log = logging.GetLogger("wpconfig")

// saltKeys are the authentication keys and salts WordPress expects.
var saltKeys = []string{
	"AUTH_KEY", "SECURE_AUTH_KEY", "LOGGED_IN_KEY", "NONCE_KEY",
	"AUTH_SALT", "SECURE_AUTH_SALT", "LOGGED_IN_SALT", "NONCE_SALT",
}

const saltChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*()-_=+"
const saltLength = 64

// Generator writes the bootstrap config file.
type Generator struct {
	fs    types.FS
	paths paths.Paths
}

// NewGenerator creates a Generator.
func NewGenerator(fsys types.FS, p paths.Paths) *Generator {
	return &Generator{fs: fsys, paths: p}
}

// IsInstalled reports whether the bootstrap config exists.
func (g *Generator) IsInstalled() (bool, error) {
	return filesystem.Exists(g.fs, g.paths.ConfigPath()), nil
}

// Install writes the config file. An existing config is kept unless
// force is set, so site keys stay stable across re-runs.
func (g *Generator) Install(force bool) error {
	installed, err := g.IsInstalled()
	if err != nil {
		return err
	}
	if installed && !force {
		log.Debug().Msg("Bootstrap config already present")
		return nil
	}

	content, err := render(g.paths)
	if err != nil {
		return err
	}
	if err := g.fs.WriteFile(g.paths.ConfigPath(), []byte(content), filesystem.FileMode); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write config %s", g.paths.ConfigPath())
	}

	log.Info().Str("path", g.paths.ConfigPath()).Msg("Bootstrap config generated")
	return nil
}

func render(p paths.Paths) (string, error) {
	var salts strings.Builder
	for _, key := range saltKeys {
		salt, err := randomSalt()
		if err != nil {
			return "", errors.Wrap(err, errors.ErrInternal, "cannot generate salts")
		}
		fmt.Fprintf(&salts, "define( '%s', '%s' );\n", key, salt)
	}

	return fmt.Sprintf(`<?php
/**
 * Generated by sandpress for a disposable test environment.
 * Database constants are placeholders: the db.php drop-in routes all
 * persistence to the managed SQLite file at %s.
 */

define( 'DB_NAME', 'sandpress' );
define( 'DB_USER', '' );
define( 'DB_PASSWORD', '' );
define( 'DB_HOST', 'localhost' );
define( 'DB_CHARSET', 'utf8mb4' );
define( 'DB_COLLATE', '' );

%s
$table_prefix = 'wp_';

define( 'WP_DEBUG', true );
define( 'WP_ENVIRONMENT_TYPE', 'local' );

if ( ! defined( 'ABSPATH' ) ) {
	define( 'ABSPATH', __DIR__ . '/' );
}

require_once ABSPATH . 'wp-settings.php';
`, p.DatabasePath(), salts.String()), nil
}

func randomSalt() (string, error) {
	var b strings.Builder
	max := big.NewInt(int64(len(saltChars)))
	for i := 0; i < saltLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(saltChars[n.Int64()])
	}
	return b.String(), nil
}
