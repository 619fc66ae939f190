// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"quarry/common/clickhousedb"
	"quarry/common/daemon"
	"quarry/common/helpers"
	"quarry/common/httpserver"
	"quarry/common/reporter"
	"quarry/common/schema"
	"quarry/common/sqldb"
	"quarry/console"
	"quarry/console/authentication"
	"quarry/console/database"
)

// ServeConfiguration represents the configuration file for the serve command.
type ServeConfiguration struct {
	Reporting  reporter.Configuration
	HTTP       httpserver.Configuration
	Console    console.Configuration `mapstructure:",squash" yaml:",inline"`
	ClickHouse clickhousedb.Configuration
	SQL        sqldb.Configuration
	Auth       authentication.Configuration
	Database   database.Configuration
	Schema     schema.Configuration
}

// Reset resets the serve configuration to its default value.
func (c *ServeConfiguration) Reset() {
	*c = ServeConfiguration{
		Reporting:  reporter.DefaultConfiguration(),
		HTTP:       httpserver.DefaultConfiguration(),
		Console:    console.DefaultConfiguration(),
		ClickHouse: clickhousedb.DefaultConfiguration(),
		SQL:        sqldb.DefaultConfiguration(),
		Auth:       authentication.DefaultConfiguration(),
		Database:   database.DefaultConfiguration(),
		Schema:     schema.DefaultConfiguration(),
	}
}

type serveOptions struct {
	ConfigRelatedOptions
	CheckMode bool
}

// ServeOptions stores the command-line option values for the serve
// command.
var ServeOptions serveOptions

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start Quarry's analysis service",
	Long: `Quarry compiles analysis definitions into backend queries. The serve
command exposes the analysis API over HTTP.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config := ServeConfiguration{}
		config.Reset()
		ServeOptions.Path = args[0]
		if err := ServeOptions.Parse(cmd.OutOrStdout(), "serve", &config); err != nil {
			return err
		}
		config.Console.Version = helpers.Version

		r, err := reporter.New(config.Reporting)
		if err != nil {
			return fmt.Errorf("unable to initialize reporter: %w", err)
		}
		return serveStart(r, config, ServeOptions.CheckMode)
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVarP(&ServeOptions.ConfigRelatedOptions.Dump, "dump", "D", false,
		"Dump configuration before starting")
	serveCmd.Flags().BoolVarP(&ServeOptions.CheckMode, "check", "C", false,
		"Check configuration, but does not start")
}

func serveStart(r *reporter.Reporter, config ServeConfiguration, checkOnly bool) error {
	daemonComponent, err := daemon.New(r)
	if err != nil {
		return fmt.Errorf("unable to initialize daemon component: %w", err)
	}
	httpComponent, err := httpserver.New(r, config.HTTP, httpserver.Dependencies{
		Daemon: daemonComponent,
	})
	if err != nil {
		return fmt.Errorf("unable to initialize HTTP component: %w", err)
	}
	clickhouseComponent, err := clickhousedb.New(r, config.ClickHouse, clickhousedb.Dependencies{
		Daemon: daemonComponent,
	})
	if err != nil {
		return fmt.Errorf("unable to initialize ClickHouse component: %w", err)
	}
	sqlComponent, err := sqldb.New(r, config.SQL)
	if err != nil {
		return fmt.Errorf("unable to initialize SQL component: %w", err)
	}
	authenticationComponent, err := authentication.New(r, config.Auth)
	if err != nil {
		return fmt.Errorf("unable to initialize authentication component: %w", err)
	}
	databaseComponent, err := database.New(r, config.Database)
	if err != nil {
		return fmt.Errorf("unable to initialize database component: %w", err)
	}
	schemaComponent, err := schema.New(config.Schema)
	if err != nil {
		return fmt.Errorf("unable to initialize schema component: %w", err)
	}
	consoleComponent, err := console.New(r, config.Console, console.Dependencies{
		Daemon:     daemonComponent,
		HTTP:       httpComponent,
		Schema:     schemaComponent,
		Auth:       authenticationComponent,
		Database:   databaseComponent,
		SQL:        sqlComponent,
		ClickHouse: clickhouseComponent,
	})
	if err != nil {
		return fmt.Errorf("unable to initialize console component: %w", err)
	}

	// Expose some informations and metrics
	addCommonHTTPHandlers(r, httpComponent)
	versionMetrics(r)

	// If we only asked for a check, stop here.
	if checkOnly {
		return nil
	}

	// Start all the components.
	components := []interface{}{
		httpComponent,
		clickhouseComponent,
		sqlComponent,
		databaseComponent,
		consoleComponent,
	}
	return StartStopComponents(r, daemonComponent, components)
}
