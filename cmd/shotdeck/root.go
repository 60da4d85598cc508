package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/shotdeck/shotdeck-agent/internal/config"
	"github.com/shotdeck/shotdeck-agent/internal/logging"
	"github.com/shotdeck/shotdeck-agent/internal/structure"
	"github.com/shotdeck/shotdeck-agent/internal/template"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	keyTemplates   = "templates"
	keyFallbackDir = "fallback_dir"
	keyLogLevel    = "log_level"
)

// app holds what every subcommand needs once flags, env and the config file
// have been merged.
type app struct {
	v         *viper.Viper
	logger    *slog.Logger
	templates template.Set
	engine    *structure.Engine
}

func NewRoot() *cobra.Command {
	a := &app{v: viper.New()}
	var cfgFile string

	root := &cobra.Command{
		Use:   "shotdeck",
		Short: "Create and edit production folder structures",
		Long: `shotdeck builds project folder trees from named templates, adds shots
and folders to existing projects, renames folders and prints project trees.

Settings come from flags, SHOTDECK_* environment variables or
$HOME/.shotdeck.yaml, in that order of precedence.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd, cfgFile)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.shotdeck.yaml)")
	flags.String("templates", "", "template file (.json, .yaml or .toml); built-in templates when empty")
	flags.String("fallback-dir", "", "base directory used when the target is not writable (default $HOME/Projects)")
	flags.String("log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")

	a.v.BindPFlag(keyTemplates, flags.Lookup("templates"))
	a.v.BindPFlag(keyFallbackDir, flags.Lookup("fallback-dir"))
	a.v.BindPFlag(keyLogLevel, flags.Lookup("log-level"))

	a.v.BindEnv(keyTemplates, config.EnvTemplates)
	a.v.BindEnv(keyFallbackDir, config.EnvFallbackDir)
	a.v.BindEnv(keyLogLevel, config.EnvLogLevel)

	root.AddCommand(
		a.createCmd(),
		a.addShotCmd(),
		a.addFolderCmd(),
		a.renameCmd(),
		a.treeCmd(),
		a.templatesCmd(),
	)
	return root
}

func (a *app) init(cmd *cobra.Command, cfgFile string) error {
	home, _ := os.UserHomeDir()

	if cfgFile != "" {
		a.v.SetConfigFile(cfgFile)
	} else if home != "" {
		a.v.AddConfigPath(home)
		a.v.SetConfigType("yaml")
		a.v.SetConfigName(".shotdeck")
	}

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	a.logger = logging.NewLoggerTo(cmd.ErrOrStderr(), a.v.GetString(keyLogLevel))
	if used := a.v.ConfigFileUsed(); used != "" {
		a.logger.Debug("using config file", "path", logging.SanitizePath(used))
	}

	templates, err := template.Load(strings.TrimSpace(a.v.GetString(keyTemplates)))
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}
	a.templates = templates

	fallback := a.v.GetString(keyFallbackDir)
	if fallback == "" {
		fallback = config.DefaultFallbackBase(home)
	}

	a.engine = structure.New(structure.Config{FallbackBase: fallback, Logger: a.logger})
	a.logger.Debug("engine ready",
		"fallback_dir", logging.SanitizePath(a.engine.Resolver().FallbackBase()),
		"templates", len(a.templates),
	)
	return nil
}

// template resolves a template name against the loaded set the same way the
// agent's API does.
func (a *app) template(op, name string) (*template.Template, error) {
	tmpl, ok := a.templates.Get(name)
	if !ok {
		return nil, structure.Errorf(structure.KindValidation, op, "",
			"unknown template %q (available: %s)", name, strings.Join(a.templates.Names(), ", "))
	}
	return tmpl, nil
}
