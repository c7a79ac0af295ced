package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/rileyhilliard/pch/internal/config"
	"github.com/rileyhilliard/pch/internal/errors"
	"github.com/rileyhilliard/pch/internal/ui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create, show, and edit the config file",
		Long: `Manage pch configuration.

Config is read from --config, then ./.pch.yaml, then
~/.config/pch/config.yaml. Environment variables (LLM_BASE_URL,
LLM_MODEL, PCH_BACKEND_URL...) and a .env file override it.`,
	}

	cmd.AddCommand(
		newConfigInitCmd(opts),
		newConfigShowCmd(opts),
		newConfigSetCmd(opts),
	)
	return cmd
}

func newConfigInitCmd(opts *rootOptions) *cobra.Command {
	var force, global bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a config file with the defaults",
		Long: `Write a config file holding every setting at its default value.

Examples:
  pch config init
  pch config init --global
  pch config init ./pch.yaml --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := initPath(opts.configPath, global, args)
			if path == "" {
				return errors.New(errors.ErrConfig,
					"Can't find your home directory",
					"Pass a path: pch config init ./.pch.yaml")
			}
			if err := config.WriteDefault(path, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Wrote %s\n", ui.SymbolSuccess, path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	cmd.Flags().BoolVar(&global, "global", false, "write ~/.config/pch/config.yaml")
	return cmd
}

func initPath(explicit string, global bool, args []string) string {
	switch {
	case len(args) == 1:
		return args[0]
	case global:
		return config.GlobalConfigPath()
	case explicit != "":
		return explicit
	default:
		return config.ConfigFileName
	}
}

func newConfigShowCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective config",
		Long: `Print the config after merging the file, defaults and environment.
Secrets are masked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := config.LoadOrDefault(opts.configPath)
			if err != nil {
				if opts.json {
					return writeJSON(cmd.OutOrStdout(), nil, err)
				}
				return err
			}
			data, err := config.Marshal(cfg.Redacted())
			if err != nil {
				return err
			}

			if opts.json {
				var doc map[string]any
				if err := yaml.Unmarshal(data, &doc); err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"path":   path,
					"config": doc,
				}, nil)
			}

			w := cmd.OutOrStdout()
			if path == "" {
				fmt.Fprintln(w, "# no config file, showing defaults")
			} else {
				fmt.Fprintf(w, "# %s\n", path)
			}
			_, err = w.Write(data)
			return err
		},
	}
	addJSONFlag(cmd, opts)
	return cmd
}

func newConfigSetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set one value in the config file",
		Long: `Set a dotted key in the config file, keeping its layout and comments.
The file is created when there isn't one. Values that fail validation
are rolled back.

Examples:
  pch config set backend.url http://localhost:11434/v1
  pch config set history_limit 20`,
		Args: cobra.ExactArgs(2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) != 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return config.KnownKeys(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := strings.TrimSpace(args[0]), args[1]

			path, err := setPath(opts.configPath)
			if err != nil {
				return err
			}
			if err := setConfigValue(path, key, value); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Set %s in %s\n", ui.SymbolSuccess, key, path)
			return nil
		},
	}
}

// setPath picks the file `config set` edits: --config, then whichever
// file would be loaded, then ./.pch.yaml.
func setPath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	path, err := config.Find("")
	if err != nil {
		return "", err
	}
	if path == "" {
		return config.ConfigFileName, nil
	}
	return path, nil
}

// setConfigValue writes key=value into path, creating the file if needed,
// and restores the previous contents when the result doesn't validate.
func setConfigValue(path, key, value string) error {
	old, err := os.ReadFile(path)
	existed := err == nil
	if err != nil && !os.IsNotExist(err) {
		return errors.WrapWithCode(err, errors.ErrConfig, "Can't read "+path, "Check file permissions")
	}
	if !existed {
		if err := os.WriteFile(path, nil, 0644); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig, "Can't create "+path, "Check directory permissions")
		}
	}

	restore := func() {
		if existed {
			_ = os.WriteFile(path, old, 0644)
		} else {
			_ = os.Remove(path)
		}
	}

	if err := config.SetValue(path, key, value); err != nil {
		restore()
		if errors.CodeOf(err) != "" {
			return err
		}
		return errors.WrapWithCode(err, errors.ErrConfig, "Couldn't update "+path, "")
	}

	cfg, err := config.Load(path)
	if err == nil {
		err = config.Validate(cfg)
	}
	if err != nil {
		restore()
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' isn't a valid value for %s", value, key),
			"The config file was left unchanged")
	}
	return nil
}
