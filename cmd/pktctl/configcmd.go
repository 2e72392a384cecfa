package main

import (
	"fmt"
	"strings"

	"github.com/danmuck/pktcodec/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Write and validate codec and pktctl config files",
	}
	cmd.AddCommand(newConfigTemplateCmd(), newConfigValidateCmd())
	return cmd
}

func newConfigTemplateCmd() *cobra.Command {
	var (
		kind   string
		target string
		force  bool
	)
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Print or write a config template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if target == "" {
				tmpl, err := config.Template(kind)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), tmpl)
				return nil
			}
			if err := config.WriteTemplate(target, kind, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s config template to %s\n", kind, target)
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "codec", "config kind: "+strings.Join(config.TemplateKinds(), "|"))
	cmd.Flags().StringVar(&target, "out", "", "output path (default stdout)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing config file")
	return cmd
}

func newConfigValidateCmd() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "validate <path>",
		Short: "Validate a config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			switch strings.ToLower(strings.TrimSpace(kind)) {
			case "codec":
				if _, err := config.LoadCodecConfig(path); err != nil {
					return err
				}
			case "pktctl", "cli":
				p, err := loadProfile(path)
				if err != nil {
					return err
				}
				if p.CodecConfig != "" {
					if _, err := config.LoadCodecConfig(p.CodecConfig); err != nil {
						return fmt.Errorf("profile codec_config: %w", err)
					}
				}
			default:
				return fmt.Errorf("unknown config kind: %s", kind)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Validated %s config at %s\n", kind, path)
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "codec", "config kind: "+strings.Join(config.TemplateKinds(), "|"))
	return cmd
}
