package main

import (
	"fmt"

	"github.com/danmuck/pktcodec/internal/config"
	"github.com/danmuck/pktcodec/internal/logging"
	"github.com/danmuck/pktcodec/internal/observability"
	"github.com/danmuck/pktcodec/internal/output"
	"github.com/danmuck/pktcodec/internal/protocol"
	"github.com/danmuck/pktcodec/internal/protocol/frame"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var pktctlVersion = "0.1.0"

// app holds the flags and the state resolved in PersistentPreRunE. Each
// command tree gets its own app so tests can run commands back to back.
type app struct {
	profileFile string
	codecFile   string
	outputFlag  string
	logLevel    string
	metrics     bool

	profile   profile
	codec     *protocol.Codec
	limits    frame.Limits
	formatter output.Formatter
	logger    zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "pktctl",
		Short: "Encode, decode and inspect scheme-described binary packets",
		Long: `pktctl converts records to framed binary packets and back.

A packet is a 12 byte big-endian header (id, reserved, body length) followed
by the body. Records and schemes are YAML or JSON documents; field order in
the document is the field order on the wire.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if !a.metrics {
				return nil
			}
			return observability.WriteMetrics(cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().StringVar(&a.profileFile, "config", "", "pktctl profile (TOML)")
	root.PersistentFlags().StringVar(&a.codecFile, "codec-config", "", "codec config (TOML), overrides the profile's codec_config")
	root.PersistentFlags().StringVarP(&a.outputFlag, "output", "o", "", "output format: table, json, yaml (default \"table\")")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	root.PersistentFlags().BoolVar(&a.metrics, "metrics", false, "dump codec metrics to stderr on exit")

	root.AddCommand(
		newEncodeCmd(a),
		newDecodeCmd(a),
		newInspectCmd(a),
		newSchemeCmd(a),
		newConfigCmd(),
		newVersionCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	logging.ConfigureRuntime()
	if a.logLevel != "" {
		lvl, ok := logging.ParseLevel(a.logLevel)
		if !ok {
			return fmt.Errorf("unknown log level %q", a.logLevel)
		}
		zerolog.SetGlobalLevel(lvl)
	}
	a.logger = observability.Logger("pktctl")
	observability.RegisterMetrics()

	a.profile = defaultProfile()
	if a.profileFile != "" {
		p, err := loadProfile(a.profileFile)
		if err != nil {
			return err
		}
		a.profile = p
	}
	if a.outputFlag != "" {
		a.profile.Output = a.outputFlag
	}
	if !output.ValidFormat(a.profile.Output) {
		return fmt.Errorf("unknown output format %q (want one of %v)", a.profile.Output, output.Formats)
	}
	if a.codecFile != "" {
		a.profile.CodecConfig = a.codecFile
	}

	codecCfg := config.DefaultCodecConfig()
	if a.profile.CodecConfig != "" {
		loaded, err := config.LoadCodecConfig(a.profile.CodecConfig)
		if err != nil {
			return err
		}
		codecCfg = loaded
	}
	opts, err := codecCfg.Options()
	if err != nil {
		return err
	}
	opts.OnTrailing = observability.TrailingRecorder
	a.codec = protocol.New(opts)
	a.limits = codecCfg.Limits()
	a.formatter = output.NewFormatter(a.profile.Output)

	a.logger.Debug().
		Str("cmd", cmd.CommandPath()).
		Str("trailing", opts.Trailing.String()).
		Str("extra_fields", opts.ExtraFields.String()).
		Bool("verify_length", opts.VerifyLength).
		Uint32("max_body_bytes", a.limits.MaxBodyBytes).
		Msg("pktctl configured")
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show pktctl version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "pktctl version %s\n", pktctlVersion)
			return nil
		},
	}
}
