// Package commands implements the asar command line.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/meigma/asar"
	"github.com/meigma/asar/internal/config"
	"github.com/meigma/asar/sink"
)

// app carries state shared by subcommands after configuration is loaded.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:           "asar",
		Short:         "Convert BetterDiscord themes into Replugged theme archives",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is ./asar.yaml or $HOME/.config/asar/asar.yaml)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("out", "", "directory archives are written to")
	flags.String("s3-bucket", "", "also upload archives to this S3 bucket")
	flags.String("s3-prefix", "", "key prefix for S3 uploads")
	flags.String("s3-region", "", "S3 region")
	flags.String("s3-endpoint", "", "S3 endpoint override, e.g. a MinIO URL")
	flags.String("registry", "", "also push archives under this registry namespace")
	flags.String("registry-tag", "", "tag for registry pushes")
	flags.Bool("plain-http", false, "use plain HTTP for the registry")
	mustBind(a.v, flags, map[string]string{
		"log.level":           "log-level",
		"output.dir":          "out",
		"s3.bucket":           "s3-bucket",
		"s3.prefix":           "s3-prefix",
		"s3.region":           "s3-region",
		"s3.endpoint":         "s3-endpoint",
		"registry.namespace":  "registry",
		"registry.tag":        "registry-tag",
		"registry.plain_http": "plain-http",
	})

	root.AddCommand(
		newConvertCmd(a),
		newServeCmd(a),
		newPushCmd(a),
		newInspectCmd(a),
	)
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = cfg.NewLogger(cmd.ErrOrStderr())
	if used := a.v.ConfigFileUsed(); used != "" {
		a.logger.Debug("using config file", "path", used)
	}
	return nil
}

// newClient builds a client delivering to the configured sinks. S3 and
// registry sinks are added when configured; the output directory sink only
// when local is set.
func (a *app) newClient(ctx context.Context, local bool) (*asar.Client, error) {
	cfg := a.cfg
	opts := []asar.Option{
		asar.WithLogger(a.logger),
		asar.WithConcurrency(cfg.Convert.Concurrency),
	}
	if local {
		opts = append(opts, asar.WithOutputDir(cfg.Output.Dir))
	}
	opts = append(opts, a.registryOptions()...)

	if cfg.S3.Bucket != "" {
		opts = append(opts, asar.WithS3(ctx, sink.S3Config{
			Bucket:          cfg.S3.Bucket,
			Prefix:          cfg.S3.Prefix,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		}))
	}
	if cfg.Registry.Namespace != "" {
		opts = append(opts, asar.WithRegistry(cfg.Registry.Namespace, cfg.Registry.Tag))
	}
	return asar.NewClient(opts...)
}

// registryOptions returns authentication and transport options. Static
// credentials win over the docker config.
func (a *app) registryOptions() []asar.Option {
	reg := a.cfg.Registry
	opts := []asar.Option{asar.WithPlainHTTP(reg.PlainHTTP)}
	if reg.Username != "" && reg.Namespace != "" {
		host, _, _ := strings.Cut(reg.Namespace, "/")
		return append(opts, asar.WithStaticCredentials(host, reg.Username, reg.Password))
	}
	return append(opts, asar.WithDockerConfig())
}

// mustBind binds config keys to flags. Binding only fails for a missing
// flag, which is a programming error.
func mustBind(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %q: %v", name, err))
		}
	}
}
