package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/osakka/axiosgen/internal/server"
	"github.com/osakka/axiosgen/pkg/config"
	cgerrors "github.com/osakka/axiosgen/pkg/errors"
	"github.com/osakka/axiosgen/pkg/generator"
	"github.com/osakka/axiosgen/pkg/logging"
	"github.com/osakka/axiosgen/pkg/metrics"
	"github.com/osakka/axiosgen/pkg/writer"
)

// app holds the state shared by every subcommand of one invocation
type app struct {
	stdout io.Writer
	stderr io.Writer

	configFile string
	noColor    bool

	cfg     config.Config
	logger  logging.Logger
	closer  io.Closer
	metrics *metrics.Registry
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "axiosgen",
		Short: "Generate TypeScript axios services from Swagger and OpenAPI documents",
		Long: `axiosgen reads a Swagger 2.0 or OpenAPI 3 document and writes TypeScript
service classes calling axios, plus interfaces or classes for every definition.

Settings come from axiosgen.yaml (or --config), then AXIOSGEN_* environment
variables (a .env file in the working directory is read first), then flags.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configFile, "config", "c", "", "configuration file (default ./axiosgen.yaml when present)")
	pf.BoolVar(&a.noColor, "no-color", false, "disable colored output")
	config.RegisterLogFlags(pf)

	root.AddCommand(
		a.generateCommand(),
		a.validateCommand(),
		a.serveCommand(),
		a.initConfigCommand(),
		a.versionCommand(),
	)
	return root
}

// setup resolves the configuration: defaults, then the YAML file, then
// environment and flags through viper
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if a.noColor {
		color.NoColor = true
	}

	if err := config.LoadDotEnv(); err != nil {
		return cgerrors.Wrap(err, cgerrors.CategoryConfiguration, "load_dotenv", "cannot read .env")
	}

	a.cfg = config.Default()
	path := a.configFile
	if path == "" {
		path = config.GetDefaultConfigPath()
	}
	if path != "" {
		if err := config.NewLoader(nil).LoadFromFile(path, &a.cfg, false); err != nil {
			return cgerrors.Wrap(err, cgerrors.CategoryConfiguration, "load_config", "cannot load "+path)
		}
	}

	v := config.NewViper()
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return cgerrors.Wrap(err, cgerrors.CategoryInternal, "bind_flags", "cannot bind flags")
	}
	applied := config.ApplyOverrides(v, &a.cfg)

	if err := a.cfg.Validate(); err != nil {
		return err
	}

	a.cfg.Log.Output = a.stderr
	logger, closer, err := logging.NewWithFile("axiosgen", a.cfg.Log)
	if err != nil {
		return cgerrors.Wrap(err, cgerrors.CategoryConfiguration, "setup_logging", "cannot open log file")
	}
	a.logger = logger
	a.closer = closer
	a.metrics = metrics.NewRegistry(logger)

	a.logger.Debug("configuration_resolved",
		"config_file", path,
		"overrides", applied)
	return nil
}

func (a *app) teardown(_ *cobra.Command, _ []string) error {
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}

// skipSetup replaces the persistent setup for commands that need no configuration
func skipSetup(*cobra.Command, []string) error { return nil }

func (a *app) generateCommand() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "generate [file-or-url]",
		Short: "Generate services and definitions",
		Long: `Generate TypeScript services and definitions. The optional argument names
the document, either a local file or an http(s) URL, and takes precedence over
remote_url and source_file from the configuration.`,
		Example: `  axiosgen generate ./swagger.json -o ./src/service
  axiosgen generate https://petstore.swagger.io/v2/swagger.json --model-mode class
  axiosgen generate --multiple-file-mode --include Pet,Store.getInventory`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := a.cfg.Codegen
			if len(args) == 1 {
				setSource(&opts, args[0])
			}

			g := generator.New(a.logger, a.metrics)
			if dryRun {
				files, err := a.render(cmd.Context(), g, &opts)
				if err != nil {
					return err
				}
				newReporter(a.stdout).files(files)
				return nil
			}

			result, err := g.Generate(cmd.Context(), &opts)
			if err != nil {
				return err
			}
			newReporter(a.stdout).generation(result)
			return nil
		},
	}

	config.RegisterCodegenFlags(cmd.Flags())
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the generated files instead of writing them")
	return cmd
}

// render produces the formatted files without touching the output directory
func (a *app) render(ctx context.Context, g *generator.Generator, opts *config.Options) ([]writer.File, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	parsed, err := g.Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	result, err := g.Render(ctx, parsed.Spec, opts)
	if err != nil {
		return nil, err
	}
	w := writer.New(a.logger, a.metrics, writer.NewFormatter(opts))
	return w.Format(ctx, result.Files), nil
}

func (a *app) validateCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate [file-or-url]",
		Short: "Check that a document can be decoded and report validation problems",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := a.cfg.Codegen
			if len(args) == 1 {
				setSource(&opts, args[0])
			}

			result, err := generator.New(a.logger, a.metrics).Load(cmd.Context(), &opts)
			if result != nil {
				newReporter(a.stdout).parse(result)
			}
			if err != nil {
				return err
			}
			if strict && !result.Valid {
				return cgerrors.New(cgerrors.CategoryValidation, "validate_spec",
					fmt.Sprintf("%d validation errors in strict mode", len(result.Errors)))
			}
			return nil
		},
	}

	fs := cmd.Flags()
	d := config.DefaultOptions()
	fs.String("remote-url", "", "URL of the OpenAPI/Swagger document")
	fs.String("source-file", "", "path of a local OpenAPI/Swagger document (JSON or YAML)")
	fs.Duration("fetch-timeout", d.Fetch.Timeout, "timeout for fetching remote documents")
	fs.Int64("max-spec-size", d.Fetch.MaxSize, "maximum size in bytes of a remote document")
	fs.String("cache-dir", "", "directory caching fetched remote documents")
	fs.BoolVar(&strict, "strict", false, "fail when the document has validation errors")
	return cmd
}

func (a *app) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve code generation over HTTP",
		Long: `Serve POST /v1/generate and POST /v1/validate. Generated files are returned
in the response body, nothing is written to disk on the server.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv := server.New(a.cfg.Server, a.logger, a.metrics)
			newReporter(a.stdout).listening(srv.Addr())
			return srv.Start(cmd.Context())
		},
	}
	config.RegisterServerFlags(cmd.Flags())
	return cmd
}

func (a *app) initConfigCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:               "init-config [path]",
		Short:             "Write a configuration file holding the defaults",
		Args:              cobra.MaximumNArgs(1),
		PersistentPreRunE: skipSetup,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultConfigFile
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return cgerrors.New(cgerrors.CategoryConfiguration, "init_config",
					path+" already exists, use --force to overwrite")
			}
			if err := config.GenerateExampleConfig(path); err != nil {
				return cgerrors.Wrap(err, cgerrors.CategoryIO, "init_config", "cannot write "+path)
			}
			newReporter(a.stdout).success("Wrote " + path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "version",
		Short:             "Print the axiosgen version",
		Args:              cobra.NoArgs,
		PersistentPreRunE: skipSetup,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(a.stdout, "axiosgen version %s\n", Version)
		},
	}
}

// setSource points opts at a file or URL given on the command line
func setSource(opts *config.Options, source string) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		opts.RemoteURL = source
		opts.SourceFile = ""
		return
	}
	opts.SourceFile = source
	opts.RemoteURL = ""
}
