package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"

	"github.com/go-logr/stdr"
	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vvakame/selconflict/internal/diagnostic"
	"github.com/vvakame/selconflict/internal/ir"
	"github.com/vvakame/selconflict/internal/log"
	"github.com/vvakame/selconflict/internal/otel"
	"github.com/vvakame/selconflict/internal/schema"
	"github.com/vvakame/selconflict/internal/validation"
)

// errConflicts is returned after the diagnostics are written.
var errConflicts = errors.New("selection conflicts found")

func main() {
	err := realMain(os.Args[1:], os.Stdout, os.Stderr)
	if errors.Is(err, errConflicts) {
		os.Exit(1)
	} else if err != nil {
		stdlog.Fatal(err)
	}
}

func realMain(args []string, stdout, stderr io.Writer) error {
	cmd := newRootCmd(viper.New(), stderr)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	return cmd.ExecuteContext(context.Background())
}

func newRootCmd(v *viper.Viper, stderr io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "selconflict",
		Short:         "selconflict reports GraphQL fields that cannot be merged into one response",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("config", "", "config file (yaml, json or toml)")
	rootCmd.PersistentFlags().IntP("verbosity", "v", 0, "log verbosity")

	rootCmd.AddCommand(newValidateCmd(v, stderr))

	return rootCmd
}

func newValidateCmd(v *viper.Viper, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "validate [flags] documents...",
		Short:   "validate executable documents against a schema",
		Example: "selconflict validate --schema schema.graphqls queries/*.graphql",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindConfig(v, cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), v, args, cmd.OutOrStdout(), stderr)
		},
	}

	flags := cmd.Flags()
	flags.StringSlice("schema", nil, "schema files")
	flags.Int("concurrency", 0, "operations and fragments validated at once, 0 means GOMAXPROCS")
	flags.Bool("cache", true, "memoize flattened fragments and fields")
	flags.String("format", "text", "output format: text, json, yaml or gqlerror")
	flags.String("otel.endpoint", "", "OTLP gRPC endpoint, tracing is disabled when empty")
	flags.String("otel.service", "selconflict", "service name reported to the tracing backend")

	return cmd
}

func bindConfig(v *viper.Viper, cmd *cobra.Command) error {
	v.SetEnvPrefix("selconflict")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	if err := v.BindPFlags(cmd.InheritedFlags()); err != nil {
		return err
	}

	if configFile := v.GetString("config"); configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", configFile, err)
		}
	}

	return nil
}

func runValidate(ctx context.Context, v *viper.Viper, documents []string, stdout, stderr io.Writer) (err error) {
	stdr.SetVerbosity(v.GetInt("verbosity"))
	logger := stdr.New(stdlog.New(stderr, "", stdlog.LstdFlags))
	ctx = log.WithLogger(ctx, logger)

	shutdown, err := otel.Setup(ctx, v.GetString("otel.endpoint"), v.GetString("otel.service"))
	if err != nil {
		return err
	}
	defer func() {
		if sErr := shutdown(context.Background()); sErr != nil && err == nil {
			err = sErr
		}
	}()

	format := v.GetString("format")
	switch format {
	case "text", "json", "yaml", "gqlerror":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	schemaFiles := v.GetStringSlice("schema")
	if len(schemaFiles) == 0 {
		return errors.New("at least one schema file is required")
	}
	schemaSources, err := readSources(schemaFiles)
	if err != nil {
		return err
	}
	s, err := schema.Load(schemaSources...)
	if err != nil {
		return err
	}

	documentSources, err := readSources(documents)
	if err != nil {
		return err
	}
	program, err := ir.Parse(ctx, s, documentSources...)
	if err != nil {
		return err
	}

	stats := &validation.Stats{}
	err = validation.ValidateSelectionConflict(
		ctx, program,
		validation.WithConcurrency(v.GetInt("concurrency")),
		validation.WithCache(v.GetBool("cache")),
		validation.WithStats(stats),
	)
	logger.V(log.Debug).Info(
		"cache stats",
		"fragmentHits", stats.FragmentHits.Load(),
		"fragmentMisses", stats.FragmentMisses.Load(),
		"fieldHits", stats.FieldHits.Load(),
		"fieldMisses", stats.FieldMisses.Load(),
	)

	var list diagnostic.List
	if err != nil && !errors.As(err, &list) {
		return err
	}
	if err := writeDiagnostics(stdout, format, list); err != nil {
		return err
	}
	if len(list) != 0 {
		return errConflicts
	}

	return nil
}

// readSources reads every file, reporting all the files that could not be read.
func readSources(files []string) ([]*ast.Source, error) {
	var result *multierror.Error
	sources := make([]*ast.Source, 0, len(files))
	for _, file := range files {
		b, err := os.ReadFile(file)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		sources = append(sources, &ast.Source{Name: file, Input: string(b)})
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}

	return sources, nil
}

func writeDiagnostics(w io.Writer, format string, list diagnostic.List) error {
	switch format {
	case "json":
		if list == nil {
			list = diagnostic.List{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(list)

	case "gqlerror":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Errors gqlerror.List `json:"errors"`
		}{
			Errors: list.GQLErrors(),
		})

	case "yaml":
		if list == nil {
			list = diagnostic.List{}
		}
		b, err := yaml.Marshal(list)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err

	default:
		if len(list) == 0 {
			_, err := fmt.Fprintln(w, "no conflicts")
			return err
		}
		diagnostic.NewFormatter(w).FormatList(list)
		return nil
	}
}
