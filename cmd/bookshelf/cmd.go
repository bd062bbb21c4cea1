// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"context"
	"encoding/json"
	"fmt"
	nethttp "net/http"

	"github.com/z5labs/schemaroute"
	"github.com/z5labs/schemaroute/app"
	"github.com/z5labs/schemaroute/config"
	httpserver "github.com/z5labs/schemaroute/http"
	"github.com/z5labs/schemaroute/internal/bookshelf"
	"github.com/z5labs/schemaroute/otel"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	var infoPath string

	root := &cobra.Command{
		Use:           "bookshelf",
		Short:         "A book catalogue with a validated, self documenting HTTP api",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&infoPath, "config", "c", "", "YAML file with the document title, version and description")

	cfg := func() bookshelf.Config {
		return bookshelf.ConfigFromEnv(config.ReaderOf(infoPath))
	}

	root.AddCommand(newServeCmd(cfg), newOpenAPICmd(cfg))
	return root
}

func newServeCmd(cfg func() bookshelf.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the api",
		Long: `Serve the api on HTTP_ADDR (default :8080).

Books are kept in memory unless BOOKSHELF_STORE=postgres, in which case
POSTGRES_URL is required. Covers go to MinIO when MINIO_ENDPOINT is set and
book.created events go to Kafka when KAFKA_BROKERS is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := serve(cmd.Context(), cfg())
			app.LogError(schemaroute.LogHandler("bookshelf"), err)
			return err
		},
	}
}

func serve(ctx context.Context, cfg bookshelf.Config) error {
	srv := httpserver.FromEnv()

	runtime := app.WithHooks(func(ctx context.Context, hooks *app.HookRegistry) (httpserver.App, error) {
		api, err := bookshelf.Open(ctx, cfg, hooks)
		if err != nil {
			return httpserver.App{}, err
		}

		return httpserver.Build(srv, app.Build(func(context.Context) (nethttp.Handler, error) {
			return api, nil
		})).Build(ctx)
	})

	return app.Run(ctx, otel.Build(otel.FromEnv("bookshelf", version), runtime))
}

func newOpenAPICmd(cfg func() bookshelf.Config) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "openapi",
		Short: "Print the api document",
		Long:  "Print the api document without connecting to any backend.",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := bookshelf.Document(cmd.Context(), cfg())
			if err != nil {
				return err
			}
			spec := api.Document()

			var b []byte
			switch format {
			case "json":
				b, err = json.MarshalIndent(spec, "", "  ")
			case "yaml":
				b, err = spec.MarshalYAML()
			default:
				return fmt.Errorf("unsupported format %q, expected json or yaml", format)
			}
			if err != nil {
				return fmt.Errorf("failed to encode document: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	return cmd
}
