package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jo-hoe/certshowcase/internal/core"
	"github.com/jo-hoe/certshowcase/internal/frontend"
	"github.com/jo-hoe/certshowcase/internal/wordcloud"
)

func newServeCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the website",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCoreService(cmd, func(config *core.ServiceConfig, coreService *core.CoreService) error {
				if cmd.Flags().Changed("port") {
					config.Port = port
				}
				return frontend.Run(cmd.Context(), config, coreService)
			})
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 8000, "Port to listen on")
	return cmd
}

func newWordCloudCmd() *cobra.Command {
	var source, method, output string
	var show bool
	cmd := &cobra.Command{
		Use:   "wordcloud",
		Short: "Render the word cloud of a data source",
		Long: `Render the word cloud of a data source.

The source is a column of the data file (title, description, ...) or
certificate_text for the text of converted certificates. The image is
written to the configured output path unless --output is given, and
--show writes the PNG to stdout instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCoreService(cmd, func(config *core.ServiceConfig, coreService *core.CoreService) error {
				source, method := source, method
				if source == "" {
					source = config.WordCloud.Source
				}
				if method == "" {
					method = config.WordCloud.Method
				}
				opts := wordcloud.GenerateOptions{Show: show, ShowTo: cmd.OutOrStdout(), Write: !show, Path: output}
				if opts.Path == "" {
					opts.Path = config.WordCloud.OutputPath
				}
				data, err := coreService.WordCloud(cmd.Context(), source, method, opts)
				if err != nil {
					return err
				}
				if show {
					return nil
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes)\n", opts.OutputPath(), len(data))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&source, "source", "s", "", "Data source (default: configured source)")
	cmd.Flags().StringVarP(&method, "method", "m", "", "Extraction method: simple, use_entities or keyphrases")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: configured output path)")
	cmd.Flags().BoolVar(&show, "show", false, "Write the PNG to stdout")
	return cmd
}

func newConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert",
		Short: "Convert certificate PDFs into JPEG images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCoreService(cmd, func(config *core.ServiceConfig, coreService *core.CoreService) error {
				results, err := coreService.ConvertCertificates(cmd.Context())
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(results))
				for _, result := range results {
					status := "converted"
					if result.Skipped {
						status = "up to date"
					}
					rows = append(rows, []string{result.ID, status, result.OutputPath})
				}
				return printTable(cmd.OutOrStdout(), []string{"ID", "STATUS", "OUTPUT"}, rows)
			})
		},
	}
}

func newCoursesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "courses",
		Short: "List the courses of the data file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCoreService(cmd, func(config *core.ServiceConfig, coreService *core.CoreService) error {
				records, err := coreService.Certificates()
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(records))
				for _, record := range records {
					rows = append(rows, []string{strconv.Itoa(record.Index), record.Month, record.Title})
				}
				return printTable(cmd.OutOrStdout(), []string{"INDEX", "MONTH", "TITLE"}, rows)
			})
		},
	}
}
