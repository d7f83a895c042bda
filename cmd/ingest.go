/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tieubaoca/vapi-kb/config"
	"github.com/tieubaoca/vapi-kb/database"
	"github.com/tieubaoca/vapi-kb/service"
	"github.com/tieubaoca/vapi-kb/types"
	"go.uber.org/zap"
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest [crawl.json]",
	Short: "Chunk crawled pages with Unstructured and import them into Weaviate",
	Long: `Reads a crawl dump of the form {"pages":[{"url","title","content"}]},
partitions every page with enough text through the Unstructured API and
creates one Weaviate object per chunk. Pages are processed one at a time
and records are imported in batches.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			cfg.Ingest.File = args[0]
		}
		applyIngestFlags(cmd)
		if cfg.Ingest.File == "" {
			return fmt.Errorf("no crawl file given (pass it as an argument or set ingest.file)")
		}
		if err := requireConfig(config.NeedWeaviate | config.NeedUnstructured); err != nil {
			return err
		}

		store, err := database.NewWeaviateStore(cfg.Weaviate)
		if err != nil {
			return err
		}
		if cfg.Ingest.EnsureClass {
			created, err := store.EnsureClass(cmd.Context())
			if err != nil {
				return err
			}
			if created {
				printSuccess("Created class %s", store.ClassName())
			}
		}

		chunker := service.NewChunker(
			service.NewUnstructuredClient(cfg.Unstructured),
			service.ChunkerConfig{
				MinContentLength: cfg.Ingest.MinContentLen,
				SkipExtensions:   cfg.Ingest.SkipExtensions,
			})
		mapper := service.NewMapper(service.MapperConfig{
			TitlePrefix: cfg.Ingest.TitlePrefix,
			NamePrefix:  cfg.Ingest.NamePrefix,
			DocType:     cfg.Ingest.DocType,
			Source:      cfg.Ingest.Source,
		})

		pages, err := service.LoadPages(cfg.Ingest.File, logger)
		if err != nil {
			return err
		}
		total := len(pages)
		if cfg.Ingest.Limit > 0 && cfg.Ingest.Limit < total {
			total = cfg.Ingest.Limit
		}
		bar := getProgressBar(total, "Processing pages")

		pipeline := service.NewPipeline(chunker, mapper, store, service.IngestOptions{
			Limit:     cfg.Ingest.Limit,
			BatchSize: cfg.Ingest.BatchSize,
			Delay:     cfg.Ingest.Delay,
			OnPage: func(done, total int, result types.PageResult) {
				_ = bar.Add(1)
			},
		}, logger)

		printInfo("Importing %d pages into %s (%s)", total, store.ClassName(), store.URL())
		report, err := pipeline.RunPages(cmd.Context(), pages)
		_ = bar.Finish()
		fmt.Println()
		printReport(report)
		if err != nil {
			logger.Warn("ingestion stopped early", zap.Error(err))
			return err
		}
		return nil
	},
}

func applyIngestFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("limit") {
		cfg.Ingest.Limit, _ = flags.GetInt("limit")
	}
	if flags.Changed("batch-size") {
		cfg.Ingest.BatchSize, _ = flags.GetInt("batch-size")
	}
	if flags.Changed("delay") {
		cfg.Ingest.Delay, _ = flags.GetDuration("delay")
	}
	if flags.Changed("strategy") {
		cfg.Unstructured.Strategy, _ = flags.GetString("strategy")
	}
	if flags.Changed("max-characters") {
		cfg.Unstructured.MaxCharacters, _ = flags.GetInt("max-characters")
	}
	if flags.Changed("new-after") {
		cfg.Unstructured.NewAfterNChars, _ = flags.GetInt("new-after")
	}
	if flags.Changed("ensure-class") {
		cfg.Ingest.EnsureClass, _ = flags.GetBool("ensure-class")
	}
	if flags.Changed("title-prefix") {
		cfg.Ingest.TitlePrefix, _ = flags.GetString("title-prefix")
	}
	if flags.Changed("source") {
		cfg.Ingest.Source, _ = flags.GetString("source")
	}
}

func printReport(report types.IngestReport) {
	printSuccess("Run %s finished", report.RunID)
	fmt.Printf("  Pages:   %d total, %d attempted, %d processed, %d skipped, %d failed\n",
		report.PagesTotal, report.PagesAttempted, report.PagesProcessed, report.PagesSkipped, report.PagesFailed)
	fmt.Printf("  Chunks:  %d\n", report.Chunks)
	fmt.Printf("  Records: %d uploaded, %d failed in %d batches\n",
		report.RecordsUploaded, report.RecordsFailed, report.Batches)
	if report.RecordsFailed > 0 || report.PagesFailed > 0 {
		printFailure("Some pages or records failed, see the log for details")
	}
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().IntP("limit", "l", 0, "Process at most this many pages (0 = all)")
	ingestCmd.Flags().IntP("batch-size", "b", 10, "Records per import batch")
	ingestCmd.Flags().Duration("delay", 0, "Minimum spacing between external calls")
	ingestCmd.Flags().StringP("strategy", "s", "fast", "Unstructured strategy (fast, hi_res, auto)")
	ingestCmd.Flags().Int("max-characters", 1000, "Hard chunk size limit")
	ingestCmd.Flags().Int("new-after", 800, "Soft chunk size limit")
	ingestCmd.Flags().Bool("ensure-class", false, "Create the Weaviate class if it is missing")
	ingestCmd.Flags().String("title-prefix", "", "Prefix added to every record title")
	ingestCmd.Flags().String("source", "", "Source label stored on every record")
}
