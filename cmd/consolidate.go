package cmd

import (
	"github.com/spf13/cobra"

	"github.com/briankw/theo/internal/config"
	"github.com/briankw/theo/internal/memory"
	"github.com/briankw/theo/internal/openai"
)

var consolidateCmd = &cobra.Command{
	Use:   "consolidate",
	Short: "Consolidate one day's turns into memory",
	Long:  "Run the daily consolidation once and exit. Without --date this consolidates yesterday; with --date it rebuilds that day's summaries even if some already exist.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := config.EnsureDirs(cfg); err != nil {
			return err
		}

		db, err := memory.OpenDB(cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		client := openai.New(cfg.OpenAIBaseURL, cfg.OpenAIKey, cfg.CallTimeout())
		embed := memory.NewOpenAIEmbedFunc(client, cfg.EmbedModel)

		index, err := memory.NewIndex(cfg.IndexDir, embed)
		if err != nil {
			return err
		}

		consolidator := memory.NewConsolidator(
			memory.NewTurnLog(db), memory.NewSummaryStore(db), index, embed, client.CompleteJSON,
			memory.ConsolidatorConfig{
				Model:    cfg.BasicModel,
				UserName: cfg.UserName,
				BotName:  cfg.BotName,
			})

		date, _ := cmd.Flags().GetString("date")
		if date != "" {
			return consolidator.BuildMemoryFor(cmd.Context(), date)
		}
		return consolidator.BuildMemory(cmd.Context())
	},
}

func init() {
	consolidateCmd.Flags().String("date", "", "day to consolidate (YYYY-MM-DD, default yesterday)")
	rootCmd.AddCommand(consolidateCmd)
}
