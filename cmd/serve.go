package cmd

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/briankw/theo/internal/chatbot"
	"github.com/briankw/theo/internal/chatctx"
	"github.com/briankw/theo/internal/config"
	"github.com/briankw/theo/internal/memory"
	"github.com/briankw/theo/internal/openai"
	"github.com/briankw/theo/internal/scheduler"
	"github.com/briankw/theo/internal/server"
	"github.com/briankw/theo/internal/tools"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the theo chatbot server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if host, _ := cmd.Flags().GetString("host"); host != "" {
			cfg.Host = host
		}
		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			cfg.Port = port
		}

		if err := config.EnsureDirs(cfg); err != nil {
			return err
		}

		db, err := memory.OpenDB(cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		turnlog := memory.NewTurnLog(db)
		summaries := memory.NewSummaryStore(db)

		client := openai.New(cfg.OpenAIBaseURL, cfg.OpenAIKey, cfg.CallTimeout())
		embed := memory.NewOpenAIEmbedFunc(client, cfg.EmbedModel)

		index, err := memory.NewIndex(cfg.IndexDir, embed)
		if err != nil {
			return err
		}
		log.Printf("Memory index loaded with %d summaries", index.Count())

		consolidator := memory.NewConsolidator(turnlog, summaries, index, embed, client.CompleteJSON, memory.ConsolidatorConfig{
			Model:    cfg.BasicModel,
			UserName: cfg.UserName,
			BotName:  cfg.BotName,
		})
		retriever := memory.NewRetriever(summaries, index, embed, client.Complete, memory.RetrieverConfig{
			Model:           cfg.BasicModel,
			TopK:            cfg.TopK,
			VectorThreshold: cfg.VectorThreshold,
			FilterThreshold: cfg.FilterThreshold,
		})

		session := chatctx.NewSession(turnlog)
		if err := session.Restore(cmd.Context()); err != nil {
			return err
		}
		log.Printf("Session restored with %d turns from today", session.Len())

		bot := chatbot.New(session, retriever, client.ChatCompletion, tools.DefaultRegistry(),
			chatctx.NewTikTokenEstimator(cfg.AdvancedModel), chatbot.Config{
				Model:            cfg.AdvancedModel,
				MaxContextTokens: cfg.MaxContextTokens,
				MaxToolRounds:    cfg.MaxToolRounds,
				UserName:         cfg.UserName,
				BotName:          cfg.BotName,
			})

		sched := scheduler.New(session, consolidator)
		sched.Start(cfg.ConsolidateInterval())
		defer sched.Stop()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srv := server.New(cfg, bot, turnlog, summaries, consolidator)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().String("host", "", "bind address")
	serveCmd.Flags().Int("port", 0, "listen port")
	rootCmd.AddCommand(serveCmd)
}
