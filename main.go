package main

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/callsense-ai/callsense/agent/contract"
	"github.com/callsense-ai/callsense/agent/llm"
	"github.com/callsense-ai/callsense/agent/state"
	"github.com/callsense-ai/callsense/agent/supervisor"
	cleanerx "github.com/callsense-ai/callsense/pkg/cleaner"
	configx "github.com/callsense-ai/callsense/pkg/config"
	datasetx "github.com/callsense-ai/callsense/pkg/dataset"
	_ "github.com/callsense-ai/callsense/pkg/logger/autoload"
)

type AppConfig struct {
	CSVPath      string `envconfig:"CSV_PATH" split_words:"true"`
	UpdateMemory bool   `envconfig:"UPDATE_MEMORY" split_words:"true" default:"true"`
}

const sampleTranscript = `Hi, this is the third time I am calling about my refund. ` +
	`I was overcharged a fee on my credit card last month and nobody helped me. ` +
	`I already tried the mobile app and the website. ` +
	`If this is not resolved today I want to cancel and close my account.`

func main() {
	ctx := context.Background()

	appCfg := configx.MustNew[AppConfig]("CALLSENSE")

	llmCfg := configx.MustNew[llm.Config]("LLM")
	model, err := llmCfg.NewCapability(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("build llm capability")
	}

	caps := contract.Capabilities{LLM: model}
	if cleanerCfg, err := configx.New[cleanerx.Config]("CLEANER"); err == nil {
		if client, err := cleanerx.New(*cleanerCfg); err == nil {
			caps.Cleaner = client
		} else {
			log.Warn().Err(err).Msg("cleaner misconfigured, using local fallback cleaning")
		}
	}

	memory := state.NewMemoryState()

	var opts []supervisor.Option
	if !appCfg.UpdateMemory {
		opts = append(opts, supervisor.WithoutMemoryUpdate())
	}
	sup, err := supervisor.New(caps, memory, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("build supervisor")
	}

	transcripts, err := loadTranscripts(ctx, appCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("load transcripts")
	}

	for _, t := range transcripts {
		st, err := sup.Run(ctx, supervisor.Request{CallID: t.ID, RawTranscript: t.Text})
		if err != nil {
			log.Fatal().Err(err).Str("call_id", t.ID).Msg("pipeline failed")
		}

		log.Info().
			Str("call_id", st.CallID).
			Str("sentiment", st.Sentiment).
			Str("summary", st.Summary).
			Strs("pain_points", st.PainPoints).
			Strs("recommended_actions", st.RecommendedActions).
			Float64("tool_success_rate", st.Evaluation.ToolSuccessRate).
			Msg("call analyzed")
	}

	log.Info().
		Int("total_calls", memory.TotalCalls).
		Interface("sentiment_counts", memory.SentimentCounts).
		Interface("pain_point_counts", memory.PainPointCounts).
		Float64("avg_faithfulness", memory.AvgFaithfulness).
		Float64("avg_coverage", memory.AvgCoverage).
		Float64("avg_consistency", memory.AvgConsistency).
		Msg("memory snapshot")
}

func loadTranscripts(ctx context.Context, appCfg *AppConfig) ([]contract.Transcript, error) {
	if appCfg.CSVPath != "" {
		return datasetx.NewCSV(appCfg.CSVPath).Load(ctx)
	}

	if pgCfg, err := configx.New[datasetx.PostgresConfig]("POSTGRES"); err == nil && pgCfg.DSN != "" {
		source, err := datasetx.NewPostgres(*pgCfg)
		if err != nil {
			return nil, err
		}
		defer source.Close()
		return source.Load(ctx)
	}

	return []contract.Transcript{{ID: "sample", Text: sampleTranscript}}, nil
}
