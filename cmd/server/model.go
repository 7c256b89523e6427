package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Skufu/symptomdx/internal/dataset"
	"github.com/Skufu/symptomdx/internal/diagnosis"
	"github.com/Skufu/symptomdx/internal/gbm"
	"github.com/Skufu/symptomdx/internal/logging"
	"github.com/Skufu/symptomdx/internal/metrics"
)

type SpecializationSource interface {
	Specializations(ctx context.Context) ([]diagnosis.Specialization, error)
}

// loadPipeline builds the model from the static tables. Any error is fatal:
// the server must not accept traffic without a complete model.
func loadPipeline(ctx context.Context, cfg *Config, db SpecializationSource) (*diagnosis.Pipeline, error) {
	start := time.Now()

	set, err := dataset.OpenTraining(cfg.TrainingData, cfg.LabelColumn)
	if err != nil {
		return nil, fmt.Errorf("load training data: %w", err)
	}

	rows, err := loadSpecializations(ctx, cfg, db)
	if err != nil {
		return nil, fmt.Errorf("load specializations: %w", err)
	}

	model, eval, err := diagnosis.Build(set, rows, diagnosis.BuildOptions{
		Classifier: gbm.Config{
			Iterations:      cfg.ModelIterations,
			LearningRate:    cfg.ModelLearningRate,
			NumLeaves:       cfg.ModelNumLeaves,
			MinChildSamples: cfg.ModelMinChildSamples,
			Seed:            int(cfg.ModelSeed),
		},
		TestFraction: cfg.TestFraction,
		SplitSeed:    cfg.ModelSeed,
	})
	if err != nil {
		return nil, fmt.Errorf("build model: %w", err)
	}

	pipeline, err := diagnosis.NewPipeline(model)
	if err != nil {
		return nil, err
	}

	metrics.SetModelShape(model.Schema.Len(), model.Codec.Len(), model.Specializations.Rows())

	event := logging.Info().
		Int("symptoms", model.Schema.Len()).
		Int("diseases", model.Codec.Len()).
		Int("specializations", model.Specializations.Rows()).
		Int("train_rows", eval.TrainRows).
		Int("test_rows", eval.TestRows).
		Dur("took", time.Since(start))
	if eval.TestRows > 0 {
		event = event.Float64("accuracy_pct", eval.Accuracy*100)
	}
	event.Msg("model ready")

	return pipeline, nil
}

func loadSpecializations(ctx context.Context, cfg *Config, db SpecializationSource) ([]diagnosis.Specialization, error) {
	if cfg.SpecializationSource == sourceDB {
		if db == nil {
			return nil, fmt.Errorf("specialization source is db but no database is configured")
		}
		queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return db.Specializations(queryCtx)
	}

	rows, err := dataset.OpenSpecializations(cfg.SpecializationData)
	if err != nil {
		return nil, err
	}
	return diagnosis.FromDataset(rows), nil
}
