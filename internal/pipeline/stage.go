package pipeline

import "log/slog"

// Stage is a step of a research run, in order
type Stage string

const (
	StageStart                Stage = "start"
	StageMetadataExtracted    Stage = "metadata_extracted"
	StageCreatorProfiled      Stage = "creator_profiled"
	StageClaimBuilt           Stage = "claim_built"
	StageFactChecksQueried    Stage = "fact_checks_queried"
	StageSearchQueried        Stage = "search_queried"
	StageConfidenceResolved   Stage = "confidence_resolved"
	StageExplanationGenerated Stage = "explanation_generated"
	StageDone                 Stage = "done"
)

func logStage(stage Stage, attrs ...slog.Attr) {
	args := make([]any, 0, len(attrs)+1)
	args = append(args, slog.String("stage", string(stage)))
	for _, a := range attrs {
		args = append(args, a)
	}
	slog.Debug("pipeline: stage", args...)
}
