package usecase

import (
	"github.com/motionlab/dance-analysis-service/internal/domain/entity"
)

// Summarize computes movement statistics over the keypoint stream of one
// run. Pure function of its input. An empty stream yields the explicit
// no-data statistics, never a mean over zero samples.
func Summarize(records []entity.KeypointRecord) entity.MovementStatistics {
	totalVisibility := 0.0
	samples := 0
	for _, record := range records {
		for _, lm := range record.Landmarks {
			totalVisibility += lm.Visibility
			samples++
		}
	}
	if samples == 0 {
		return entity.MovementStatistics{}
	}

	avg := totalVisibility / float64(samples)
	return entity.MovementStatistics{
		PoseDetected:        true,
		TotalFramesAnalyzed: len(records),
		AverageVisibility:   &avg,
	}
}
