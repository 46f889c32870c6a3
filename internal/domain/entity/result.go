package entity

// MovementStatistics summarizes the keypoint stream of one analysis run.
// When no frame yielded a detection, PoseDetected is false and the numeric
// fields are absent from the encoding.
type MovementStatistics struct {
	PoseDetected        bool     `json:"pose_detected"`
	TotalFramesAnalyzed int      `json:"total_frames_analyzed,omitempty"`
	AverageVisibility   *float64 `json:"average_visibility,omitempty"`
}

// AnalysisResult is the immutable snapshot produced when a pipeline run
// finishes. Both outputs carry the source fps/resolution and frame count.
type AnalysisResult struct {
	InputFile      string             `json:"input_file"`
	OverlayFile    string             `json:"output_file"`
	SkeletonFile   string             `json:"skeleton_only_file"`
	ResultsFile    string             `json:"-"`
	TotalFrames    int                `json:"total_frames"`
	DetectedFrames int                `json:"detected_frames"`
	DetectionRate  float64            `json:"detection_rate"`
	FPS            float64            `json:"fps"`
	Width          int                `json:"width"`
	Height         int                `json:"height"`
	Keypoints      []KeypointRecord   `json:"keypoint_data"`
	Statistics     MovementStatistics `json:"movement_statistics"`
}
