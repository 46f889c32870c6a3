package entity

// LandmarkCount is the number of body points in a full pose, matching the
// 33-point topology the pose engine emits.
const LandmarkCount = 33

// Landmark is one detected anatomical point. X and Y are normalized to the
// frame ([0,1]); Z is relative depth with no fixed range; Visibility is the
// confidence that the point is not occluded.
type Landmark struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// PoseLandmarks is the ordered full landmark set for one frame,
// index-addressable by ordinal.
type PoseLandmarks []Landmark

// KeypointRecord ties a detected landmark set to its 0-based frame index.
// Frames without a detection produce no record at all.
type KeypointRecord struct {
	FrameIndex int           `json:"frame"`
	Landmarks  PoseLandmarks `json:"landmarks"`
}

var landmarkNames = [LandmarkCount]string{
	"nose",
	"left_eye_inner", "left_eye", "left_eye_outer",
	"right_eye_inner", "right_eye", "right_eye_outer",
	"left_ear", "right_ear",
	"mouth_left", "mouth_right",
	"left_shoulder", "right_shoulder",
	"left_elbow", "right_elbow",
	"left_wrist", "right_wrist",
	"left_pinky", "right_pinky",
	"left_index", "right_index",
	"left_thumb", "right_thumb",
	"left_hip", "right_hip",
	"left_knee", "right_knee",
	"left_ankle", "right_ankle",
	"left_heel", "right_heel",
	"left_foot_index", "right_foot_index",
}

// LandmarkName returns the canonical point name for an ordinal, or "" when
// the ordinal is outside the topology.
func LandmarkName(id int) string {
	if id < 0 || id >= LandmarkCount {
		return ""
	}
	return landmarkNames[id]
}
