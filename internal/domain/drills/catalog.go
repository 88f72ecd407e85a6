package drills

import "github.com/GoodFrogman7/coach-ai/internal/domain/types"

// Issue categories keying the knowledge base.
const (
	CategoryHipRotation      = "hip_rotation"
	CategoryElbowAngles      = "elbow_angles"
	CategoryKneeStability    = "knee_stability"
	CategoryStanceWidth      = "stance_width"
	CategorySpineLean        = "spine_lean"
	CategoryShoulders        = "shoulder_stability"
	CategoryGeneralTechnique = "general_technique"
)

// Catalog is the static drill knowledge base, keyed by issue category.
// Read-only at run time; drills within a category are ordered by
// relevance.
func Catalog() map[string][]types.DrillRecord {
	return map[string][]types.DrillRecord{
		CategoryHipRotation: {
			{
				Name:          "Medicine Ball Rotational Throws",
				Description:   "Stand sideways to a wall, rotate the hips explosively to throw a medicine ball",
				TargetMetrics: []string{"hip_rotation"},
				TargetPhases:  []string{"load", "contact"},
				Intensity: map[types.Intensity]string{
					types.IntensityLight:     "2 sets x 8 reps, 4-6 lbs ball",
					types.IntensityModerate:  "3 sets x 10 reps, 6-8 lbs ball",
					types.IntensityIntensive: "4 sets x 12 reps, 8-10 lbs ball, daily",
				},
				Rationale: "Builds rotational power and hip coiling mechanics",
			},
			{
				Name:          "Hip Rotation Shadow Swings",
				Description:   "Practice the stroke focusing solely on hip rotation, exaggerating the movement",
				TargetMetrics: []string{"hip_rotation"},
				TargetPhases:  []string{"load", "contact"},
				Intensity: map[types.Intensity]string{
					types.IntensityLight:     "50 reps, slow tempo",
					types.IntensityModerate:  "100 reps, match tempo",
					types.IntensityIntensive: "200 reps daily, with resistance band",
				},
				Rationale: "Isolates hip rotation to build muscle memory",
			},
		},
		CategoryElbowAngles: {
			{
				Name:          "Wall Contact Drill",
				Description:   "Stand close to a wall, practice the stroke keeping elbows compact and close to the body",
				TargetMetrics: []string{"left_elbow_angle", "right_elbow_angle"},
				TargetPhases:  []string{"contact", "load"},
				Intensity: map[types.Intensity]string{
					types.IntensityLight:     "3 sets x 10 reps",
					types.IntensityModerate:  "5 sets x 15 reps",
					types.IntensityIntensive: "10 sets x 20 reps, add resistance bands",
				},
				Rationale: "Enforces proper elbow position and compact arm structure",
			},
			{
				Name:          "Elbow-to-Body Connection",
				Description:   "Hold a small towel between elbow and torso during shadow strokes",
				TargetMetrics: []string{"left_elbow_angle", "right_elbow_angle"},
				TargetPhases:  []string{"preparation", "load", "contact"},
				Intensity: map[types.Intensity]string{
					types.IntensityLight:     "50 reps",
					types.IntensityModerate:  "100 reps",
					types.IntensityIntensive: "200 reps, progress to live balls",
				},
				Rationale: "Creates kinesthetic awareness of proper elbow position",
			},
		},
		CategoryKneeStability: {
			{
				Name:          "Split-Step to Stance Drill",
				Description:   "Practice a split-step followed by a balanced stance, holding for 3 seconds",
				TargetMetrics: []string{"left_knee_angle", "right_knee_angle"},
				TargetPhases:  []string{"preparation", "load"},
				Intensity: map[types.Intensity]string{
					types.IntensityLight:     "2 sets x 10 reps",
					types.IntensityModerate:  "3 sets x 15 reps",
					types.IntensityIntensive: "5 sets x 20 reps with weights",
				},
				Rationale: "Builds lower body stability and balance",
			},
		},
		CategoryStanceWidth: {
			{
				Name:          "Ladder Footwork Drill",
				Description:   "Use an agility ladder, practice split-stepping into a consistent stance width",
				TargetMetrics: []string{"stance_width_normalized"},
				TargetPhases:  []string{"preparation"},
				Intensity: map[types.Intensity]string{
					types.IntensityLight:     "3 minutes",
					types.IntensityModerate:  "5 minutes",
					types.IntensityIntensive: "10 minutes with shadow strokes",
				},
				Rationale: "Develops consistent footwork and stance positioning",
			},
			{
				Name:          "Cone Placement Training",
				Description:   "Place cones at optimal foot positions, practice hitting from the marked stance",
				TargetMetrics: []string{"stance_width_normalized"},
				TargetPhases:  []string{"preparation", "load"},
				Intensity: map[types.Intensity]string{
					types.IntensityLight:     "20 balls",
					types.IntensityModerate:  "50 balls",
					types.IntensityIntensive: "100 balls across multiple sessions",
				},
				Rationale: "Provides visual feedback for proper stance width",
			},
		},
		CategorySpineLean: {
			{
				Name:          "Mirror Posture Check",
				Description:   "Practice the stroke in front of a mirror, focusing on maintaining the spine angle",
				TargetMetrics: []string{"spine_lean"},
				TargetPhases:  []string{"preparation", "load", "contact"},
				Intensity: map[types.Intensity]string{
					types.IntensityLight:     "5 minutes daily",
					types.IntensityModerate:  "10 minutes daily",
					types.IntensityIntensive: "15 minutes twice daily with video recording",
				},
				Rationale: "Visual feedback for posture correction",
			},
		},
		CategoryShoulders: {
			{
				Name:          "Resistance Band Shoulder Rotations",
				Description:   "Use resistance bands to strengthen shoulder stability through the stroke motion",
				TargetMetrics: []string{"left_shoulder_angle", "right_shoulder_angle"},
				TargetPhases:  []string{"preparation", "load"},
				Intensity: map[types.Intensity]string{
					types.IntensityLight:     "2 sets x 10 reps, light band",
					types.IntensityModerate:  "3 sets x 15 reps, medium band",
					types.IntensityIntensive: "4 sets x 20 reps, heavy band",
				},
				Rationale: "Builds shoulder strength and stability",
			},
		},
		CategoryGeneralTechnique: {
			{
				Name:          "Slow-Motion Shadow Strokes",
				Description:   "Execute the full stroke in slow motion, focusing on feeling each phase",
				TargetMetrics: []string{"all"},
				TargetPhases:  []string{"all"},
				Intensity: map[types.Intensity]string{
					types.IntensityLight:     "25 reps",
					types.IntensityModerate:  "50 reps",
					types.IntensityIntensive: "100 reps with video analysis",
				},
				Rationale: "Builds muscle memory and movement awareness",
			},
			{
				Name:          "Video Review Sessions",
				Description:   "Record yourself and compare side by side with the reference",
				TargetMetrics: []string{"all"},
				TargetPhases:  []string{"all"},
				Intensity: map[types.Intensity]string{
					types.IntensityLight:     "1x per week",
					types.IntensityModerate:  "2x per week",
					types.IntensityIntensive: "3x per week with detailed notes",
				},
				Rationale: "Provides objective feedback on progress",
			},
		},
	}
}
