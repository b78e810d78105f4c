package ai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

const validScoringJSON = `{
  "scores": {
    "leadership_impact": 62,
    "execution_depth": 58,
    "growth_trajectory": 66,
    "context_adjusted_impact": 71,
    "final_profileiq_score": 64
  },
  "score_explanations": {
    "leadership_impact": "Founded a volunteer program.",
    "execution_depth": "Six months of steady weekly effort.",
    "growth_trajectory": "Scope grew over time.",
    "context_adjusted_impact": "Strong given limited local resources."
  },
  "strengths": ["Initiative", "Consistency"],
  "improvement_areas": ["Quantify outcomes"],
  "guidance_recommendations": [
    {"area": "Impact", "suggestion": "Track families served.", "expected_score_impact": "+3 to +5"}
  ],
  "common_app_summary": ["Founded a food drive.", "Coordinated 12 volunteers.", "Served 40 families."]
}`

func decodeFixture(t *testing.T, raw string) map[string]any {
	t.Helper()
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	return doc
}

func samplePayload() ProfilePayload {
	return ProfilePayload{
		StudentContext: StudentContext{
			GradeLevel:          "11",
			SchoolType:          "public",
			GeographicContext:   "rural",
			ResourceConstraints: "None specified",
		},
		Activities: []ActivityPayload{{
			Title:              "Food drive",
			Description:        "Organised monthly collections",
			DurationMonths:     6,
			HoursPerWeek:       4,
			LeadershipRole:     "founder",
			InitiativeLevel:    "self-started",
			MeasurableOutcomes: "Not specified",
			EvidenceLinks:      []string{},
		}},
	}
}
