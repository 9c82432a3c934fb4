package llm

import "github.com/google/generative-ai-go/genai"

func stringSchema(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: desc}
}

func intSchema(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeInteger, Description: desc}
}

func stringListSchema(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Description: desc, Items: &genai.Schema{Type: genai.TypeString}}
}

func objectSchema(props map[string]*genai.Schema, required ...string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeObject, Properties: props, Required: required}
}

// ResumeDataSchema constrains résumé extraction output.
func ResumeDataSchema() *genai.Schema {
	return objectSchema(map[string]*genai.Schema{
		"name":    stringSchema("Full name of the candidate"),
		"email":   stringSchema(""),
		"phone":   stringSchema(""),
		"summary": stringSchema("Professional summary"),
		"skills":  stringListSchema("Distinct skills"),
		"experience": {
			Type: genai.TypeArray,
			Items: objectSchema(map[string]*genai.Schema{
				"role":        stringSchema(""),
				"company":     stringSchema(""),
				"duration":    stringSchema(""),
				"description": stringListSchema("One entry per bullet"),
			}, "role", "company"),
		},
		"education": {
			Type: genai.TypeArray,
			Items: objectSchema(map[string]*genai.Schema{
				"degree":      stringSchema(""),
				"institution": stringSchema(""),
				"year":        stringSchema(""),
			}, "degree", "institution"),
		},
	}, "name", "skills", "experience", "education")
}

// AnalysisResultSchema constrains scoring output.
func AnalysisResultSchema() *genai.Schema {
	return objectSchema(map[string]*genai.Schema{
		"atsScore":                 intSchema("0-100"),
		"readabilityScore":         intSchema("0-100"),
		"keywordMatchScore":        intSchema("0-100"),
		"quantifiedImpactScore":    intSchema("0-100"),
		"formattingHealthScore":    intSchema("0-100"),
		"recruiterSimulationScore": intSchema("0-100"),
		"missingKeywords":          stringListSchema("Job keywords absent from the resume"),
		"matchedSkills":            stringListSchema("Job skills present in the resume"),
		"tailoredSummary":          stringSchema("Summary rewritten for the target role"),
		"enhancedBullets":          stringListSchema("Stronger versions of existing bullets"),
		"weeklyRoadmap": {
			Type: genai.TypeArray,
			Items: objectSchema(map[string]*genai.Schema{
				"week":  stringSchema("Label such as Week 1"),
				"goal":  stringSchema(""),
				"focus": stringSchema(""),
			}, "week", "goal", "focus"),
		},
		"skillRoadmap": {
			Type: genai.TypeArray,
			Items: objectSchema(map[string]*genai.Schema{
				"skillName":    stringSchema(""),
				"whyItMatters": stringSchema(""),
				"learningPath": stringListSchema(""),
				"resources": {
					Type: genai.TypeArray,
					Items: objectSchema(map[string]*genai.Schema{
						"title": stringSchema(""),
						"url":   stringSchema(""),
					}, "title", "url"),
				},
				"practiceTask":  stringSchema(""),
				"estimatedTime": stringSchema(""),
			}, "skillName", "whyItMatters"),
		},
		"voiceBriefingText": stringSchema("Short spoken briefing of the analysis"),
	}, "atsScore", "readabilityScore", "keywordMatchScore", "missingKeywords", "matchedSkills", "tailoredSummary", "enhancedBullets", "weeklyRoadmap", "skillRoadmap")
}
