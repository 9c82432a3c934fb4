package types

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResumeData_NormalizeNeverMarshalsNull(t *testing.T) {
	var r ResumeData
	r.Normalize()

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "null")
	assert.Equal(t, []Experience{}, r.Experience)
	assert.Equal(t, []Education{}, r.Education)
	assert.Equal(t, []string{}, r.Skills)
}

func TestResumeData_NormalizeTrimsNested(t *testing.T) {
	r := ResumeData{
		Name:       "  Jane  ",
		Experience: []Experience{{Role: " Dev ", Description: []string{" built things ", "", "  "}}},
		Skills:     []string{"Go", " ", "SQL "},
	}
	r.Normalize()

	assert.Equal(t, "Jane", r.Name)
	assert.Equal(t, "Dev", r.Experience[0].Role)
	assert.Equal(t, []string{"built things"}, r.Experience[0].Description)
	assert.Equal(t, []string{"Go", "SQL"}, r.Skills)
}

func TestResumeData_CloneIsDeep(t *testing.T) {
	r := ResumeData{
		Skills:     []string{"Go"},
		Experience: []Experience{{Role: "Dev", Description: []string{"a"}}},
	}
	c := r.Clone()
	c.Skills[0] = "Rust"
	c.Experience[0].Description[0] = "b"

	assert.Equal(t, "Go", r.Skills[0])
	assert.Equal(t, "a", r.Experience[0].Description[0])
}

func TestResumeData_PlainText(t *testing.T) {
	r := ResumeData{
		Name:       "John Doe",
		Email:      "john@example.com",
		Summary:    "Backend engineer",
		Experience: []Experience{{Role: "Engineer", Company: "Acme", Duration: "2019-2024", Description: []string{"Built APIs"}}},
		Education:  []Education{{Degree: "BSc", Institution: "MIT", Year: "2018"}},
		Skills:     []string{"Python", "AWS"},
	}

	text := r.PlainText()
	assert.True(t, strings.HasPrefix(text, "John Doe\njohn@example.com"))
	assert.Contains(t, text, "Engineer - Acme - 2019-2024")
	assert.Contains(t, text, "- Built APIs")
	assert.Contains(t, text, "BSc - MIT - 2018")
	assert.Contains(t, text, "Python, AWS")
}

func TestAnalysisResult_Normalize(t *testing.T) {
	a := AnalysisResult{
		ATSScore:          140,
		ReadabilityScore:  -3,
		KeywordMatchScore: 55,
		SkillRoadmap:      []SkillRoadmapItem{{SkillName: "AWS"}},
	}
	a.Normalize()

	assert.Equal(t, 100, a.ATSScore)
	assert.Equal(t, 0, a.ReadabilityScore)
	assert.Equal(t, 55, a.KeywordMatchScore)
	assert.Equal(t, []string{}, a.MissingKeywords)
	assert.Equal(t, []WeeklyRoadmapItem{}, a.WeeklyRoadmap)
	assert.Equal(t, []Resource{}, a.SkillRoadmap[0].Resources)

	data, err := json.Marshal(a)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "null")
}

func TestAnalysisResult_CloneIsDeep(t *testing.T) {
	a := AnalysisResult{
		MissingKeywords: []string{"Docker"},
		SkillRoadmap:    []SkillRoadmapItem{{SkillName: "AWS", Resources: []Resource{{Title: "Docs"}}}},
	}
	c := a.Clone()
	c.MissingKeywords[0] = "K8s"
	c.SkillRoadmap[0].Resources[0].Title = "Other"

	assert.Equal(t, "Docker", a.MissingKeywords[0])
	assert.Equal(t, "Docs", a.SkillRoadmap[0].Resources[0].Title)
}

func TestParseAppState(t *testing.T) {
	for _, st := range []AppState{StateIdle, StateUploading, StateAnalyzing, StateResult, StateViewingResume, StateRoadmap, StateHistory} {
		got, err := ParseAppState(string(st))
		require.NoError(t, err)
		assert.Equal(t, st, got)
	}

	_, err := ParseAppState("dashboard")
	assert.Error(t, err)
}

func TestAppState_RequiresResult(t *testing.T) {
	assert.True(t, StateResult.RequiresResult())
	assert.True(t, StateViewingResume.RequiresResult())
	assert.True(t, StateRoadmap.RequiresResult())
	assert.False(t, StateIdle.RequiresResult())
	assert.False(t, StateHistory.RequiresResult())
	assert.False(t, StateAnalyzing.RequiresResult())
}
