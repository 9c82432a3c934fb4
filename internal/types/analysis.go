package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// WeeklyRoadmapItem is one week of the generated learning plan.
type WeeklyRoadmapItem struct {
	Week  string `json:"week"`
	Goal  string `json:"goal"`
	Focus string `json:"focus"`
}

// Resource is a learning resource link.
type Resource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// SkillRoadmapItem is the learning plan for one missing skill.
type SkillRoadmapItem struct {
	SkillName     string     `json:"skillName"`
	WhyItMatters  string     `json:"whyItMatters"`
	LearningPath  []string   `json:"learningPath"`
	Resources     []Resource `json:"resources"`
	PracticeTask  string     `json:"practiceTask"`
	EstimatedTime string     `json:"estimatedTime"`
}

// AnalysisResult is the scored evaluation of a résumé against a job.
// All scores are integers in [0, 100].
type AnalysisResult struct {
	ATSScore                 int                 `json:"atsScore"`
	ReadabilityScore         int                 `json:"readabilityScore"`
	KeywordMatchScore        int                 `json:"keywordMatchScore"`
	QuantifiedImpactScore    int                 `json:"quantifiedImpactScore"`
	FormattingHealthScore    int                 `json:"formattingHealthScore"`
	RecruiterSimulationScore int                 `json:"recruiterSimulationScore"`
	MissingKeywords          []string            `json:"missingKeywords"`
	MatchedSkills            []string            `json:"matchedSkills"`
	TailoredSummary          string              `json:"tailoredSummary"`
	EnhancedBullets          []string            `json:"enhancedBullets"`
	WeeklyRoadmap            []WeeklyRoadmapItem `json:"weeklyRoadmap"`
	SkillRoadmap             []SkillRoadmapItem  `json:"skillRoadmap"`
	VoiceBriefingText        string              `json:"voiceBriefingText,omitempty"`
}

// Normalize clamps scores and replaces nil slices with empty ones.
func (a *AnalysisResult) Normalize() {
	a.ATSScore = ClampScore(a.ATSScore)
	a.ReadabilityScore = ClampScore(a.ReadabilityScore)
	a.KeywordMatchScore = ClampScore(a.KeywordMatchScore)
	a.QuantifiedImpactScore = ClampScore(a.QuantifiedImpactScore)
	a.FormattingHealthScore = ClampScore(a.FormattingHealthScore)
	a.RecruiterSimulationScore = ClampScore(a.RecruiterSimulationScore)

	a.MissingKeywords = compactStrings(a.MissingKeywords)
	a.MatchedSkills = compactStrings(a.MatchedSkills)
	a.EnhancedBullets = compactStrings(a.EnhancedBullets)
	a.TailoredSummary = strings.TrimSpace(a.TailoredSummary)
	a.VoiceBriefingText = strings.TrimSpace(a.VoiceBriefingText)

	if a.WeeklyRoadmap == nil {
		a.WeeklyRoadmap = []WeeklyRoadmapItem{}
	}
	if a.SkillRoadmap == nil {
		a.SkillRoadmap = []SkillRoadmapItem{}
	}
	for i := range a.SkillRoadmap {
		s := &a.SkillRoadmap[i]
		s.LearningPath = compactStrings(s.LearningPath)
		if s.Resources == nil {
			s.Resources = []Resource{}
		}
	}
}

// Clone returns a deep copy.
func (a AnalysisResult) Clone() AnalysisResult {
	out := a
	out.MissingKeywords = append([]string{}, a.MissingKeywords...)
	out.MatchedSkills = append([]string{}, a.MatchedSkills...)
	out.EnhancedBullets = append([]string{}, a.EnhancedBullets...)
	out.WeeklyRoadmap = append([]WeeklyRoadmapItem{}, a.WeeklyRoadmap...)
	out.SkillRoadmap = make([]SkillRoadmapItem, len(a.SkillRoadmap))
	for i, s := range a.SkillRoadmap {
		s.LearningPath = append([]string{}, s.LearningPath...)
		s.Resources = append([]Resource{}, s.Resources...)
		out.SkillRoadmap[i] = s
	}
	return out
}

// ClampScore bounds a score to [0, 100].
func ClampScore(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

// HistoryRecord is a stored analysis for a signed-in user.
type HistoryRecord struct {
	ID             uuid.UUID      `json:"id"`
	UserID         uuid.UUID      `json:"user_id"`
	CreatedAt      time.Time      `json:"created_at"`
	JobTitle       string         `json:"job_title"`
	JobDescription string         `json:"job_description"`
	ResumeData     ResumeData     `json:"resume_data"`
	AnalysisResult AnalysisResult `json:"analysis_result"`
}
