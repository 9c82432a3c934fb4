package analysis

import (
	"math"
	"strconv"
	"strings"

	"github.com/jonathan/resume-analyzer/internal/types"
	"github.com/tidwall/gjson"
)

// Score defaults applied when the model omits a field.
const (
	DefaultATSScore                 = 70
	DefaultReadabilityScore         = 75
	DefaultKeywordMatchScore        = 65
	DefaultRecruiterSimulationScore = 80
	DefaultQuantifiedImpactScore    = 60
	DefaultFormattingHealthScore    = 70
)

// DefaultTailoredSummary replaces an empty tailored summary.
const DefaultTailoredSummary = "Expert professional with alignment to target core competencies."

// decodeResumeData reads a model document leniently: wrong shapes become
// empty values instead of errors.
func decodeResumeData(doc string) types.ResumeData {
	root := gjson.Parse(doc)
	r := types.ResumeData{
		Name:    str(root.Get("name")),
		Email:   str(root.Get("email")),
		Phone:   str(root.Get("phone")),
		Summary: str(root.Get("summary")),
		Skills:  strList(root.Get("skills")),
	}

	for _, e := range objects(root.Get("experience")) {
		r.Experience = append(r.Experience, types.Experience{
			Role:        str(e.Get("role")),
			Company:     str(e.Get("company")),
			Duration:    str(e.Get("duration")),
			Description: strList(e.Get("description")),
		})
	}
	for _, e := range objects(root.Get("education")) {
		r.Education = append(r.Education, types.Education{
			Degree:      str(e.Get("degree")),
			Institution: str(e.Get("institution")),
			Year:        str(e.Get("year")),
		})
	}

	r.Normalize()
	return r
}

func decodeAnalysisResult(doc string) types.AnalysisResult {
	root := gjson.Parse(doc)

	missing := root.Get("missingKeywords")
	if !missing.IsArray() {
		missing = root.Get("missingSkills")
	}
	skills := root.Get("skillRoadmap")
	if !skills.IsArray() {
		skills = root.Get("skillRoadmaps")
	}

	a := types.AnalysisResult{
		ATSScore:                 score(root.Get("atsScore"), DefaultATSScore),
		ReadabilityScore:         score(root.Get("readabilityScore"), DefaultReadabilityScore),
		KeywordMatchScore:        score(root.Get("keywordMatchScore"), DefaultKeywordMatchScore),
		QuantifiedImpactScore:    score(root.Get("quantifiedImpactScore"), DefaultQuantifiedImpactScore),
		FormattingHealthScore:    score(root.Get("formattingHealthScore"), DefaultFormattingHealthScore),
		RecruiterSimulationScore: score(root.Get("recruiterSimulationScore"), DefaultRecruiterSimulationScore),
		MissingKeywords:          strList(missing),
		MatchedSkills:            strList(root.Get("matchedSkills")),
		TailoredSummary:          str(root.Get("tailoredSummary")),
		EnhancedBullets:          strList(root.Get("enhancedBullets")),
		VoiceBriefingText:        str(root.Get("voiceBriefingText")),
	}
	if a.TailoredSummary == "" {
		a.TailoredSummary = DefaultTailoredSummary
	}

	for i, w := range objects(root.Get("weeklyRoadmap")) {
		week := str(w.Get("week"))
		if week == "" {
			week = "Week " + strconv.Itoa(i+1)
		} else if _, err := strconv.Atoi(week); err == nil {
			week = "Week " + week
		}
		a.WeeklyRoadmap = append(a.WeeklyRoadmap, types.WeeklyRoadmapItem{
			Week:  week,
			Goal:  str(w.Get("goal")),
			Focus: str(w.Get("focus")),
		})
	}

	for _, s := range objects(skills) {
		item := types.SkillRoadmapItem{
			SkillName:     str(s.Get("skillName")),
			WhyItMatters:  str(s.Get("whyItMatters")),
			LearningPath:  strList(s.Get("learningPath")),
			PracticeTask:  str(s.Get("practiceTask")),
			EstimatedTime: str(s.Get("estimatedTime")),
		}
		for _, res := range objects(s.Get("resources")) {
			title, url := str(res.Get("title")), str(res.Get("url"))
			if title == "" && url == "" {
				continue
			}
			item.Resources = append(item.Resources, types.Resource{Title: title, URL: url})
		}
		if item.SkillName == "" {
			continue
		}
		a.SkillRoadmap = append(a.SkillRoadmap, item)
	}

	a.Normalize()
	return a
}

// score reads a 0-100 score, accepting numbers and numeric strings.
func score(v gjson.Result, def int) int {
	var f float64
	switch v.Type {
	case gjson.Number:
		f = v.Float()
	case gjson.String:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(v.Str, "%")), 64)
		if err != nil {
			return def
		}
		f = parsed
	default:
		return def
	}
	if math.IsNaN(f) {
		return def
	}
	return int(math.Round(math.Max(0, math.Min(100, f))))
}

// str reads scalars as text and ignores objects and arrays.
func str(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return strings.TrimSpace(v.Str)
	case gjson.Number:
		return v.Raw
	default:
		return ""
	}
}

// strList reads a list of scalars; a lone string becomes a one-item list.
func strList(v gjson.Result) []string {
	if v.Type == gjson.String {
		if s := strings.TrimSpace(v.Str); s != "" {
			return []string{s}
		}
		return []string{}
	}
	if !v.IsArray() {
		return []string{}
	}
	out := make([]string, 0, len(v.Array()))
	for _, item := range v.Array() {
		if s := str(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func objects(v gjson.Result) []gjson.Result {
	if !v.IsArray() {
		return nil
	}
	var out []gjson.Result
	for _, item := range v.Array() {
		if item.IsObject() {
			out = append(out, item)
		}
	}
	return out
}
