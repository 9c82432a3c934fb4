// Package types provides type definitions for structured data used throughout the resume analyzer.
package types

import "strings"

// Experience is a single role on a résumé.
type Experience struct {
	Role        string   `json:"role"`
	Company     string   `json:"company"`
	Duration    string   `json:"duration"`
	Description []string `json:"description"`
}

// Education is a single degree on a résumé.
type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
}

// ResumeData holds the fields extracted from raw résumé text.
// Every field may be empty, but after Normalize no slice is nil.
type ResumeData struct {
	Name       string       `json:"name"`
	Email      string       `json:"email"`
	Phone      string       `json:"phone"`
	Summary    string       `json:"summary"`
	Experience []Experience `json:"experience"`
	Education  []Education  `json:"education"`
	Skills     []string     `json:"skills"`
}

// Normalize trims strings and replaces nil slices with empty ones so the
// record always marshals without nulls.
func (r *ResumeData) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Summary = strings.TrimSpace(r.Summary)

	if r.Experience == nil {
		r.Experience = []Experience{}
	}
	for i := range r.Experience {
		e := &r.Experience[i]
		e.Role = strings.TrimSpace(e.Role)
		e.Company = strings.TrimSpace(e.Company)
		e.Duration = strings.TrimSpace(e.Duration)
		e.Description = compactStrings(e.Description)
	}

	if r.Education == nil {
		r.Education = []Education{}
	}
	for i := range r.Education {
		e := &r.Education[i]
		e.Degree = strings.TrimSpace(e.Degree)
		e.Institution = strings.TrimSpace(e.Institution)
		e.Year = strings.TrimSpace(e.Year)
	}

	r.Skills = compactStrings(r.Skills)
}

// Clone returns a deep copy.
func (r ResumeData) Clone() ResumeData {
	out := r
	out.Skills = append([]string{}, r.Skills...)
	out.Education = append([]Education{}, r.Education...)
	out.Experience = make([]Experience, len(r.Experience))
	for i, e := range r.Experience {
		e.Description = append([]string{}, e.Description...)
		out.Experience[i] = e
	}
	return out
}

// PlainText renders the record back into résumé-like text. It is used to
// rebuild a draft when a stored analysis is reopened.
func (r ResumeData) PlainText() string {
	var sb strings.Builder
	line := func(s string) {
		if s != "" {
			sb.WriteString(s)
			sb.WriteString("\n")
		}
	}

	line(r.Name)
	line(strings.Join(nonEmpty(r.Email, r.Phone), " | "))
	if r.Summary != "" {
		sb.WriteString("\nSummary\n")
		line(r.Summary)
	}
	if len(r.Experience) > 0 {
		sb.WriteString("\nExperience\n")
		for _, e := range r.Experience {
			line(strings.Join(nonEmpty(e.Role, e.Company, e.Duration), " - "))
			for _, d := range e.Description {
				line("- " + d)
			}
		}
	}
	if len(r.Education) > 0 {
		sb.WriteString("\nEducation\n")
		for _, e := range r.Education {
			line(strings.Join(nonEmpty(e.Degree, e.Institution, e.Year), " - "))
		}
	}
	if len(r.Skills) > 0 {
		sb.WriteString("\nSkills\n")
		line(strings.Join(r.Skills, ", "))
	}
	return strings.TrimSpace(sb.String())
}

func compactStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func nonEmpty(values ...string) []string {
	return compactStrings(values)
}
