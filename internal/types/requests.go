package types

// DraftRequest updates any subset of the draft fields.
type DraftRequest struct {
	ResumeText     *string `json:"resume_text,omitempty"`
	JobTitle       *string `json:"job_title,omitempty"`
	JobDescription *string `json:"job_description,omitempty"`
}

// ResumeTextRequest submits pasted résumé text.
type ResumeTextRequest struct {
	Text string `json:"text" validate:"required"`
}

// NavigateRequest asks the controller to show another screen.
type NavigateRequest struct {
	Target string `json:"target" validate:"required"`
}

// ContactMessageRequest is the contact form payload.
type ContactMessageRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,max=5000"`
}

// SpeechRequest asks for an audio rendition of text. An empty text means the
// voice briefing of the current result.
type SpeechRequest struct {
	Text string `json:"text,omitempty" validate:"max=4000"`
}

// JobImportRequest imports a job posting from a URL.
type JobImportRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// InterviewQuestionResponse carries a generated interview question.
type InterviewQuestionResponse struct {
	Question string `json:"question"`
}
