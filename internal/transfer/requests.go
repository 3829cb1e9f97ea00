package transfer

type KeywordCreation struct {
	ProjectID       int64  `json:"project_id"`
	Keyword         string `json:"keyword"`
	Tone            string `json:"tone"`
	TargetWordCount int    `json:"target_word_count"`
}

type IntegrationCreation struct {
	ProjectID int64             `json:"project_id"`
	Type      string            `json:"type"`
	Name      string            `json:"name"`
	Config    map[string]string `json:"config"`
}

type ContentSchedule struct {
	ScheduledContentID int64  `json:"scheduled_content_id"`
	ScheduledDate      string `json:"scheduled_date"` // 2006-01-02
	ScheduledTime      string `json:"scheduled_time"` // 15:04, optional
}
