package model

// StagesAnalytics is the visitor funnel: how many opened the page, started
// the test and finished it, as percentages of page opens.
type StagesAnalytics struct {
	OpenedThePagePercentage   int `json:"opened_the_page_percentage"`
	StartedTheTestPercentage  int `json:"started_the_test_percentage"`
	FinishedTheTestPercentage int `json:"finished_the_test_percentage"`
}

// StartLevelCount is one bucket of the start-level selection distribution.
// Sessions that picked "I don't know" are counted under A0 regardless of the
// effective level the ladder began at.
type StartLevelCount struct {
	Level      string `json:"level"`
	Percentage int    `json:"percentage"`
}

// AllAnalytics is the admin analytics payload.
type AllAnalytics struct {
	StagesAnalytics                 StagesAnalytics   `json:"stages_analytics"`
	StartLevelSelectionDistribution []StartLevelCount `json:"start_level_selection_distribution"`
	TopicsSuccess                   []TopicSuccess    `json:"topics_success"`
}
