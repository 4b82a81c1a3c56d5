package models

import "time"

// Category groups the posts that share a ranked keyword
type Category struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Color       string   `json:"color" yaml:"color"`
	PostIDs     []string `json:"post_ids" yaml:"post_ids"`
}

type TopicCount struct {
	Topic string `json:"topic" yaml:"topic"`
	Count int    `json:"count" yaml:"count"`
}

// AnalysisResult is produced fresh by every analysis and never mutated afterwards
type AnalysisResult struct {
	Categories []Category   `json:"categories" yaml:"categories"`
	Themes     []string     `json:"themes" yaml:"themes"`
	Summary    string       `json:"summary" yaml:"summary"`
	Insights   []string     `json:"insights" yaml:"insights"`
	TopTopics  []TopicCount `json:"top_topics" yaml:"top_topics"`
}

// AnalysisRun is a stored analysis of one library
type AnalysisRun struct {
	ID        string         `json:"id" yaml:"id"`
	Library   string         `json:"library" yaml:"library"`
	Provider  string         `json:"provider" yaml:"provider"`
	Result    AnalysisResult `json:"result" yaml:"result"`
	CreatedAt time.Time      `json:"created_at" yaml:"created_at"`
}
