package models

// SentimentCounts aggregates sentiment labels across an analyzed batch.
type SentimentCounts struct {
	Positive int `json:"positiveSentiments" dynamodbav:"positiveSentiments"`
	Neutral  int `json:"neutralSentiments" dynamodbav:"neutralSentiments"`
	Negative int `json:"negativeSentiments" dynamodbav:"negativeSentiments"`
}

// Company is a directory entry. Logo is resolved at request time from the
// logo API and never persisted.
type Company struct {
	ID                string `json:"id" dynamodbav:"id"`
	Slug              string `json:"slug" dynamodbav:"slug"`
	Name              string `json:"name" dynamodbav:"name"`
	Logo              string `json:"logo,omitempty" dynamodbav:"-"`
	Website           string `json:"website,omitempty" dynamodbav:"website,omitempty"`
	Summary           string `json:"summary,omitempty" dynamodbav:"summary,omitempty"`
	YearFounded       int    `json:"yearFounded,omitempty" dynamodbav:"yearFounded,omitempty"`
	NumberOfEmployees int    `json:"numberOfEmployees,omitempty" dynamodbav:"numberOfEmployees,omitempty"`
	EstimatedRevenue  string `json:"estimatedRevenue,omitempty" dynamodbav:"estimatedRevenue,omitempty"`

	SentimentCounts
}

// WordFrequency is one entry of a ranked word-frequency table.
type WordFrequency struct {
	Word  string `json:"word" dynamodbav:"word"`
	Count int    `json:"count" dynamodbav:"count"`
}

// IndustryAnalysis is the computed analysis for an industry bucket.
type IndustryAnalysis struct {
	SentimentCounts
	Summary        string          `json:"summary,omitempty" dynamodbav:"summary,omitempty"`
	SentimentWords []WordFrequency `json:"sentimentWords,omitempty" dynamodbav:"sentimentWords,omitempty"`
}
