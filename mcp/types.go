package mcp

import (
	"github.com/viant/emergencykb/schema"
	"github.com/viant/emergencykb/service"
)

type SearchInput struct {
	Query string `json:"query"`
	K     int    `json:"k,omitempty"`
	// Category keeps only results of one taxonomy key.
	Category string `json:"category,omitempty"`
}

type SearchOutput struct {
	Results []schema.Result `json:"results"`
}

type StatsInput struct{}

type StatsOutput struct {
	Stats *service.Stats `json:"stats"`
}

type StatusInput struct{}

type StatusOutput struct {
	Status *service.Status `json:"status"`
	// Indexed is the number of documents currently searchable.
	Indexed int `json:"indexed"`
}
