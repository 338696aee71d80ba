// Package help provides topic-based documentation for data sources and
// functions, shared by the command line (`scql describe`) and the REPL
// (`:describe`).
package help

import (
	"fmt"
	"strings"

	"github.com/sambeau/scql/pkg/scql/code"
	"github.com/sambeau/scql/pkg/scql/errors"
	"github.com/sambeau/scql/pkg/scql/schema"
)

// TopicResult represents the help output for a topic
type TopicResult struct {
	Kind        string        `json:"kind"`
	Name        string        `json:"name"`
	Title       string        `json:"title,omitempty"`
	Description string        `json:"description,omitempty"`
	Usage       string        `json:"usage,omitempty"`
	Dimens      []int64       `json:"dimens,omitempty"`
	Records     int64         `json:"records,omitempty"`
	Writable    bool          `json:"writable,omitempty"`
	Handle      string        `json:"handle,omitempty"`
	Columns     []ColumnEntry `json:"columns,omitempty"`
	Entries     []ListEntry   `json:"entries,omitempty"`
}

// ColumnEntry represents one column of a source
type ColumnEntry struct {
	Label   string  `json:"label"`
	Type    string  `json:"type"`
	Count   int64   `json:"count"`
	Extents []int64 `json:"extents,omitempty"`
}

// ListEntry is one line of a source or function listing
type ListEntry struct {
	Name    string `json:"name"`
	Summary string `json:"summary,omitempty"`
}

// DescribeTopic returns help information for the given topic.
// Topics can be: source names (optionally with a leading $), function
// names, or the keywords sources and functions.
func DescribeTopic(topic string, data *schema.Registry, functions *code.Registry) (*TopicResult, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("no topic specified (try: sources, functions, $iris_data, reshape)")
	}

	switch topic {
	case "sources":
		return describeSources(data), nil
	case "functions":
		return describeFunctions(functions), nil
	}

	if name, found := strings.CutPrefix(topic, "$"); found {
		if s, ok := data.Lookup(name); ok {
			return describeSource(name, s), nil
		}
		return nil, unknownTopicError(topic, data, functions)
	}

	if s, ok := data.Lookup(topic); ok {
		return describeSource(topic, s), nil
	}
	if f, ok := functions.Lookup(topic); ok {
		return describeFunction(f), nil
	}

	return nil, unknownTopicError(topic, data, functions)
}

func describeSource(name string, s *schema.Schema) *TopicResult {
	result := &TopicResult{
		Kind:     "source",
		Name:     "$" + name,
		Title:    s.Title,
		Dimens:   s.Dimens,
		Writable: s.Writable,
		Handle:   string(s.Data),
	}
	if n, ok := s.Records(); ok {
		result.Records = n
	}
	for _, c := range s.Columns {
		result.Columns = append(result.Columns, ColumnEntry{
			Label:   c.Label,
			Type:    c.Type.String(),
			Count:   c.Count,
			Extents: c.Extents,
		})
	}
	return result
}

func describeFunction(f *code.Function) *TopicResult {
	return &TopicResult{
		Kind:        "function",
		Name:        f.Name,
		Usage:       f.Usage,
		Description: f.Description,
	}
}

// describeSources lists every source in registration order
func describeSources(data *schema.Registry) *TopicResult {
	result := &TopicResult{Kind: "source-list", Name: "sources"}
	for _, name := range data.Names() {
		s := data.Get(name)
		result.Entries = append(result.Entries, ListEntry{
			Name:    "$" + name,
			Summary: strings.TrimSpace(s.Title + " " + schema.FormatExtents(s.Dimens)),
		})
	}
	return result
}

// describeFunctions lists every function in registration order
func describeFunctions(functions *code.Registry) *TopicResult {
	result := &TopicResult{Kind: "function-list", Name: "functions"}
	for _, name := range functions.Names() {
		result.Entries = append(result.Entries, ListEntry{
			Name:    name,
			Summary: functions.Get(name).Usage,
		})
	}
	return result
}

// unknownTopicError builds a "did you mean" error from every topic name.
func unknownTopicError(topic string, data *schema.Registry, functions *code.Registry) error {
	candidates := []string{"sources", "functions"}
	candidates = append(candidates, data.Names()...)
	candidates = append(candidates, functions.Names()...)

	err := errors.New("UNDEF-0004", map[string]any{"Topic": topic})
	probe := strings.TrimPrefix(topic, "$")
	suggestions := errors.FindTopMatches(probe, candidates, 3)
	if len(suggestions) == 0 {
		suggestions = prefixed(probe, candidates)
	}
	if len(suggestions) > 0 {
		err.Hints = append([]string{"Did you mean: " + strings.Join(suggestions, ", ") + "?"}, err.Hints...)
	}
	return err
}

func prefixed(prefix string, candidates []string) []string {
	var res []string
	for _, c := range candidates {
		if strings.HasPrefix(c, prefix) && len(res) < 3 {
			res = append(res, c)
		}
	}
	return res
}
