package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// GivenAnswer is the parsed form of a submitted answer. Exactly one of the
// concrete types below is produced, depending on the question's answer type.
type GivenAnswer interface {
	// Wire renders the answer back into its canonical wire format.
	Wire() string
}

// SelectOneAnswer is a single chosen option index.
type SelectOneAnswer struct {
	Index int
}

func (a SelectOneAnswer) Wire() string { return strconv.Itoa(a.Index) }

// SelectMultipleAnswer is a set of chosen option indices, kept sorted.
type SelectMultipleAnswer struct {
	Indices []int
}

func (a SelectMultipleAnswer) Wire() string {
	parts := make([]string, len(a.Indices))
	for i, idx := range a.Indices {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, ",")
}

// FillTheBlankAnswer is free text typed into the blank.
type FillTheBlankAnswer struct {
	Text string
}

func (a FillTheBlankAnswer) Wire() string { return a.Text }

// ParseGivenAnswer validates and parses a raw wire answer against the
// question's answer type. optionCount bounds the valid index range for the
// select types. Returns a descriptive error for any malformed input; the
// caller maps it to the MalformedAnswer failure without touching history.
func ParseGivenAnswer(answerType AnswerType, raw string, optionCount int) (GivenAnswer, error) {
	switch answerType {
	case AnswerTypeSelectOne:
		idx, err := parseOptionIndex(raw, optionCount)
		if err != nil {
			return nil, err
		}
		return SelectOneAnswer{Index: idx}, nil

	case AnswerTypeSelectMultiple:
		if strings.TrimSpace(raw) == "" {
			return nil, fmt.Errorf("empty index set")
		}
		parts := strings.Split(raw, ",")
		seen := make(map[int]bool, len(parts))
		indices := make([]int, 0, len(parts))
		for _, part := range parts {
			idx, err := parseOptionIndex(part, optionCount)
			if err != nil {
				return nil, err
			}
			if seen[idx] {
				return nil, fmt.Errorf("duplicate index %d", idx)
			}
			seen[idx] = true
			indices = append(indices, idx)
		}
		sort.Ints(indices)
		return SelectMultipleAnswer{Indices: indices}, nil

	case AnswerTypeFillTheBlank:
		if strings.TrimSpace(raw) == "" {
			return nil, fmt.Errorf("empty answer text")
		}
		return FillTheBlankAnswer{Text: raw}, nil

	default:
		return nil, fmt.Errorf("unknown answer type %q", answerType)
	}
}

func parseOptionIndex(s string, optionCount int) (int, error) {
	idx, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("index %q is not a number", s)
	}
	if idx < 0 || idx >= optionCount {
		return 0, fmt.Errorf("index %d out of range [0,%d)", idx, optionCount)
	}
	return idx, nil
}
