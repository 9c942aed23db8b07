package model

import "fmt"

// LanguageLevel is a proficiency tier on the ordered placement scale.
// A0 is the "does not know the language" sentinel; real test difficulty
// runs from MinLevel to MaxLevel.
type LanguageLevel int

const (
	LevelA0 LanguageLevel = iota + 1
	LevelA1_1
	LevelA1_2
	LevelA2_1
	LevelA2_2
	LevelB1_1
	LevelB1_2
	LevelB1_3
	LevelB2_1
	LevelB2_2
)

const (
	// MinLevel is the lowest difficulty questions are authored at.
	MinLevel = LevelA1_1
	// MaxLevel is the top of the scale.
	MaxLevel = LevelB2_2
)

var levelNames = map[LanguageLevel]string{
	LevelA0:   "A0",
	LevelA1_1: "A1_1",
	LevelA1_2: "A1_2",
	LevelA2_1: "A2_1",
	LevelA2_2: "A2_2",
	LevelB1_1: "B1_1",
	LevelB1_2: "B1_2",
	LevelB1_3: "B1_3",
	LevelB2_1: "B2_1",
	LevelB2_2: "B2_2",
}

// levelDisplayNames maps levels to their human-facing form ("A1.1").
var levelDisplayNames = map[LanguageLevel]string{
	LevelA0:   "A0",
	LevelA1_1: "A1.1",
	LevelA1_2: "A1.2",
	LevelA2_1: "A2.1",
	LevelA2_2: "A2.2",
	LevelB1_1: "B1.1",
	LevelB1_2: "B1.2",
	LevelB1_3: "B1.3",
	LevelB2_1: "B2.1",
	LevelB2_2: "B2.2",
}

// Valid reports whether l is within the known scale.
func (l LanguageLevel) Valid() bool {
	_, ok := levelNames[l]
	return ok
}

// String returns the wire name of the level ("A1_1").
func (l LanguageLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LanguageLevel(%d)", int(l))
}

// DisplayName returns the human-facing name of the level ("A1.1").
func (l LanguageLevel) DisplayName() string {
	if name, ok := levelDisplayNames[l]; ok {
		return name
	}
	return l.String()
}

// Next returns the level one tier above l, capped at MaxLevel.
func (l LanguageLevel) Next() LanguageLevel {
	if l >= MaxLevel {
		return MaxLevel
	}
	return l + 1
}

// Prev returns the level one tier below l, capped at MinLevel.
func (l LanguageLevel) Prev() LanguageLevel {
	if l <= MinLevel {
		return MinLevel
	}
	return l - 1
}

// ParseLanguageLevel resolves a wire name ("A1_1") to a level.
func ParseLanguageLevel(name string) (LanguageLevel, error) {
	for level, n := range levelNames {
		if n == name {
			return level, nil
		}
	}
	return 0, fmt.Errorf("unknown language level %q", name)
}

// EffectiveStartLevel converts a requested start level into the difficulty
// the test actually begins at. Choosing A0 ("I don't know the language")
// starts the ladder at the lowest real level rather than the sentinel.
func EffectiveStartLevel(requested LanguageLevel) LanguageLevel {
	if requested < MinLevel {
		return MinLevel
	}
	if requested > MaxLevel {
		return MaxLevel
	}
	return requested
}
