package model

import "testing"

func TestLanguageLevelOrdering(t *testing.T) {
	if !(LevelA0 < MinLevel && MinLevel < MaxLevel) {
		t.Error("scale ordering broken")
	}
	if MinLevel != LevelA1_1 || MaxLevel != LevelB2_2 {
		t.Errorf("bounds = %v..%v, want A1_1..B2_2", MinLevel, MaxLevel)
	}
}

func TestNextPrevClamp(t *testing.T) {
	if MaxLevel.Next() != MaxLevel {
		t.Error("Next should clamp at MaxLevel")
	}
	if MinLevel.Prev() != MinLevel {
		t.Error("Prev should clamp at MinLevel")
	}
	if LevelA1_2.Next() != LevelA2_1 || LevelA2_1.Prev() != LevelA1_2 {
		t.Error("adjacent steps broken")
	}
}

func TestParseLanguageLevelRoundTrip(t *testing.T) {
	for l := LevelA0; l <= LevelB2_2; l++ {
		parsed, err := ParseLanguageLevel(l.String())
		if err != nil {
			t.Fatalf("ParseLanguageLevel(%q): %v", l.String(), err)
		}
		if parsed != l {
			t.Errorf("round trip %v -> %q -> %v", l, l.String(), parsed)
		}
	}

	if _, err := ParseLanguageLevel("C1"); err == nil {
		t.Error("unknown level should be rejected")
	}
}

func TestEffectiveStartLevel(t *testing.T) {
	if EffectiveStartLevel(LevelA0) != MinLevel {
		t.Error("A0 should start the ladder at MinLevel")
	}
	if EffectiveStartLevel(LevelB1_2) != LevelB1_2 {
		t.Error("a real level should start as chosen")
	}
}

func TestDisplayName(t *testing.T) {
	if LevelA1_1.DisplayName() != "A1.1" {
		t.Errorf("DisplayName = %q, want A1.1", LevelA1_1.DisplayName())
	}
	if LevelA1_1.String() != "A1_1" {
		t.Errorf("String = %q, want A1_1", LevelA1_1.String())
	}
}
