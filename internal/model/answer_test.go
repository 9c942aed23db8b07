package model

import "testing"

func TestParseGivenAnswerSelectOne(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantIdx int
		wantErr bool
	}{
		{"valid index", "2", 2, false},
		{"index with whitespace", " 1 ", 1, false},
		{"negative index", "-1", 0, true},
		{"index past the options", "4", 0, true},
		{"not a number", "abc", 0, true},
		{"empty", "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseGivenAnswer(AnswerTypeSelectOne, tt.raw, 4)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got.(SelectOneAnswer).Index != tt.wantIdx {
				t.Errorf("index = %d, want %d", got.(SelectOneAnswer).Index, tt.wantIdx)
			}
		})
	}
}

func TestParseGivenAnswerSelectMultiple(t *testing.T) {
	got, err := ParseGivenAnswer(AnswerTypeSelectMultiple, "3,0,2", 4)
	if err != nil {
		t.Fatal(err)
	}
	if got.Wire() != "0,2,3" {
		t.Errorf("wire = %q, want sorted %q", got.Wire(), "0,2,3")
	}

	for _, raw := range []string{"", "0,0", "0,4", "0,,1", "x,1"} {
		if _, err := ParseGivenAnswer(AnswerTypeSelectMultiple, raw, 4); err == nil {
			t.Errorf("ParseGivenAnswer(%q) expected error", raw)
		}
	}
}

func TestParseGivenAnswerFillTheBlank(t *testing.T) {
	got, err := ParseGivenAnswer(AnswerTypeFillTheBlank, "het huis", 0)
	if err != nil {
		t.Fatal(err)
	}
	if got.Wire() != "het huis" {
		t.Errorf("wire = %q, want the text unchanged", got.Wire())
	}

	if _, err := ParseGivenAnswer(AnswerTypeFillTheBlank, "   ", 0); err == nil {
		t.Error("blank-only text should be rejected")
	}
}

func TestParseGivenAnswerUnknownType(t *testing.T) {
	if _, err := ParseGivenAnswer(AnswerType("essay"), "x", 0); err == nil {
		t.Error("unknown answer type should be rejected")
	}
}
