package keyword

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"lowercases and splits", "Food Pantry near ME", []string{"food", "pantry", "near"}},
		{"punctuation becomes space", "rent-help, now!", []string{"rent", "help", "now"}},
		{"drops short tokens", "a an in job", []string{"job"}},
		{"underscore is a word char", "mental_health", []string{"mental_health"}},
		{"empty", "   ", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestExtractKeywords_RemovesStopWords(t *testing.T) {
	got := ExtractKeywords("The food and housing help")
	want := []string{"food", "housing", "help"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractKeywords = %v, want %v", got, want)
	}
}

func TestExtractKeywords_StopWordsOnly(t *testing.T) {
	if got := ExtractKeywords("the and for with"); len(got) != 0 {
		t.Errorf("ExtractKeywords = %v, want empty", got)
	}
}
