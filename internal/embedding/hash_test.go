package embedding

import (
	"context"
	"math"
	"reflect"
	"testing"

	"github.com/hyperjump/nextstep/internal/vector"
)

func TestHashToken(t *testing.T) {
	tests := []struct {
		in   string
		want int32
	}{
		{"abc", 96354},
		{"food", 3148894},
		{"housing", 1100520413},
		{"mental_health", -1677848238}, // wraps past int32
		{"", 0},
	}
	for _, tt := range tests {
		if got := HashToken(tt.in); got != tt.want {
			t.Errorf("HashToken(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestHashEmbedder_Buckets(t *testing.T) {
	e := NewHashEmbedder(0)
	if e.Dimensions() != DefaultHashDimensions {
		t.Fatalf("Dimensions = %d, want %d", e.Dimensions(), DefaultHashDimensions)
	}

	v := e.Vector("abc")
	if v[354] != 1 {
		t.Errorf("v[354] = %v, want 1", v[354])
	}

	// Negative hash uses its absolute value.
	v = e.Vector("mental_health")
	if v[174] != 1 {
		t.Errorf("v[174] = %v, want 1", v[174])
	}

	// employment and transportation collide in bucket 236.
	v = e.Vector("employment transportation")
	if math.Abs(float64(v[236])-1) > 1e-6 {
		t.Errorf("v[236] = %v, want 1 after normalization of a single bucket", v[236])
	}
}

func TestHashEmbedder_Normalized(t *testing.T) {
	e := NewHashEmbedder(DefaultHashDimensions)
	v := e.Vector("food pantry food bank")
	if n := vector.L2Norm(v); math.Abs(n-1) > 1e-6 {
		t.Errorf("L2Norm = %v, want 1", n)
	}
	// food appears twice, so its bucket holds 2/sqrt(2^2+1+1).
	want := 2 / math.Sqrt(6)
	if math.Abs(float64(v[94])-want) > 1e-6 {
		t.Errorf("v[94] = %v, want %v", v[94], want)
	}
}

func TestHashEmbedder_NoTokensIsZero(t *testing.T) {
	e := NewHashEmbedder(DefaultHashDimensions)
	v, err := e.Embed(context.Background(), "a an ?!")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	for i, x := range v {
		if x != 0 {
			t.Fatalf("v[%d] = %v, want all zero", i, x)
		}
	}
}

func TestHashEmbedder_Deterministic(t *testing.T) {
	e := NewHashEmbedder(DefaultHashDimensions)
	texts := []string{"I need help paying rent", "Food bank in Austin", "counseling for anxiety"}
	for _, text := range texts {
		a := e.Vector(text)
		b := NewHashEmbedder(DefaultHashDimensions).Vector(text)
		if !reflect.DeepEqual(a, b) {
			t.Errorf("Vector(%q) is not deterministic", text)
		}
		if s := vector.CosineSimilarity(a, a); math.Abs(s-1) > 1e-6 {
			t.Errorf("self-similarity of %q = %v, want 1", text, s)
		}
	}
	a, b := e.Vector(texts[0]), e.Vector(texts[1])
	if vector.CosineSimilarity(a, b) != vector.CosineSimilarity(b, a) {
		t.Error("cosine similarity is not symmetric")
	}
}
