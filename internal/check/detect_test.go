package check

import (
	"reflect"
	"testing"

	"github.com/probelab/keycheck/internal/providerspec"
)

func TestDetectCandidates(t *testing.T) {
	cases := []struct {
		key  string
		want []providerspec.ID
	}{
		{"sk-ant-api03-abc", []providerspec.ID{providerspec.Anthropic}},
		{"sk-or-v1-abc", []providerspec.ID{providerspec.OpenRouter}},
		{"sk-or-abc", []providerspec.ID{providerspec.OpenRouter}},
		{"sk-proj-abc", []providerspec.ID{providerspec.OpenAI}},
		{"sk-live-abc", []providerspec.ID{providerspec.OpenAI}},
		{"sk-abc123", []providerspec.ID{providerspec.OpenRouter, providerspec.OpenAI}},
		{"  sk-ant-trimmed  ", []providerspec.ID{providerspec.Anthropic}},
		{"pk-something", nil},
		{"", nil},
		{"AIzaSyFakeGoogleKey", nil},
	}

	for _, tc := range cases {
		got := DetectCandidates(tc.key)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("DetectCandidates(%q) = %v, want %v", tc.key, got, tc.want)
		}
	}
}

func TestDetectCandidatesReturnsCopy(t *testing.T) {
	first := DetectCandidates("sk-shared")
	if len(first) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(first))
	}
	first[0] = providerspec.Anthropic

	second := DetectCandidates("sk-shared")
	if second[0] != providerspec.OpenRouter {
		t.Fatal("rule table was mutated through a returned slice")
	}
}
