package utils

import (
	"strings"
	"testing"
)

func TestTeamSlugShape(t *testing.T) {
	s := TeamSlug("Team Falcons")
	if !strings.HasPrefix(s, "team-falcons-") {
		t.Fatalf("slug %q should start with team-falcons-", s)
	}
	suffix := strings.TrimPrefix(s, "team-falcons-")
	if len(suffix) != 6 {
		t.Fatalf("suffix %q has length %d, want 6", suffix, len(suffix))
	}
	if s != strings.ToLower(s) {
		t.Errorf("slug %q is not lowercase", s)
	}
}

func TestTeamSlugUnicode(t *testing.T) {
	s := TeamSlug("Équipe Füchse")
	if !strings.HasPrefix(s, "equipe-fuchse-") {
		t.Errorf("transliterated slug = %q", s)
	}
}

func TestTeamSlugSuffixVaries(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		seen[TeamSlug("Same Name")] = true
	}
	if len(seen) < 2 {
		t.Fatal("50 slugs for the same name produced no variation")
	}
}

func TestEventSlugHasNoSuffix(t *testing.T) {
	if got := EventSlug("Line Follower 2.0"); got != "line-follower-2-0" {
		t.Errorf("event slug = %q", got)
	}
}

func TestRandomSuffixLengthAndAlphabet(t *testing.T) {
	s := RandomSuffix(12)
	if len(s) != 12 {
		t.Fatalf("length = %d, want 12", len(s))
	}
	for _, r := range s {
		if !strings.ContainsRune(suffixAlphabet, r) {
			t.Fatalf("suffix %q contains %q outside the alphabet", s, r)
		}
	}
}
