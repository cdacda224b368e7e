package resource

import (
	"testing"

	"blockfactory/internal/domain"
)

type answer struct {
	text string
	ok   bool
}

// scriptedPrompter replays answers in order and records the annotation it was shown each time.
type scriptedPrompter struct {
	answers  []answer
	errTexts []string
}

func (p *scriptedPrompter) PromptForName(_ string, errText string) (string, bool) {
	p.errTexts = append(p.errTexts, errText)
	if len(p.answers) == 0 {
		return "", false
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a.text, a.ok
}

func TestResolveNameRetriesOnDuplicate(t *testing.T) {
	s := NewStore(nil)
	_, _ = s.Create(domain.KindToolbox, "Taken")
	p := &scriptedPrompter{answers: []answer{{"Taken", true}, {"Fresh", true}}}

	name, ok := ResolveName(s, domain.KindToolbox, p, "Toolbox name")
	if !ok || name != "Fresh" {
		t.Fatalf("ResolveName = %q, %v; want Fresh, true", name, ok)
	}
	if len(p.errTexts) != 2 {
		t.Fatalf("prompted %d times, want 2", len(p.errTexts))
	}
	if p.errTexts[0] != "" || p.errTexts[1] == "" {
		t.Fatalf("annotation should appear only on the retry: %q", p.errTexts)
	}
}

func TestResolveNameBlankCancelsWithoutRetry(t *testing.T) {
	s := NewStore(nil)
	p := &scriptedPrompter{answers: []answer{{"   ", true}, {"Never", true}}}
	name, ok := ResolveName(s, domain.KindToolbox, p, "Toolbox name")
	if ok || name != "" {
		t.Fatalf("blank answer should abort, got %q, %v", name, ok)
	}
	if len(p.errTexts) != 1 {
		t.Fatalf("blank answer must not re-prompt; prompted %d times", len(p.errTexts))
	}
}

func TestResolveNameCancelled(t *testing.T) {
	s := NewStore(nil)
	p := PrompterFunc(func(string, string) (string, bool) { return "ignored", false })
	if _, ok := ResolveName(s, domain.KindBlockLibrary, p, "Library name"); ok {
		t.Fatalf("cancelled prompt should abort")
	}
}

func TestSuggestNearbyNames(t *testing.T) {
	s := NewStore(nil)
	for _, n := range []string{"Level 1 Toolbox", "Level 2 Toolbox", "Math"} {
		_, _ = s.Create(domain.KindToolbox, n)
	}
	got := Suggest(s, domain.KindToolbox, "level 1 toolbx", 1)
	if len(got) != 1 || got[0] != "Level 1 Toolbox" {
		t.Fatalf("Suggest = %v, want [Level 1 Toolbox]", got)
	}
	if got := Suggest(s, domain.KindToolbox, "Completely different", 3); len(got) != 0 {
		t.Fatalf("Suggest should not propose distant names: %v", got)
	}
}
