package textnorm

import (
	"strings"
	"testing"
)

func TestCleanQueryText_RemovesPhrases(t *testing.T) {
	got := CleanQueryText(
		"water scarcity in Gaza between 2014 and 2015",
		[]string{"2014", "2015"},
		[]string{"Gaza"},
	)
	if got != "water scarcity in between and" {
		t.Errorf("got %q", got)
	}
}

func TestCleanQueryText_CaseInsensitive(t *testing.T) {
	got := CleanQueryText("Drought in GAZA", nil, []string{"gaza"})
	if got != "Drought in" {
		t.Errorf("got %q", got)
	}
}

func TestCleanQueryText_WholeWordOnly(t *testing.T) {
	// "Amman" inside "Ammanford" must not be touched.
	got := CleanQueryText("history of Ammanford", []string{}, []string{"Amman"})
	if got != "history of Ammanford" {
		t.Errorf("got %q", got)
	}
}

func TestCleanQueryText_LongestFirst(t *testing.T) {
	got := CleanQueryText("Gaza Strip reconstruction", nil, []string{"Gaza", "Gaza Strip"})
	if got != "reconstruction" {
		t.Errorf("containment should leave no fragment, got %q", got)
	}
}

func TestCleanQueryText_PunctuationSpacing(t *testing.T) {
	got := CleanQueryText("droughts in Gaza , since 2014 ?", []string{"2014"}, []string{"Gaza"})
	if got != "droughts in, since?" {
		t.Errorf("got %q", got)
	}
}

func TestCleanQueryText_AdjacentRepeats(t *testing.T) {
	got := CleanQueryText("Gaza Gaza policy", nil, []string{"Gaza"})
	if got != "policy" {
		t.Errorf("got %q", got)
	}
}

func TestCleanQueryText_ArabicPhrase(t *testing.T) {
	got := CleanQueryText("المياه في نابلس خلال 2020", []string{"2020"}, []string{"نابلس"})
	if got != "المياه في خلال" {
		t.Errorf("got %q", got)
	}
}

func TestCleanQueryText_NoPhrases(t *testing.T) {
	got := CleanQueryText("  plain   query  ")
	if got != "plain query" {
		t.Errorf("whitespace should still collapse, got %q", got)
	}
}

func TestLexicalText_KeepsLocationsDropsYears(t *testing.T) {
	got := LexicalText("natural hazards in Gaza between 2014-2015", []string{"2014-2015"})
	if !strings.Contains(got, "Gaza") {
		t.Errorf("location must survive in lexical text, got %q", got)
	}
	for _, y := range []string{"2014", "2015"} {
		if strings.Contains(got, y) {
			t.Errorf("year %s must not survive in lexical text, got %q", y, got)
		}
	}
}

func TestLexicalText_RemovesNoisyTemporals(t *testing.T) {
	got := LexicalText("development over the last decade in Hebron", []string{"the last decade"})
	if strings.Contains(got, "decade") {
		t.Errorf("noisy temporal phrase must be removed, got %q", got)
	}
	if !strings.Contains(got, "Hebron") {
		t.Errorf("got %q", got)
	}
}

func TestLexicalText_SafeTemporalsStayUntilYearStrip(t *testing.T) {
	// "floods of 2014" is year-safe, so the phrase is not removed as noise;
	// only the bare year token goes.
	got := LexicalText("floods of 2014 in the valley", []string{"2014"})
	if got != "floods of in the valley" {
		t.Errorf("got %q", got)
	}
}

func TestSanitize_StripsMarkup(t *testing.T) {
	got := Sanitize("<p>Water&nbsp;scarcity &amp; drought</p><script>alert(1)</script>")
	if got != "Water scarcity & drought" {
		t.Errorf("got %q", got)
	}
}

func TestSanitize_ControlChars(t *testing.T) {
	got := Sanitize("line1\x00line2\x1ftail")
	if got != "line1 line2 tail" {
		t.Errorf("got %q", got)
	}
}

func TestSanitize_PlainTextUntouched(t *testing.T) {
	got := Sanitize("already clean text")
	if got != "already clean text" {
		t.Errorf("got %q", got)
	}
}
