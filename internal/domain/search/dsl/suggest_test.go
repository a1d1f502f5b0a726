package dsl

import "testing"

func TestFetchSize_Clamps(t *testing.T) {
	cases := []struct {
		limit int
		want  int
	}{
		{1, 25},
		{3, 25},
		{4, 32},
		{5, 40},
		{8, 64},
		{10, 80},
		{20, 80},
	}
	for _, tc := range cases {
		if got := FetchSize(tc.limit); got != tc.want {
			t.Errorf("FetchSize(%d) = %d, want %d", tc.limit, got, tc.want)
		}
	}
}

func TestSuggest_BodyShape(t *testing.T) {
	body := Suggest("  wat ", 40)

	if body["size"] != 40 {
		t.Errorf("size = %v", body["size"])
	}
	if body["track_total_hits"] != false {
		t.Error("suggest bodies must not count total hits")
	}
	if body["terminate_after"] != suggestTerminateAfter {
		t.Errorf("terminate_after = %v", body["terminate_after"])
	}
	src := body["_source"].([]string)
	if len(src) != 2 || src[0] != "title" || src[1] != "author" {
		t.Errorf("_source = %v", src)
	}

	should := dig(t, body, "query", "bool", "should").([]any)
	if len(should) != 2 {
		t.Fatalf("expected 2 clauses, got %d", len(should))
	}
	if msm := dig(t, body, "query", "bool", "minimum_should_match"); msm != 1 {
		t.Errorf("minimum_should_match = %v", msm)
	}

	prefixClause := dig(t, should[0].(map[string]any), "multi_match").(map[string]any)
	if prefixClause["query"] != "wat" {
		t.Errorf("prefix not trimmed: %q", prefixClause["query"])
	}
	if prefixClause["type"] != "phrase_prefix" {
		t.Errorf("type = %v", prefixClause["type"])
	}
	if prefixClause["boost"] != prefixClauseBoost {
		t.Errorf("boost = %v", prefixClause["boost"])
	}
	fields := prefixClause["fields"].([]string)
	if fields[0] != "title.en^4" || fields[1] != "title.ar^4" || fields[2] != "author^2" {
		t.Errorf("fields = %v", fields)
	}

	fuzzyClause := dig(t, should[1].(map[string]any), "multi_match").(map[string]any)
	if fuzzyClause["operator"] != "and" {
		t.Errorf("operator = %v", fuzzyClause["operator"])
	}
	if fuzzyClause["fuzziness"] != "AUTO" {
		t.Errorf("fuzziness = %v", fuzzyClause["fuzziness"])
	}
	if fuzzyClause["prefix_length"] != 2 || fuzzyClause["max_expansions"] != 50 {
		t.Errorf("fuzzy bounds = %v / %v", fuzzyClause["prefix_length"], fuzzyClause["max_expansions"])
	}
	if _, hasBoost := fuzzyClause["boost"]; hasBoost {
		t.Error("fuzzy clause carries no boost")
	}
}
