package index

import "testing"

func path(t *testing.T, m map[string]any, keys ...string) any {
	t.Helper()
	var cur any = m
	for _, k := range keys {
		mm, ok := cur.(map[string]any)
		if !ok {
			t.Fatalf("path %v: %T is not a map at %q", keys, cur, k)
		}
		cur, ok = mm[k]
		if !ok {
			t.Fatalf("path %v: key %q missing", keys, k)
		}
	}
	return cur
}

func TestArticleMapping_VectorDimension(t *testing.T) {
	m := ArticleMapping(384)

	for _, lang := range []string{"en", "ar"} {
		vec := path(t, m, "mappings", "properties", "abstract_vector", "properties", lang).(map[string]any)
		if vec["dimension"] != 384 {
			t.Errorf("%s dimension = %v", lang, vec["dimension"])
		}
		if vec["space_type"] != "cosinesimil" {
			t.Errorf("%s space_type = %v", lang, vec["space_type"])
		}
		method := vec["method"].(map[string]any)
		if method["engine"] != "faiss" || method["name"] != "hnsw" {
			t.Errorf("%s method = %v", lang, method)
		}
	}
}

func TestArticleMapping_KnnEnabled(t *testing.T) {
	m := ArticleMapping(768)
	if path(t, m, "settings", "index", "knn") != true {
		t.Error("index.knn must be enabled")
	}
}

func TestArticleMapping_AnalyzersResolve(t *testing.T) {
	m := ArticleMapping(384)

	analyzers := path(t, m, "settings", "analysis", "analyzer").(map[string]any)
	charFilters := path(t, m, "settings", "analysis", "char_filter").(map[string]any)
	filters := path(t, m, "settings", "analysis", "filter").(map[string]any)
	tokenizers := path(t, m, "settings", "analysis", "tokenizer").(map[string]any)

	// Every custom analyzer must reference only defined components, or
	// index creation fails on the cluster.
	for name, a := range analyzers {
		def := a.(map[string]any)
		if tok := def["tokenizer"].(string); tok != "standard" {
			if _, ok := tokenizers[tok]; !ok {
				t.Errorf("analyzer %s: tokenizer %q undefined", name, tok)
			}
		}
		for _, cf := range def["char_filter"].([]string) {
			if _, ok := charFilters[cf]; !ok {
				t.Errorf("analyzer %s: char_filter %q undefined", name, cf)
			}
		}
		for _, f := range def["filter"].([]string) {
			if f == "lowercase" {
				continue
			}
			if _, ok := filters[f]; !ok {
				t.Errorf("analyzer %s: filter %q undefined", name, f)
			}
		}
	}
}

func TestArticleMapping_TitleAutocomplete(t *testing.T) {
	m := ArticleMapping(384)

	en := path(t, m, "mappings", "properties", "title", "properties", "en").(map[string]any)
	if en["analyzer"] != "en_autocomplete" || en["search_analyzer"] != "en_autocomplete_search" {
		t.Errorf("title.en analyzers = %v", en)
	}
	ar := path(t, m, "mappings", "properties", "title", "properties", "ar").(map[string]any)
	if ar["analyzer"] != "ar_autocomplete" || ar["search_analyzer"] != "ar_autocomplete_search" {
		t.Errorf("title.ar analyzers = %v", ar)
	}
}

func TestArticleMapping_IdentityFieldsNotIndexed(t *testing.T) {
	m := ArticleMapping(384)

	for _, field := range []string{"bitstream_uuid", "chunk_id"} {
		def := path(t, m, "mappings", "properties", field).(map[string]any)
		if def["index"] != false {
			t.Errorf("%s must not be indexed", field)
		}
	}
}

func TestArticleMapping_GeoReferencesNested(t *testing.T) {
	m := ArticleMapping(384)

	geo := path(t, m, "mappings", "properties", "geoReferences").(map[string]any)
	if geo["type"] != "nested" {
		t.Errorf("geoReferences type = %v", geo["type"])
	}
	coords := path(t, geo, "properties", "coordinates").(map[string]any)
	if coords["type"] != "geo_point" || coords["ignore_malformed"] != true {
		t.Errorf("coordinates = %v", coords)
	}
}
