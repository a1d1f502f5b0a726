package index

// ArticleMapping returns the settings and mappings for the article index.
// Titles use edge-ngram autocomplete analysis per language, abstracts use
// full content analysis, and the per-language abstract vectors are HNSW
// knn_vector fields of the given dimension. dims must match the embedding
// model serving the cluster.
func ArticleMapping(dims int) map[string]any {
	knnVector := func() map[string]any {
		return map[string]any{
			"type":       "knn_vector",
			"dimension":  dims,
			"space_type": "cosinesimil",
			"method": map[string]any{
				"name":       "hnsw",
				"space_type": "cosinesimil",
				"engine":     "faiss",
				"parameters": map[string]any{
					"ef_construction": 150,
					"m":               32,
				},
			},
		}
	}

	return map[string]any{
		"settings": map[string]any{
			"index": map[string]any{"knn": true},
			"analysis": map[string]any{
				"char_filter": map[string]any{
					"html_strip_cf": map[string]any{"type": "html_strip"},
				},
				"tokenizer": map[string]any{
					"autocomplete_tokenizer": map[string]any{
						"type":        "edge_ngram",
						"min_gram":    3,
						"max_gram":    15,
						"token_chars": []string{"letter", "digit"},
					},
				},
				"filter": map[string]any{
					"english_stop": map[string]any{
						"type":      "stop",
						"stopwords": "_english_",
					},
					"english_stemmer": map[string]any{
						"type":     "stemmer",
						"language": "english",
					},
					"english_possessive_stemmer": map[string]any{
						"type":     "stemmer",
						"language": "possessive_english",
					},
					"arabic_stop": map[string]any{
						"type":      "stop",
						"stopwords": "_arabic_",
					},
					"arabic_stemmer": map[string]any{
						"type":     "stemmer",
						"language": "arabic",
					},
					"arabic_normalization": map[string]any{
						"type": "arabic_normalization",
					},
					"length_3_plus": map[string]any{
						"type": "length",
						"min":  3,
					},
				},
				"analyzer": map[string]any{
					"en_autocomplete": map[string]any{
						"type":        "custom",
						"tokenizer":   "autocomplete_tokenizer",
						"char_filter": []string{"html_strip_cf"},
						"filter": []string{
							"lowercase",
							"english_possessive_stemmer",
							"english_stop",
							"english_stemmer",
						},
					},
					"en_autocomplete_search": map[string]any{
						"type":        "custom",
						"tokenizer":   "standard",
						"char_filter": []string{"html_strip_cf"},
						"filter": []string{
							"lowercase",
							"english_possessive_stemmer",
							"english_stop",
							"english_stemmer",
							"length_3_plus",
						},
					},
					"en_content": map[string]any{
						"type":        "custom",
						"tokenizer":   "standard",
						"char_filter": []string{"html_strip_cf"},
						"filter": []string{
							"lowercase",
							"english_possessive_stemmer",
							"english_stop",
							"english_stemmer",
						},
					},
					"ar_autocomplete": map[string]any{
						"type":        "custom",
						"tokenizer":   "autocomplete_tokenizer",
						"char_filter": []string{"html_strip_cf"},
						"filter": []string{
							"arabic_normalization",
							"arabic_stop",
							"arabic_stemmer",
						},
					},
					"ar_autocomplete_search": map[string]any{
						"type":        "custom",
						"tokenizer":   "standard",
						"char_filter": []string{"html_strip_cf"},
						"filter": []string{
							"arabic_normalization",
							"arabic_stop",
							"arabic_stemmer",
						},
					},
					"ar_content": map[string]any{
						"type":        "custom",
						"tokenizer":   "standard",
						"char_filter": []string{"html_strip_cf"},
						"filter": []string{
							"arabic_normalization",
							"arabic_stop",
							"arabic_stemmer",
						},
					},
				},
				"normalizer": map[string]any{
					"keyword_lowercase": map[string]any{
						"type":   "custom",
						"filter": []string{"lowercase"},
					},
				},
			},
		},
		"mappings": map[string]any{
			"properties": map[string]any{
				"collection": map[string]any{
					"type":       "keyword",
					"doc_values": true,
				},
				// Stored for result identity, never searched.
				"bitstream_uuid": map[string]any{
					"type":  "keyword",
					"index": false,
				},
				"chunk_id": map[string]any{
					"type":  "keyword",
					"index": false,
				},
				"title": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"en": map[string]any{
							"type":            "text",
							"analyzer":        "en_autocomplete",
							"search_analyzer": "en_autocomplete_search",
						},
						"ar": map[string]any{
							"type":            "text",
							"analyzer":        "ar_autocomplete",
							"search_analyzer": "ar_autocomplete_search",
						},
					},
					"dynamic": false,
				},
				"author": map[string]any{
					"type":            "text",
					"analyzer":        "en_autocomplete",
					"search_analyzer": "en_autocomplete_search",
				},
				"abstract": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"en": map[string]any{
							"type":     "text",
							"analyzer": "en_content",
						},
						"ar": map[string]any{
							"type":     "text",
							"analyzer": "ar_content",
						},
					},
					"dynamic": false,
				},
				"abstract_vector": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"en": knnVector(),
						"ar": knnVector(),
					},
					"dynamic": false,
				},
				"hasFiles": map[string]any{
					"type":  "boolean",
					"boost": 3.0,
				},
				"publicationDate": map[string]any{"type": "date"},
				"geoReferences": map[string]any{
					"type": "nested",
					"properties": map[string]any{
						"placeName": map[string]any{
							"type":     "text",
							"analyzer": "en_content",
						},
						"coordinates": map[string]any{
							"type":             "geo_point",
							"ignore_malformed": true,
						},
					},
				},
				"temporalExpressions": map[string]any{"type": "keyword"},
			},
		},
	}
}
