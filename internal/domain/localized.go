package domain

// Language codes of the bilingual corpus. Every localized field carries at
// most one value per code.
const (
	LangEN = "en"
	LangAR = "ar"
)

// Langs lists the supported language codes in canonical order.
func Langs() []string { return []string{LangEN, LangAR} }

// LocalizedText holds a text value per language. An empty string means the
// value is absent for that language. Sanitization never produces an empty
// present value, and absent fields stay off the wire via omitempty.
type LocalizedText struct {
	EN string `json:"en,omitempty"`
	AR string `json:"ar,omitempty"`
}

// Get returns the value for a language code, "" when absent.
func (t LocalizedText) Get(lang string) string {
	switch lang {
	case LangEN:
		return t.EN
	case LangAR:
		return t.AR
	}
	return ""
}

// Set assigns the value for a language code. Unknown codes are ignored.
func (t *LocalizedText) Set(lang, value string) {
	switch lang {
	case LangEN:
		t.EN = value
	case LangAR:
		t.AR = value
	}
}

// Has reports whether a value is present for the language.
func (t LocalizedText) Has(lang string) bool { return t.Get(lang) != "" }

// IsEmpty reports whether both languages are absent.
func (t LocalizedText) IsEmpty() bool { return t.EN == "" && t.AR == "" }

// LocalizedVector holds an embedding per language. A nil slice means the
// vector is absent for that language; absence is never encoded as a
// zero-filled vector.
type LocalizedVector struct {
	EN []float32 `json:"en,omitempty"`
	AR []float32 `json:"ar,omitempty"`
}

// Set assigns the vector for a language code. Unknown codes are ignored.
func (v *LocalizedVector) Set(lang string, vec []float32) {
	switch lang {
	case LangEN:
		v.EN = vec
	case LangAR:
		v.AR = vec
	}
}

// Get returns the vector for a language code, nil when absent.
func (v LocalizedVector) Get(lang string) []float32 {
	switch lang {
	case LangEN:
		return v.EN
	case LangAR:
		return v.AR
	}
	return nil
}

// IsEmpty reports whether both vectors are absent.
func (v LocalizedVector) IsEmpty() bool { return v.EN == nil && v.AR == nil }

// Prune drops any present vector whose length differs from dims and returns
// the number of dropped vectors. A wrong-sized vector is never truncated or
// padded, it is removed so the document still indexes without it.
func (v *LocalizedVector) Prune(dims int) int {
	dropped := 0
	if v.EN != nil && len(v.EN) != dims {
		v.EN = nil
		dropped++
	}
	if v.AR != nil && len(v.AR) != dims {
		v.AR = nil
		dropped++
	}
	return dropped
}
