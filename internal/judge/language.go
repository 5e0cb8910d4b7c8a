package judge

import (
	"codexa/internal/common"
)

// languageIDs maps canonical language names to the judging service's ids.
var languageIDs = map[string]int{
	"c++":        54,
	"java":       62,
	"javascript": 63,
}

// NormalizeLanguage translates the editor/storage token "cpp" to the canonical
// "c++" used by the judging service and the problem-authoring schema. All
// other tokens pass through unchanged. Callers must normalize before resolving
// a language id or persisting a submission.
func NormalizeLanguage(name string) string {
	if name == "cpp" {
		return "c++"
	}
	return name
}

// LanguageID resolves a canonical language name to the judging service's
// integer language id.
func LanguageID(name string) (int, error) {
	id, ok := languageIDs[name]
	if !ok {
		return 0, common.Errorf("language %q: %w", name, common.ErrUnsupportedLanguage)
	}
	return id, nil
}
