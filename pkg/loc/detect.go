package loc

import (
	"path"

	"github.com/src-d/enry/v2"
)

// DetectType guesses a type tag for file from its name alone. It returns ""
// when the extension is unknown or ambiguous.
func DetectType(file string) string {
	lang, safe := enry.GetLanguageByExtension(path.Base(file))
	if !safe {
		return ""
	}

	return lang
}
