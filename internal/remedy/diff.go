package remedy

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
)

// emptyDiffNote explains a diff that came back empty for differing
// content (e.g. trailing-whitespace-only changes the line split hides).
const emptyDiffNote = "(contents differ but no line-level diff was produced)"

// Unified renders a unified line diff between the original and corrected
// file content, labelled with the file's path.
func Unified(path, original, corrected string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(original),
		B:        difflib.SplitLines(corrected),
		FromFile: path,
		ToFile:   path + ".fixed",
		Context:  3,
	})
	if err != nil {
		return fmt.Sprintf("(diff unavailable: %v)", err)
	}
	if diff == "" && original != corrected {
		return emptyDiffNote
	}
	return diff
}
