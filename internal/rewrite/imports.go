package rewrite

import "strings"

// InjectImport prepends the runtime import for the helpers the rewrite
// used. A file that already imports the runtime module is left alone:
// names are not merged into an existing import statement.
func InjectImport(buf *Buffer, used Helpers, importPath string) error {
	if !used.Any() {
		return nil
	}
	original := buf.Original()
	if strings.Contains(original, `from "`+importPath+`"`) ||
		strings.Contains(original, `from '`+importPath+`'`) {
		return nil
	}
	line := "import { " + strings.Join(used.Names(), ", ") + ` } from "` + importPath + `";` + "\n"
	return buf.PrependLeft(0, line)
}
