package summarizer

import (
	"fmt"
	"path"
	"strings"
)

const systemPrompt = "You are an expert technical writer generating Confluence Wiki Markup documentation for source code."

const promptTemplate = `Please act as an expert technical writer. Analyze the following %[1]s code from the file '%[2]s'.
Generate documentation in Confluence Wiki Markup format.

The documentation should include:
1.  *File Overview:* A concise summary of the file's purpose, its main components, and any key dependencies it might imply (at a high level).
2.  *Types or Classes (if any):* For each one:
    *   Name and signature (e.g., h3. Class: MyClass(BaseClass))
    *   Purpose: A clear description of what it does.
    *   Key Attributes: Important fields and their roles.
    *   Methods: For each method, its signature as an h4. heading, purpose, parameters with types, and return value.
3.  *Functions (if any, not part of a type):* For each function:
    *   Signature (e.g., h3. Function: my_function(param1))
    *   Purpose, parameters with types, and return value.
4.  *Usage Example (Optional but Recommended):* If feasible, a brief snippet showing how to use a key function or type from this file.

Use Confluence Wiki Markup:
- Headings: h1., h2., h3., h4.
- Bold: *text*
- Italics: _text_
- Unordered lists: * item (star followed by a space)
- Code blocks: {code:%[3]s} ... {code} or {noformat} ... {noformat} for simple snippets.

Here is the code content:
---- START OF CODE ----
%[4]s
---- END OF CODE ----

Provide only the Confluence Wiki Markup content for the page body.`

var languages = map[string]struct{ name, lexer string }{
	".py":   {"Python", "python"},
	".go":   {"Go", "go"},
	".js":   {"JavaScript", "javascript"},
	".ts":   {"TypeScript", "javascript"},
	".java": {"Java", "java"},
	".rb":   {"Ruby", "ruby"},
	".sh":   {"Shell", "bash"},
	".sql":  {"SQL", "sql"},
	".c":    {"C", "cpp"},
	".cpp":  {"C++", "cpp"},
	".cs":   {"C#", "csharp"},
}

// BuildPrompt renders the instruction prompt for one file.
func BuildPrompt(content, label string) string {
	name, lexer := "source", "none"
	if lang, ok := languages[strings.ToLower(path.Ext(label))]; ok {
		name, lexer = lang.name, lang.lexer
	}
	return fmt.Sprintf(promptTemplate, name, label, lexer, content)
}
