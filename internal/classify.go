package internal

import "strings"

const CategoryUncategorised = "errors_uncategorised"

type categoryKeywords struct {
	Category string
	Keywords []string
}

// errorCategories is checked top to bottom and the first hit wins, so the
// order decides ties ("connection timeout to db" is networking, not database).
var errorCategories = []categoryKeywords{
	{"authentication", []string{"oauth", "auth", "token", "credential", "unauthorized"}},
	{"networking", []string{"http", "connection", "network", "timeout", "dns"}},
	{"database", []string{"db", "database", "sql", "query", "deadlock"}},
	{"filesystem", []string{"file", "permission", "disk", "directory", "path"}},
	{"memory", []string{"memory", "heap", "stack", "allocation"}},
	{"configuration", []string{"config", "env", "property", "setting", "yaml"}},
	{"api", []string{"rate", "quota", "endpoint", "request", "service"}},
	{"concurrency", []string{"race", "deadlock", "thread", "async", "promise"}},
	{"validation", []string{"schema", "invalid", "mismatch", "format", "required"}},
	{"build", []string{"compilation", "dependency", "version", "build", "import"}},
}

// Classify maps an error message to the first category whose keyword occurs
// in it, case-insensitively.
func Classify(message string) string {
	lower := strings.ToLower(message)
	for _, c := range errorCategories {
		for _, kw := range c.Keywords {
			if strings.Contains(lower, kw) {
				return c.Category
			}
		}
	}
	return CategoryUncategorised
}

// Categories returns the known category names in precedence order,
// followed by the uncategorised sentinel.
func Categories() []string {
	names := make([]string, 0, len(errorCategories)+1)
	for _, c := range errorCategories {
		names = append(names, c.Category)
	}
	return append(names, CategoryUncategorised)
}

func KnownCategory(name string) bool {
	for _, c := range Categories() {
		if c == name {
			return true
		}
	}
	return false
}
