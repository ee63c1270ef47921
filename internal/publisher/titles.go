package publisher

import (
	"fmt"

	"codebase-docgen/internal/utils"
)

// RootTitle is the title of the page every other page hangs under.
func RootTitle(project string) string {
	return project
}

// DirTitle titles a directory page, e.g. "Docs: a / b" for a/b.
func DirTitle(project, relDir string) string {
	return fmt.Sprintf("%s: %s", project, utils.JoinSegments(relDir, " / "))
}

// FileTitle titles a file page, e.g. "Docs: a/b/c.py".
func FileTitle(project, relFile string) string {
	return fmt.Sprintf("%s: %s", project, relFile)
}

func RootBody(project, codePath string) string {
	return fmt.Sprintf("h1. %s\n\nThis page is the root for automatically generated documentation for the project. It covers code found in the '%s' directory.",
		project, codePath)
}

func DirBody(name string) string {
	return fmt.Sprintf("h1. Directory: %s\n\nThis page contains documentation for modules and subdirectories within '%s'.", name, name)
}
