// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ProjectPathInvalidId Id = iota + 1
	ConfigNotFoundId
	ConfigParseErrorId
	ProjectStructureId
	ScanFailedId
	MainFileReadFailedId
	SourceReadFailedId
	OutputDirInvalidId
	TempFileFailedId
	OutputWriteFailedId
	CreateProjectFailedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	name     string      // short name accepted by 'packjs explain'
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) Name() string {
	return i.name
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also:\n"
		for _, link := range i.docLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
		for _, link := range i.extLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	projectPathInvalidIssue = &Issue{
		id:   ProjectPathInvalidId,
		name: "project-path",
		mdMsg: `
# Invalid project path!

The directory given with ` + "`-d`" + ` does not exist or is not a directory.

## Things you can try:
- Check the path for typos
- Run packjs from inside the project directory and omit ` + "`-d`" + `
- Create a new project:
~~~
$ packjs create ./myproject
~~~`,
	}

	configNotFoundIssue = &Issue{
		id:   ConfigNotFoundId,
		name: "config-not-found",
		mdMsg: `
# Configuration file not found!

A configuration file was passed with ` + "`-c`" + ` but it does not exist.

## Things you can try:
- Check the path passed to ` + "`-c`" + `
- Omit ` + "`-c`" + ` to use ` + "`config.toml`" + ` in the project directory
- Pass ` + "`-x`" + ` to ignore configuration files entirely`,
	}

	configParseErrorIssue = &Issue{
		id:   ConfigParseErrorId,
		name: "config-parse",
		mdMsg: `
# Could not parse the config file!

The configuration file contains syntax errors or invalid values.

## Common issues:
- Invalid TOML/YAML syntax
- ` + "`internal_name`" + ` or ` + "`external_name`" + ` is not a valid JavaScript identifier
- An empty file name

## Example of a valid config.toml:
~~~toml
internal_name = "main"
external_name = "MyProject"
main_file = "main.js"
output_file = "myproject.js"
package_start_file = "_start.js"
package_end_file = "_end.js"
~~~`,
	}

	projectStructureIssue = &Issue{
		id:   ProjectStructureId,
		name: "project-structure",
		mdMsg: `
# Incorrect project structure!

A packjs project keeps its sources in a ` + "`src`" + ` directory:

~~~
myproject/
  config.toml
  src/
    main.js
    mypackage/
      _start.js
      Widget.js
      _end.js
  bin/
~~~

## Things you can try:
- Create the ` + "`src`" + ` directory
- Scaffold a fresh project with ` + "`packjs create`",
	}

	scanFailedIssue = &Issue{
		id:   ScanFailedId,
		name: "scan",
		mdMsg: `
# Recursive directory scan failed!

packjs could not list the files below ` + "`src`" + `.

## Things you can try:
- Check the permissions of the source directories
- Remove broken symbolic links
- Check your ` + "`ignore`" + ` patterns for syntax errors`,
	}

	mainFileReadFailedIssue = &Issue{
		id:   MainFileReadFailedId,
		name: "main-file",
		mdMsg: `
# Could not read main file!

The main file exists but its contents could not be read. Nothing was written.

## Things you can try:
- Check the file permissions
- Point ` + "`main_file`" + ` at another file`,
	}

	sourceReadFailedIssue = &Issue{
		id:   SourceReadFailedId,
		name: "source-file",
		mdMsg: `
# Could not read source file!

One of the package files could not be read. The output file was left untouched.

## Things you can try:
- Check the permissions of the file named in the error
- Remove dangling symbolic links from the package directory`,
	}

	outputDirInvalidIssue = &Issue{
		id:   OutputDirInvalidId,
		name: "bin",
		mdMsg: `
# Could not use the "bin" directory!

The packed file is written to ` + "`bin/`" + ` inside the project directory. Either a
regular file named ` + "`bin`" + ` is in the way or the directory could not be created.

## Things you can try:
- Rename or remove the file named ` + "`bin`" + `
- Check the permissions of the project directory`,
	}

	tempFileFailedIssue = &Issue{
		id:   TempFileFailedId,
		name: "temp-file",
		mdMsg: `
# Could not stage the output!

The packed output is written to a temporary file in ` + "`bin/`" + ` first and only
copied over the real output once packing succeeds.

## Things you can try:
- Check free disk space
- Check the permissions of the ` + "`bin`" + ` directory`,
	}

	outputWriteFailedIssue = &Issue{
		id:   OutputWriteFailedId,
		name: "output",
		mdMsg: `
# Could not write to the output file!

Packing succeeded but the result could not be copied to the output file.

## Things you can try:
- Check that the output file is not read-only
- Check free disk space`,
	}

	createProjectFailedIssue = &Issue{
		id:   CreateProjectFailedId,
		name: "create",
		mdMsg: `
# Could not create the project!

` + "`packjs create`" + ` only scaffolds into a missing or empty directory.

## Things you can try:
- Pick a directory that does not exist yet
- Empty the target directory first`,
	}

	issues = map[Id]*Issue{
		projectPathInvalidIssue.Id():  projectPathInvalidIssue,
		configNotFoundIssue.Id():      configNotFoundIssue,
		configParseErrorIssue.Id():    configParseErrorIssue,
		projectStructureIssue.Id():    projectStructureIssue,
		scanFailedIssue.Id():          scanFailedIssue,
		mainFileReadFailedIssue.Id():  mainFileReadFailedIssue,
		sourceReadFailedIssue.Id():    sourceReadFailedIssue,
		outputDirInvalidIssue.Id():    outputDirInvalidIssue,
		tempFileFailedIssue.Id():      tempFileFailedIssue,
		outputWriteFailedIssue.Id():   outputWriteFailedIssue,
		createProjectFailedIssue.Id(): createProjectFailedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}

// Lookup finds an issue by its short name.
func Lookup(name string) (*Issue, bool) {
	for _, i := range issues {
		if i.name == name {
			return i, true
		}
	}
	return nil, false
}

// Names returns the short names of all issues, sorted.
func Names() []string {
	names := make([]string, 0, len(issues))
	for _, i := range issues {
		names = append(names, i.name)
	}
	slices.Sort(names)
	return names
}
