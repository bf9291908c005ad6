package reference

import (
	"strings"
)

// DefaultAnchorPrefix starts the navigation anchors pydoc-markdown emits
// before every documented object.
const DefaultAnchorPrefix = `<a id="`

// StripAnchors removes every line that begins with prefix.
func StripAnchors(md, prefix string) string {
	lines := strings.Split(md, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if !strings.HasPrefix(l, prefix) {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}

// HeadingLevel returns the number of leading '#' markers of an ATX heading
// line, or 0 when the line is not a heading.
func HeadingLevel(line string) int {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > 6 {
		return 0
	}
	if level < len(line) && line[level] != ' ' && line[level] != '\t' {
		return 0
	}
	return level
}

// ShiftHeadings adds offset markers to every heading line. Lines inside
// fenced code blocks are left alone.
func ShiftHeadings(md string, offset int) string {
	if offset <= 0 {
		return md
	}
	extra := strings.Repeat("#", offset)
	lines := strings.Split(md, "\n")
	eachHeading(lines, func(i, _ int) {
		lines[i] = extra + lines[i]
	})
	return strings.Join(lines, "\n")
}

// OverflowHeadings lists the headings that ShiftHeadings would push past
// level 6. Those lines stop being headings once shifted.
func OverflowHeadings(md string, offset int) []string {
	if offset <= 0 {
		return nil
	}
	var lost []string
	lines := strings.Split(md, "\n")
	eachHeading(lines, func(i, level int) {
		if level+offset > 6 {
			lost = append(lost, lines[i])
		}
	})
	return lost
}

// eachHeading calls fn with the index and level of every heading line
// outside fenced code.
func eachHeading(lines []string, fn func(i, level int)) {
	var fence string
	for i, l := range lines {
		if f := fenceMarker(l); f != "" {
			if fence == "" {
				fence = f
			} else if f[0] == fence[0] && len(f) >= len(fence) && strings.TrimSpace(l) == f {
				fence = ""
			}
			continue
		}
		if fence != "" {
			continue
		}
		if level := HeadingLevel(l); level > 0 {
			fn(i, level)
		}
	}
}

func fenceMarker(line string) string {
	t := strings.TrimLeft(line, " ")
	if len(line)-len(t) > 3 {
		return ""
	}
	for _, c := range []string{"```", "~~~"} {
		if strings.HasPrefix(t, c) {
			n := len(t) - len(strings.TrimLeft(t, c[:1]))
			return strings.Repeat(c[:1], n)
		}
	}
	return ""
}

// ModuleLabel is the heading text used for a module section.
func ModuleLabel(module string) string {
	return "Module `" + module + "`"
}

// LabelModule replaces the heading line at the given level that is exactly
// the bare module name with a labelled heading.
func LabelModule(md, module string, level int) string {
	marks := strings.Repeat("#", level)
	bare := marks + " " + module
	lines := strings.Split(md, "\n")
	for i, l := range lines {
		if l == bare {
			lines[i] = marks + " " + ModuleLabel(module)
		}
	}
	return strings.Join(lines, "\n")
}

// Normalize prepares a submodule fragment for nesting under the document
// title: anchors are dropped, headings are pushed down by opts.Offset and the
// module title is labelled.
func Normalize(md, module string, opts Options) string {
	opts = opts.withDefaults()
	md = StripAnchors(md, opts.AnchorPrefix)
	md = ShiftHeadings(md, opts.Offset)
	return LabelModule(md, module, 1+opts.Offset)
}

// NormalizeRoot prepares the package root fragment. Its headings keep their
// level and the tool's own title block is removed since the assembled page
// brings its own title.
func NormalizeRoot(md, module string, opts Options) string {
	opts = opts.withDefaults()
	md = StripAnchors(md, opts.AnchorPrefix)
	md = LabelModule(md, module, 1)
	return dropTitleBlock(md, module)
}

// dropTitleBlock removes leading blank lines and, when the first line left is
// the module's level-one title, that title and the blank lines after it. Any
// other first line is kept.
func dropTitleBlock(md, module string) string {
	lines := strings.Split(md, "\n")
	i := skipBlank(lines, 0)
	if i < len(lines) && isModuleTitle(lines[i], module) {
		i = skipBlank(lines, i+1)
	}
	return strings.Join(lines[i:], "\n")
}

func isModuleTitle(line, module string) bool {
	line = strings.TrimRight(line, " \t")
	return line == "# "+module || line == "# "+ModuleLabel(module)
}

func skipBlank(lines []string, i int) int {
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	return i
}
