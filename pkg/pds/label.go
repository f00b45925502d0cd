// Package pds reads PDS3 product labels, the detached text headers that
// accompany SHARAD 3D radar volumes.
//
// Only the attribute syntax needed to recover volume geometry is
// supported: KEY = VALUE statements, OBJECT/GROUP nesting, quoted
// strings, parenthesised sets, <unit> suffixes and comments.
package pds

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrMalformedLabel is returned when a label cannot be parsed
var ErrMalformedLabel = errors.New("malformed PDS label")

// ErrMissingKeyword is returned when a requested keyword is absent
var ErrMissingKeyword = errors.New("keyword not found")

// Object is an OBJECT or GROUP block of a label
type Object struct {
	// Name is the block name, e.g. "IMAGE"
	Name string

	// Keywords maps upper-case keywords to raw values (units and quotes stripped)
	Keywords map[string]string

	// Order lists keywords in the order they appeared
	Order []string

	// Children are the nested blocks
	Children []*Object
}

func newObject(name string) *Object {
	return &Object{Name: name, Keywords: make(map[string]string)}
}

// Label is a parsed PDS3 label. The root object holds top-level keywords.
type Label struct {
	Root *Object
}

// Find returns the first value of keyword in a depth-first walk of the label
func (l *Label) Find(keyword string) (string, bool) {
	return find(l.Root, strings.ToUpper(keyword))
}

func find(o *Object, keyword string) (string, bool) {
	if v, ok := o.Keywords[keyword]; ok {
		return v, true
	}
	for _, child := range o.Children {
		if v, ok := find(child, keyword); ok {
			return v, true
		}
	}
	return "", false
}

// String returns the value of keyword
func (l *Label) String(keyword string) (string, error) {
	v, ok := l.Find(keyword)
	if !ok {
		return "", fmt.Errorf("%s: %w", keyword, ErrMissingKeyword)
	}
	return v, nil
}

// Int returns the value of keyword as an integer
func (l *Label) Int(keyword string) (int, error) {
	v, err := l.String(keyword)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w: %q is not an integer", keyword, ErrMalformedLabel, v)
	}
	return n, nil
}

// ReadLabel parses the label file at path
func ReadLabel(path string) (*Label, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	l, err := ParseLabel(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

// ParseLabel parses a PDS3 label from r
func ParseLabel(r io.Reader) (*Label, error) {
	root := newObject("ROOT")
	stack := []*Object{root}

	statements, err := readStatements(r)
	if err != nil {
		return nil, err
	}

	for _, st := range statements {
		if st.key == "END" && st.value == "" {
			break
		}
		top := stack[len(stack)-1]

		switch st.key {
		case "OBJECT", "GROUP":
			child := newObject(st.value)
			top.Children = append(top.Children, child)
			stack = append(stack, child)
		case "END_OBJECT", "END_GROUP":
			if len(stack) == 1 {
				return nil, fmt.Errorf("%w: line %d: %s without matching block", ErrMalformedLabel, st.line, st.key)
			}
			if st.value != "" && st.value != top.Name {
				return nil, fmt.Errorf("%w: line %d: %s = %s closes %s", ErrMalformedLabel, st.line, st.key, st.value, top.Name)
			}
			stack = stack[:len(stack)-1]
		default:
			if _, seen := top.Keywords[st.key]; !seen {
				top.Order = append(top.Order, st.key)
			}
			top.Keywords[st.key] = st.value
		}
	}

	if len(stack) != 1 {
		return nil, fmt.Errorf("%w: unterminated block %s", ErrMalformedLabel, stack[len(stack)-1].Name)
	}
	return &Label{Root: root}, nil
}

type statement struct {
	key   string
	value string
	line  int
}

// readStatements splits the label into KEY = VALUE statements, joining
// values that continue over several lines.
func readStatements(r io.Reader) ([]statement, error) {
	var (
		out       []statement
		pending   *statement
		inComment bool
		lineNo    int
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		var text string
		text, inComment = stripComments(scanner.Text(), inComment)
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		if pending != nil {
			pending.value += " " + text
			if balanced(pending.value) {
				pending.value = cleanValue(pending.value)
				out = append(out, *pending)
				pending = nil
			}
			continue
		}

		key, value, hasValue := strings.Cut(text, "=")
		key = strings.ToUpper(strings.TrimSpace(key))
		if key == "" || strings.ContainsAny(key, " \t") {
			return nil, fmt.Errorf("%w: line %d: %q", ErrMalformedLabel, lineNo, text)
		}
		if !hasValue {
			if key == "END" {
				out = append(out, statement{key: key, line: lineNo})
				break
			}
			if key == "END_OBJECT" || key == "END_GROUP" {
				out = append(out, statement{key: key, line: lineNo})
				continue
			}
			return nil, fmt.Errorf("%w: line %d: missing '=' in %q", ErrMalformedLabel, lineNo, text)
		}

		st := statement{key: key, value: strings.TrimSpace(value), line: lineNo}
		if !balanced(st.value) {
			pending = &st
			continue
		}
		st.value = cleanValue(st.value)
		out = append(out, st)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, fmt.Errorf("%w: line %d: unterminated value for %s", ErrMalformedLabel, pending.line, pending.key)
	}
	return out, nil
}

// stripComments removes /* */ comments, which may span lines
func stripComments(line string, inComment bool) (string, bool) {
	var b strings.Builder
	for len(line) > 0 {
		if inComment {
			end := strings.Index(line, "*/")
			if end < 0 {
				return b.String(), true
			}
			line = line[end+2:]
			inComment = false
			continue
		}
		start := strings.Index(line, "/*")
		if start < 0 {
			b.WriteString(line)
			break
		}
		b.WriteString(line[:start])
		line = line[start+2:]
		inComment = true
	}
	return b.String(), inComment
}

// balanced reports whether quotes and brackets in v are closed
func balanced(v string) bool {
	depth := 0
	quoted := false
	for _, r := range v {
		switch {
		case r == '"':
			quoted = !quoted
		case quoted:
		case r == '(' || r == '{':
			depth++
		case r == ')' || r == '}':
			depth--
		}
	}
	return !quoted && depth <= 0
}

// cleanValue drops quotes and a trailing <unit> from a scalar value
func cleanValue(v string) string {
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, "\"") && strings.HasSuffix(v, "\"") && len(v) >= 2 {
		return strings.Join(strings.Fields(v[1:len(v)-1]), " ")
	}
	if i := strings.Index(v, "<"); i > 0 && strings.HasSuffix(v, ">") {
		v = strings.TrimSpace(v[:i])
	}
	if strings.HasPrefix(v, "'") && strings.HasSuffix(v, "'") && len(v) >= 2 {
		v = v[1 : len(v)-1]
	}
	return v
}
