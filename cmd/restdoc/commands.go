package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	j "github.com/goccy/go-json"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/reoring/restdoc"
	"github.com/reoring/restdoc/codec"
	"github.com/reoring/restdoc/query"
)

var pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")

// splitPath accepts dotted paths and JSON Pointers.
func splitPath(p string) []string {
	switch {
	case p == "" || p == "/" || p == ".":
		return nil
	case strings.HasPrefix(p, "/"):
		parts := strings.Split(p[1:], "/")
		for i, s := range parts {
			parts[i] = pointerUnescaper.Replace(s)
		}
		return parts
	}
	return strings.Split(p, ".")
}

func navigate(n restdoc.Node, path []string) restdoc.Value {
	var v restdoc.Value = n
	for _, name := range path {
		v = v.Attr(name)
	}
	return v
}

// parseValue reads a command line value as JSON, falling back to a string.
// JSON null stays null; Loads would turn it into an empty object.
func parseValue(s string) any {
	if strings.TrimSpace(s) == "null" {
		return nil
	}
	v, err := restdoc.Loads(s)
	if err != nil {
		return s
	}
	if sc, ok := v.(restdoc.Scalar); ok {
		return sc.Interface()
	}
	return v
}

func fmtCmd(e *env, _ []string) error {
	doc, err := e.input()
	if err != nil {
		return err
	}
	return e.print(doc)
}

func getCmd(e *env, args []string) error {
	doc, err := e.input()
	if err != nil {
		return err
	}
	v := navigate(doc, splitPath(args[0]))
	if v.Kind() == restdoc.KindAbsent {
		return fmt.Errorf("no value at %s", args[0])
	}
	return e.print(v)
}

func setCmd(e *env, args []string) error {
	path := splitPath(args[0])
	if len(path) == 0 {
		return fmt.Errorf("set needs a non-empty path")
	}
	doc, err := e.input()
	if err != nil {
		return err
	}
	parent := navigate(doc, path[:len(path)-1])
	if err := parent.Set(path[len(path)-1], parseValue(args[1])); err != nil {
		return err
	}
	return e.print(doc)
}

func delCmd(e *env, args []string) error {
	path := splitPath(args[0])
	if len(path) == 0 {
		return fmt.Errorf("del needs a non-empty path")
	}
	doc, err := e.input()
	if err != nil {
		return err
	}
	last := path[len(path)-1]
	switch p := navigate(doc, path[:len(path)-1]).(type) {
	case *restdoc.ObjectNode:
		if !p.Delete(last) {
			return fmt.Errorf("no value at %s", args[0])
		}
	case *restdoc.ArrayNode:
		i, err := strconv.Atoi(last)
		if err != nil {
			return fmt.Errorf("%q is not an index", last)
		}
		if _, err := p.Pop(i); err != nil {
			return err
		}
	default:
		return fmt.Errorf("no container at %s", args[0])
	}
	return e.print(doc)
}

func queryCmd(e *env, args []string) error {
	p, err := query.Compile(args[0])
	if err != nil {
		return err
	}
	doc, err := e.input()
	if err != nil {
		return err
	}
	out, err := p.Eval(doc)
	if err != nil {
		return err
	}
	return e.print(out)
}

func patchCmd(e *env, args []string) error {
	return e.patch(args[0], restdoc.Node.ApplyPatch)
}

func mergeCmd(e *env, args []string) error {
	return e.patch(args[0], restdoc.Node.MergePatch)
}

func (e *env) patch(file string, apply func(restdoc.Node, []byte) error) error {
	b, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	doc, err := e.input()
	if err != nil {
		return err
	}
	if err := apply(doc, b); err != nil {
		return err
	}
	return e.print(doc)
}

// diffCmd prints a line diff of the pretty forms followed by the merge
// patch that turns the input into OTHER.
func diffCmd(e *env, args []string) error {
	if args[0] == "-" {
		return fmt.Errorf("OTHER must be a file")
	}
	doc, err := e.input()
	if err != nil {
		return err
	}
	other, err := e.load(args[0], nil)
	if err != nil {
		return err
	}
	patch, err := restdoc.Diff(doc, other)
	if err != nil {
		return err
	}
	from, err := doc.PrettyPrint(2)
	if err != nil {
		return err
	}
	to, err := other.PrettyPrint(2)
	if err != nil {
		return err
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(from+"\n", to+"\n")
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)
	var sb strings.Builder
	for _, d := range diffs {
		prefix, paint := "  ", fmt.Sprint
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
			if e.colors != nil {
				paint = e.colors.add
			}
		case diffmatchpatch.DiffDelete:
			prefix = "- "
			if e.colors != nil {
				paint = e.colors.del
			}
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			sb.WriteString(paint(prefix + strings.TrimSuffix(line, "\n")))
			sb.WriteByte('\n')
		}
	}
	fmt.Fprint(e.stdout, sb.String())
	fmt.Fprintf(e.stdout, "merge patch: %s\n", patch)
	return nil
}

// print writes v as JSON. Nodes honor -indent; query results that are maps
// or slices are rebuilt as documents first.
func (e *env) print(v any) error {
	var text string
	switch x := v.(type) {
	case restdoc.Node:
		var err error
		if e.indent < 0 {
			text, err = x.Serialize()
		} else {
			text, err = x.PrettyPrint(e.indent)
		}
		if err != nil {
			return err
		}
	case restdoc.Scalar:
		return e.print(x.Interface())
	case *restdoc.Absent:
		text = "null"
	case map[string]any, []any:
		n, err := restdoc.Parse(x)
		if err != nil {
			return err
		}
		return e.print(n)
	default:
		enc, err := codec.EncodeScalar(v, codec.Options{})
		if err != nil {
			return err
		}
		b, err := j.MarshalNoEscape(enc)
		if err != nil {
			return err
		}
		text = string(b)
	}
	if e.colors != nil {
		text = e.colors.paint(text)
	}
	_, err := fmt.Fprintln(e.stdout, text)
	return err
}
