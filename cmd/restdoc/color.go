package main

import (
	"strings"

	"github.com/fatih/color"
)

type palette struct {
	key, str, num, lit func(a ...any) string
	add, del           func(a ...any) string
}

func newPalette() *palette {
	c := func(attrs ...color.Attribute) func(a ...any) string {
		col := color.New(attrs...)
		col.EnableColor()
		return col.SprintFunc()
	}
	return &palette{
		key: c(color.FgBlue, color.Bold),
		str: c(color.FgGreen),
		num: c(color.FgCyan),
		lit: c(color.FgMagenta),
		add: c(color.FgGreen),
		del: c(color.FgRed),
	}
}

// paint colors the tokens of serialized JSON. Strings directly followed by a
// colon are keys.
func (p *palette) paint(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '"':
			k := i + 1
			for k < len(s) && s[k] != '"' {
				if s[k] == '\\' {
					k++
				}
				k++
			}
			if k < len(s) {
				k++
			}
			tok := s[i:k]
			rest := strings.TrimLeft(s[k:], " ")
			if strings.HasPrefix(rest, ":") {
				b.WriteString(p.key(tok))
			} else {
				b.WriteString(p.str(tok))
			}
			i = k
		case c == '-' || (c >= '0' && c <= '9'):
			k := i + 1
			for k < len(s) && strings.IndexByte("+-.eE0123456789", s[k]) >= 0 {
				k++
			}
			b.WriteString(p.num(s[i:k]))
			i = k
		case c >= 'a' && c <= 'z':
			k := i + 1
			for k < len(s) && s[k] >= 'a' && s[k] <= 'z' {
				k++
			}
			b.WriteString(p.lit(s[i:k]))
			i = k
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}
