// Package column stores documents in SQL columns.
//
// Document implements sql.Scanner and driver.Valuer. It observes the loaded
// tree so callers can tell whether an in-place mutation needs flushing:
//
//	var doc column.Document
//	_ = row.Scan(&doc)
//	obj, _ := doc.Object()
//	_ = obj.Attr("profile").Set("name", "n")
//	if doc.Dirty() {
//	    _, _ = db.Exec(`UPDATE t SET doc = ? WHERE id = ?`, &doc, id)
//	    doc.MarkClean()
//	}
package column

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"log/slog"
	"sync"

	"github.com/reoring/restdoc"
)

var (
	_ sql.Scanner   = (*Document)(nil)
	_ driver.Valuer = (*Document)(nil)
)

// Document is a column value holding an object or array document.
// The zero value holds nothing and is stored as NULL.
type Document struct {
	mu     sync.Mutex
	node   restdoc.Node
	cancel func()
	dirty  bool
	opts   restdoc.Options
}

// New wraps n. Options apply to documents loaded by Scan.
func New(n restdoc.Node, opts ...restdoc.Options) *Document {
	d := &Document{}
	if len(opts) > 0 {
		d.opts = opts[len(opts)-1]
	}
	if n != nil {
		d.attach(n)
	}
	return d
}

func (d *Document) logger() *slog.Logger {
	if d.opts.Logger != nil {
		return d.opts.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// attach observes the root of n. Callers hold mu or own d exclusively.
func (d *Document) attach(n restdoc.Node) {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.node = n
	if n == nil {
		return
	}
	d.cancel = n.Root().Observe(func(restdoc.Node) {
		d.mu.Lock()
		d.dirty = true
		d.mu.Unlock()
	})
}

// Node returns the held document, nil when none.
func (d *Document) Node() restdoc.Node {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.node
}

// Object returns the held document when it is an object.
func (d *Document) Object() (*restdoc.ObjectNode, bool) {
	o, ok := d.Node().(*restdoc.ObjectNode)
	return o, ok
}

// Set replaces the held document and marks d dirty.
func (d *Document) Set(n restdoc.Node) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.attach(n)
	d.dirty = true
	d.logger().Debug("column: document replaced")
}

// Dirty reports whether the document changed since it was scanned or last
// marked clean.
func (d *Document) Dirty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dirty
}

func (d *Document) MarkClean() {
	d.mu.Lock()
	d.dirty = false
	d.mu.Unlock()
}

// Value serializes the document as UTF-8 JSON bytes. Missing documents and
// empty objects are stored as NULL; an empty array is stored as [] so it
// scans back as an array.
func (d *Document) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	n := d.Node()
	if n == nil {
		return nil, nil
	}
	if o, ok := n.(*restdoc.ObjectNode); ok && o.Len() == 0 {
		return nil, nil
	}
	s, err := n.Serialize()
	if err != nil {
		return nil, err
	}
	d.logger().Debug("column: value", "bytes", len(s))
	return []byte(s), nil
}

// Scan loads src ([]byte, string or nil). NULL and empty values yield an
// empty object. The scanned document starts clean.
func (d *Document) Scan(src any) error {
	var data []byte
	switch x := src.(type) {
	case nil:
	case []byte:
		data = x
	case string:
		data = []byte(x)
	default:
		return fmt.Errorf("column: cannot scan %T into Document", src)
	}

	var n restdoc.Node
	if len(data) == 0 {
		o, err := restdoc.NewObject(nil, d.opts)
		if err != nil {
			return err
		}
		n = o
	} else {
		v, err := restdoc.LoadBytes(data, d.opts)
		if err != nil {
			return err
		}
		node, ok := v.(restdoc.Node)
		if !ok {
			return fmt.Errorf("column: scanned %s, want object or array", v.Kind())
		}
		n = node
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.attach(n)
	d.dirty = false
	d.logger().Debug("column: scanned", "bytes", len(data))
	return nil
}

func (d *Document) MarshalJSON() ([]byte, error) {
	n := d.Node()
	if n == nil {
		return []byte("null"), nil
	}
	return n.MarshalJSON()
}
