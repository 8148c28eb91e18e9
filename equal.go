package restdoc

import (
	"bytes"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/cockroachdb/apd/v2"

	"github.com/reoring/restdoc/codec"
)

// equalValues compares stored values. Objects compare as mappings (key order
// ignored); numbers compare by value across int64, uint64, float64 and
// decimals; callables compare by code pointer.
func equalValues(a, b any) bool {
	switch x := a.(type) {
	case *ObjectNode:
		y, ok := b.(*ObjectNode)
		if !ok {
			return false
		}
		if x == y {
			return true
		}
		if x == nil || y == nil || len(x.keys) != len(y.keys) {
			return false
		}
		for k, v := range x.vals {
			w, ok := y.vals[k]
			if !ok || !equalValues(v, w) {
				return false
			}
		}
		return true
	case *ArrayNode:
		y, ok := b.(*ArrayNode)
		if !ok {
			return false
		}
		if x == y {
			return true
		}
		if x == nil || y == nil || len(x.items) != len(y.items) {
			return false
		}
		for i := range x.items {
			if !equalValues(x.items[i], y.items[i]) {
				return false
			}
		}
		return true
	case nil:
		return b == nil
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
	case []byte:
		y, ok := b.([]byte)
		return ok && bytes.Equal(x, y)
	case time.Time:
		y, ok := b.(time.Time)
		return ok && x.Equal(y)
	case codec.Date:
		y, ok := b.(codec.Date)
		return ok && x == y
	case int64, uint64, float64, *apd.Decimal:
		return numericEqual(a, b)
	}
	if codec.IsCallable(a) && codec.IsCallable(b) {
		return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
	}
	return false
}

func numericEqual(a, b any) bool {
	switch x := a.(type) {
	case int64:
		if y, ok := b.(int64); ok {
			return x == y
		}
	case float64:
		if y, ok := b.(float64); ok {
			return x == y
		}
	}
	da, ok := toDecimal(a)
	if !ok {
		return false
	}
	db, ok := toDecimal(b)
	return ok && da.Cmp(db) == 0
}

func toDecimal(v any) (*apd.Decimal, bool) {
	switch x := v.(type) {
	case int64:
		return apd.New(x, 0), true
	case uint64:
		d, _, err := apd.NewFromString(strconv.FormatUint(x, 10))
		return d, err == nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, false
		}
		d, err := new(apd.Decimal).SetFloat64(x)
		return d, err == nil
	case *apd.Decimal:
		return x, x != nil
	}
	return nil, false
}
