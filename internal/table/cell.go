package table

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mobinasri/terra-scripts/internal/locator"
)

// Kind is the classification of a cell.
type Kind int

const (
	KindEmpty Kind = iota
	KindScalar
	KindLocator
	KindLocatorList
	KindScalarList
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindScalar:
		return "scalar"
	case KindLocator:
		return "locator"
	case KindLocatorList:
		return "locator-list"
	case KindScalarList:
		return "scalar-list"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Cell is a classified cell value.
//
// Locators is set for KindLocator (one element) and KindLocatorList.
// Scalars is set for KindScalar (one element) and KindScalarList.
type Cell struct {
	Kind     Kind
	Locators []string
	Scalars  []string
}

// Classify decides the kind of v. A string is a locator iff it starts with
// scheme://. A list is a locator list iff its first element is a locator
// string; any other non-empty list is a scalar list. Empty strings, empty
// lists and null classify as KindEmpty. Classify never fails: values of
// unexpected types fall through to KindScalar.
func Classify(v Value, scheme string) Cell {
	switch x := v.v.(type) {
	case nil:
		return Cell{Kind: KindEmpty}
	case string:
		if x == "" {
			return Cell{Kind: KindEmpty}
		}
		if locator.Is(x, scheme) {
			return Cell{Kind: KindLocator, Locators: []string{x}}
		}
		return Cell{Kind: KindScalar, Scalars: []string{x}}
	case []any:
		if len(x) == 0 {
			return Cell{Kind: KindEmpty}
		}
		items := make([]string, len(x))
		for i, item := range x {
			items[i] = Text(item)
		}
		if first, ok := x[0].(string); ok && locator.Is(first, scheme) {
			return Cell{Kind: KindLocatorList, Locators: items}
		}
		return Cell{Kind: KindScalarList, Scalars: items}
	default:
		return Cell{Kind: KindScalar, Scalars: []string{Text(x)}}
	}
}

// Text renders one raw value as a line of text. Null renders as an empty
// string; nested lists and objects render as compact JSON.
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case []any, map[string]any:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	default:
		return fmt.Sprint(x)
	}
}
