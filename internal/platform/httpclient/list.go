package httpclient

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// DecodeList acepta un array JSON o un objeto paginado {"results": [...]}.
// Cualquier otra forma (objeto sin results, null, escalar) es una lista vacía.
func DecodeList[T any](raw []byte) ([]T, error) {
	out := make([]T, 0)
	if !gjson.ValidBytes(raw) {
		return out, nil
	}

	doc := gjson.ParseBytes(raw)
	var arr gjson.Result
	switch {
	case doc.IsArray():
		arr = doc
	case doc.IsObject() && doc.Get("results").IsArray():
		arr = doc.Get("results")
	default:
		return out, nil
	}

	if err := json.Unmarshal([]byte(arr.Raw), &out); err != nil {
		return nil, fmt.Errorf("httpclient: decode list: %w", err)
	}
	return out, nil
}
