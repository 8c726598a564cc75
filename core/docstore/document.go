package docstore

import (
	"fmt"
	"strings"

	"cosmos-isolation/core/envelope"
)

// DocumentID returns the document's "id", which every store requires to be a
// non-empty string.
func DocumentID(doc envelope.Document) (string, error) {
	raw, ok := doc["id"]
	if !ok {
		return "", fmt.Errorf("document has no id")
	}
	id, ok := raw.(string)
	if !ok || id == "" {
		return "", fmt.Errorf("document id must be a non-empty string, got %v", raw)
	}
	return id, nil
}

// PartitionKeyValues resolves each partition key path (e.g. "/address/zip")
// against doc. A path that does not resolve yields nil in its position.
func PartitionKeyValues(doc envelope.Document, paths []string) []any {
	values := make([]any, 0, len(paths))
	for _, p := range paths {
		values = append(values, lookupPath(doc, p))
	}
	return values
}

func lookupPath(doc envelope.Document, path string) any {
	var cur any = map[string]any(doc)
	for _, seg := range strings.Split(strings.TrimPrefix(path, "/"), "/") {
		if seg == "" {
			return nil
		}
		switch m := cur.(type) {
		case map[string]any:
			cur = m[seg]
		case envelope.Document:
			cur = m[seg]
		default:
			return nil
		}
	}
	return cur
}
