package envelope

// Store-internal bookkeeping keys. They are never written to an envelope.
const (
	KeyRID         = "_rid"
	KeySelf        = "_self"
	KeyETag        = "_etag"
	KeyAttachments = "_attachments"
	KeyTimestamp   = "_ts"
)

var internalKeys = map[string]struct{}{
	KeyRID:         {},
	KeySelf:        {},
	KeyETag:        {},
	KeyAttachments: {},
	KeyTimestamp:   {},
}

// IsInternalKey reports whether key is one of the store-internal fields.
func IsInternalKey(key string) bool {
	_, ok := internalKeys[key]
	return ok
}

// StripInternal returns a copy of doc without the store-internal keys.
// The input is not modified. Values are shared, not deep-copied.
func StripInternal(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		if IsInternalKey(k) {
			continue
		}
		out[k] = v
	}
	return out
}
