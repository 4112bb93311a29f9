package trending

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Document is a dataset of either form with its records left undecoded, so
// a rewrite keeps every record byte-for-byte. Top-level keys other than
// metadata and repositories (languages in the processed form) are kept too.
type Document struct {
	Metadata Metadata
	// Repositories is nil when the key is absent and empty when it is [].
	Repositories []json.RawMessage
	Extra        map[string]json.RawMessage
}

// HasRepositories reports whether the repositories key was present.
func (d *Document) HasRepositories() bool {
	return d.Repositories != nil
}

// DecodeDocument decodes data into a Document. A repositories value that is
// not an array is a validation error.
func DecodeDocument(data []byte) (*Document, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, NewError(ErrValidation, "decode document", err)
	}
	if top == nil {
		return nil, NewError(ErrValidation, "decode document", nil)
	}

	doc := &Document{}
	if raw, ok := top["metadata"]; ok {
		if err := json.Unmarshal(raw, &doc.Metadata); err != nil {
			return nil, NewError(ErrValidation, "decode metadata", err)
		}
		delete(top, "metadata")
	}
	if raw, ok := top["repositories"]; ok {
		if err := json.Unmarshal(raw, &doc.Repositories); err != nil {
			return nil, NewError(ErrValidation, "decode repositories", err)
		}
		if doc.Repositories == nil {
			// "repositories": null
			return nil, NewError(ErrValidation, "decode repositories", nil)
		}
		delete(top, "repositories")
	}
	if len(top) > 0 {
		doc.Extra = top
	}
	return doc, nil
}

func (d Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"metadata":`)
	meta, err := marshal(d.Metadata)
	if err != nil {
		return nil, err
	}
	buf.Write(meta)

	if d.Repositories != nil {
		repos, err := marshal(d.Repositories)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`,"repositories":`)
		buf.Write(repos)
	}

	keys := make([]string, 0, len(d.Extra))
	for k := range d.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		name, err := marshal(k)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(d.Extra[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshal is json.Marshal without HTML escaping.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
