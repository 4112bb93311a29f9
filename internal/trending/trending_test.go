package trending

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"emperror.dev/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordURL(t *testing.T) {
	tests := []struct {
		rec  Record
		want string
	}{
		{Record{"url": " https://github.com/a/b "}, "https://github.com/a/b"},
		{Record{"url": ""}, ""},
		{Record{"url": 42}, ""},
		{Record{}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.rec.URL(), "record %v", tt.rec)
	}
}

func TestRecordFirstSeen(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	got, ok := Record{FirstSeenKey: FormatTime(ts)}.FirstSeen()
	require.True(t, ok)
	assert.True(t, got.Equal(ts))

	_, ok = Record{FirstSeenKey: "yesterday"}.FirstSeen()
	assert.False(t, ok)
	_, ok = Record{}.FirstSeen()
	assert.False(t, ok)
}

func TestRecordClone(t *testing.T) {
	orig := Record{"url": "u"}
	c := orig.Clone()
	c["url"] = "other"
	assert.Equal(t, "u", orig["url"])
}

func TestMetadata_KeepsUnknownKeys(t *testing.T) {
	in := `{"last_updated":"2024-01-01T00:00:00Z","count":3,"source":"x","note":"keep me","nested":{"a":1}}`

	var m Metadata
	require.NoError(t, json.Unmarshal([]byte(in), &m))
	assert.Equal(t, 3, m.Count)
	assert.Equal(t, "x", m.Source)
	assert.Contains(t, m.Extra, "note")
	assert.NotContains(t, m.Extra, "count")

	out, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}

func TestMetadata_ZeroCountersAreWritten(t *testing.T) {
	m := Metadata{LastUpdated: "t", NewAdded: Int(0), TotalMerged: Int(0)}
	out, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"new_added":0`)
	assert.NotContains(t, string(out), "original_count")
}

func TestDecodeDataset_KeepsNumbers(t *testing.T) {
	in := `{"metadata":{"last_updated":"t","count":1},"repositories":[{"url":"u","stars":12345678901,"builtBy":[{"username":"x"}]}]}`
	ds, err := DecodeDataset([]byte(in))
	require.NoError(t, err)
	require.Len(t, ds.Repositories, 1)
	assert.Equal(t, json.Number("12345678901"), ds.Repositories[0]["stars"])

	out, err := json.Marshal(ds)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}

func TestDecodeDataset_Invalid(t *testing.T) {
	_, err := DecodeDataset([]byte(`{"repositories":[1,2]}`))
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestDecodeDocument(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		wantErr     bool
		hasRepos    bool
		wantRepos   int
		wantExtra []string
	}{
		{name: "raw", in: `{"metadata":{"count":2},"repositories":[{"url":"a"},{"url":"b"}]}`, hasRepos: true, wantRepos: 2},
		{name: "processed", in: `{"metadata":{},"repositories":[],"languages":["Go"]}`, hasRepos: true, wantExtra: []string{"languages"}},
		{name: "no repositories", in: `{"metadata":{}}`},
		{name: "repositories not a list", in: `{"repositories":{"a":1}}`, wantErr: true},
		{name: "repositories null", in: `{"repositories":null}`, wantErr: true},
		{name: "not an object", in: `[1,2]`, wantErr: true},
		{name: "null document", in: `null`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := DecodeDocument([]byte(tt.in))
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrValidation), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.hasRepos, doc.HasRepositories())
			assert.Len(t, doc.Repositories, tt.wantRepos)
			for _, k := range tt.wantExtra {
				assert.Contains(t, doc.Extra, k)
			}
		})
	}
}

func TestDocument_RoundTrip(t *testing.T) {
	in := `{"metadata":{"last_updated":"t","count":1},"repositories":[{"url":"a","x":[1,2]}],"languages":["Go","Rust"]}`
	doc, err := DecodeDocument([]byte(in))
	require.NoError(t, err)

	out, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}

func TestError(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := NewError(ErrFetch, "fetch weekly", cause)

	assert.True(t, errors.Is(err, ErrFetch))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "fetch weekly: fetch failed: connection refused", err.Error())

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, "fetch weekly", e.Op)

	assert.Equal(t, "read: dataset not found", NewError(ErrNotFound, "read", nil).Error())
}
