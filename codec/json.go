package codec

import (
	"encoding/json"

	gojson "github.com/goccy/go-json"
)

// Default is the codec reports use unless one is requested.
var Default Codec = GoJSON{}

// JSON encodes with encoding/json, indented by two spaces.
type JSON struct{}

func (JSON) Marshal(v any) ([]byte, error)      { return json.MarshalIndent(v, "", "  ") }
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (JSON) Name() string                       { return "json" }
func (JSON) Extension() string                  { return ".json" }

// GoJSON produces the same documents as JSON through github.com/goccy/go-json.
type GoJSON struct{}

func (GoJSON) Marshal(v any) ([]byte, error)      { return gojson.MarshalIndent(v, "", "  ") }
func (GoJSON) Unmarshal(data []byte, v any) error { return gojson.Unmarshal(data, v) }
func (GoJSON) Name() string                       { return "go-json" }
func (GoJSON) Extension() string                  { return ".json" }
