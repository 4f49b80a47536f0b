package search

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ResponseKind discriminates the decoded response union.
type ResponseKind int

const (
	ResponseError ResponseKind = iota
	ResponseText
	ResponseImage
	ResponseVideo
)

func (k ResponseKind) String() string {
	switch k {
	case ResponseError:
		return "error"
	case ResponseText:
		return "text"
	case ResponseImage:
		return "image"
	case ResponseVideo:
		return "video"
	default:
		return "unknown"
	}
}

// Item is a single search hit.
type Item struct {
	URL     string
	Title   string
	Snippet string
	Source  string
}

// UnmarshalJSON accepts "link" as a legacy alias for "url"; older
// servers emitted the former.
func (i *Item) UnmarshalJSON(data []byte) error {
	var raw struct {
		URL     string `json:"url"`
		Link    string `json:"link"`
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
		Source  string `json:"source"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	i.URL = raw.URL
	if i.URL == "" {
		i.URL = raw.Link
	}
	i.Title = raw.Title
	i.Snippet = raw.Snippet
	i.Source = raw.Source
	return nil
}

// Label returns the display text for the item: its title when present,
// its URL otherwise.
func (i Item) Label() string {
	if i.Title != "" {
		return i.Title
	}
	return i.URL
}

// EngineResult holds one engine's outcome: a result list or a scoped
// error string, never both, never neither.
type EngineResult struct {
	Items []Item
	Err   string
}

// Failed reports whether this engine returned an error instead of
// results.
func (r EngineResult) Failed() bool { return r.Err != "" }

// UnmarshalJSON decodes either a result array or an {"error": ...}
// object, enforcing the exclusive-or at the boundary.
func (r *EngineResult) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		r.Err = ""
		return json.Unmarshal(trimmed, &r.Items)
	}
	var failure struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(trimmed, &failure); err != nil {
		return err
	}
	if failure.Error == "" {
		return fmt.Errorf("engine result must be a result list or an error object")
	}
	r.Items = nil
	r.Err = failure.Error
	return nil
}

// EngineEntry pairs an engine name with its result.
type EngineEntry struct {
	Name   string
	Result EngineResult
}

// EngineSet is an engine-to-result mapping that preserves the server's
// key order. Iteration order is insertion order, never re-sorted.
type EngineSet struct {
	entries []EngineEntry
}

// Entries returns the engines in the order the server sent them.
func (s EngineSet) Entries() []EngineEntry { return s.entries }

// Len returns the number of engines in the set.
func (s EngineSet) Len() int { return len(s.entries) }

// UnmarshalJSON walks the object token by token so the original key
// order survives decoding. An empty array is tolerated as an empty set.
func (s *EngineSet) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("[]")) {
		s.entries = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("engine set must be a JSON object")
	}

	s.entries = nil
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("engine set key must be a string")
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var result EngineResult
		if err := json.Unmarshal(raw, &result); err != nil {
			return fmt.Errorf("engine %q: %w", name, err)
		}
		s.entries = append(s.entries, EngineEntry{Name: name, Result: result})
	}

	_, err = dec.Token()
	return err
}

// FaceGroup clusters the per-engine results for one face detected in
// the uploaded image.
type FaceGroup struct {
	FaceIndex int           `json:"face_index"`
	Position  *FacePosition `json:"position,omitempty"`
	Results   EngineSet     `json:"results"`
}

// FacePosition is the face's bounding box inside the uploaded image.
type FacePosition struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// VideoContext describes the full video a clip was traced back to.
type VideoContext struct {
	Title   string       `json:"title"`
	Source  string       `json:"source"`
	URL     string       `json:"url"`
	Matches []VideoMatch `json:"matches"`
}

// VideoMatch is a timestamped hit inside the source video.
type VideoMatch struct {
	Time    string `json:"time"`
	Context string `json:"context"`
}

// Response is the discriminated result of one dispatch. Exactly one
// payload matches Kind; an error-kind response carries nothing else.
type Response struct {
	Kind  ResponseKind
	Error string

	Results  []Item // text
	Standard EngineSet
	Faces    []FaceGroup
	Video    *VideoContext
}

// Errorf builds an error-kind response.
func Errorf(format string, args ...any) Response {
	return Response{Kind: ResponseError, Error: fmt.Sprintf(format, args...)}
}

// DecodeResponse discriminates a raw response body once, at the
// boundary, so the renderer never has to sniff shapes.
func DecodeResponse(kind Kind, body []byte) (Response, error) {
	var probe struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return Response{}, fmt.Errorf("malformed response body: %w", err)
	}
	if probe.Error != "" {
		return Response{Kind: ResponseError, Error: probe.Error}, nil
	}

	switch kind {
	case KindText:
		var payload struct {
			Results []Item `json:"results"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return Response{}, fmt.Errorf("malformed text response: %w", err)
		}
		return Response{Kind: ResponseText, Results: payload.Results}, nil

	case KindImage:
		var payload struct {
			Standard EngineSet   `json:"standard_results"`
			Faces    []FaceGroup `json:"face_results"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return Response{}, fmt.Errorf("malformed image response: %w", err)
		}
		return Response{Kind: ResponseImage, Standard: payload.Standard, Faces: payload.Faces}, nil

	case KindVideo:
		var payload struct {
			Video *VideoContext `json:"video"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return Response{}, fmt.Errorf("malformed video response: %w", err)
		}
		return Response{Kind: ResponseVideo, Video: payload.Video}, nil
	}

	return Response{}, fmt.Errorf("unknown request kind %q", kind)
}
