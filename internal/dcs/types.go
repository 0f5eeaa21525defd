package dcs

import (
	"encoding/json"
	"fmt"
	"html"

	"github.com/Laisky/errors/v2"
)

// Chunk is one search match together with two lines of context on each side.
type Chunk struct {
	Package string `json:"package"`
	Path    string `json:"path"`
	Line    int    `json:"line"`
	Context string `json:"context"`
	CtxP2   string `json:"ctxp2"`
	CtxP1   string `json:"ctxp1"`
	CtxN1   string `json:"ctxn1"`
	CtxN2   string `json:"ctxn2"`
}

// unescaped returns a copy with HTML entities decoded in every text field.
func (c Chunk) unescaped() Chunk {
	c.Path = html.UnescapeString(c.Path)
	c.Context = html.UnescapeString(c.Context)
	c.CtxP2 = html.UnescapeString(c.CtxP2)
	c.CtxP1 = html.UnescapeString(c.CtxP1)
	c.CtxN1 = html.UnescapeString(c.CtxN1)
	c.CtxN2 = html.UnescapeString(c.CtxN2)
	return c
}

// Progress is the control message the service sends while a query runs.
type Progress struct {
	Type           string `json:"Type"`
	QueryID        string `json:"QueryId"`
	FilesProcessed int    `json:"FilesProcessed"`
	FilesTotal     int    `json:"FilesTotal"`
	Results        int    `json:"Results"`
}

// Done reports whether this is the last progress update of the query.
func (p Progress) Done() bool { return p.FilesProcessed == p.FilesTotal }

// ServiceError is sent by the service instead of progress when a query cannot run.
type ServiceError struct {
	Type      string `json:"Type"`
	ErrorType string `json:"ErrorType"`
}

func (e *ServiceError) Error() string {
	if e.ErrorType == "" {
		return "codesearch: query failed"
	}
	return "codesearch: query failed: " + e.ErrorType
}

// MalformedMessageError is returned when a stream frame is not a JSON document.
type MalformedMessageError struct {
	Payload []byte
	Err     error
}

func (e *MalformedMessageError) Error() string {
	return fmt.Sprintf("unable to parse JSON document: %v", e.Err)
}

func (e *MalformedMessageError) Unwrap() error { return e.Err }

// Kind tells which variant a Message holds.
type Kind int

const (
	KindUnknown Kind = iota
	KindProgress
	KindChunk
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindProgress:
		return "progress"
	case KindChunk:
		return "chunk"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Message is one decoded stream frame. Only the field matching Kind is set.
type Message struct {
	Kind     Kind
	Progress Progress
	Chunk    Chunk
	Err      *ServiceError
}

// DecodeMessage classifies a raw stream frame. Frames that are valid JSON but
// match no known shape come back as KindUnknown.
func DecodeMessage(data []byte) (Message, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return Message{}, &MalformedMessageError{Payload: data, Err: err}
	}
	// arrays, strings and numbers carry nothing we understand
	if _, ok := v.(map[string]any); !ok {
		return Message{Kind: KindUnknown}, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Message{}, &MalformedMessageError{Payload: data, Err: err}
	}
	var typ string
	if raw, ok := fields["Type"]; ok && string(raw) != "null" {
		if err := json.Unmarshal(raw, &typ); err != nil {
			return Message{}, &MalformedMessageError{Payload: data, Err: errors.Wrap(err, "Type")}
		}
	}
	_, hasPackage := fields["package"]

	switch {
	case typ == "progress":
		var p Progress
		if err := json.Unmarshal(data, &p); err != nil {
			return Message{}, &MalformedMessageError{Payload: data, Err: errors.Wrap(err, "progress")}
		}
		return Message{Kind: KindProgress, Progress: p}, nil
	case typ == "error":
		se := new(ServiceError)
		if err := json.Unmarshal(data, se); err != nil {
			return Message{}, &MalformedMessageError{Payload: data, Err: errors.Wrap(err, "error")}
		}
		return Message{Kind: KindError, Err: se}, nil
	case hasPackage:
		var c Chunk
		if err := json.Unmarshal(data, &c); err != nil {
			return Message{}, &MalformedMessageError{Payload: data, Err: errors.Wrap(err, "chunk")}
		}
		return Message{Kind: KindChunk, Chunk: c.unescaped()}, nil
	}
	return Message{Kind: KindUnknown}, nil
}

func decodePage(data []byte) ([]Chunk, error) {
	var page []Chunk
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, errors.Wrap(err, "decode page")
	}
	for i := range page {
		page[i] = page[i].unescaped()
	}
	return page, nil
}
