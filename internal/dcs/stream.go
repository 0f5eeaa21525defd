package dcs

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/gorilla/websocket"
)

// QueryRequest is the only message the client sends on the stream.
type QueryRequest struct {
	Query string `json:"Query"`
}

// EncodeQuery turns a search string into the stream's query field.
func EncodeQuery(search string) string {
	return url.Values{"q": {search}}.Encode()
}

// Stream is an open streaming query. It is not safe for concurrent use.
type Stream struct {
	conn      *websocket.Conn
	stop      chan struct{}
	closeOnce sync.Once
}

func (s *Stream) watch(ctx context.Context) {
	select {
	case <-ctx.Done():
		_ = s.conn.Close()
	case <-s.stop:
	}
}

// Send submits the search string.
func (s *Stream) Send(search string) error {
	if err := s.conn.WriteJSON(QueryRequest{Query: EncodeQuery(search)}); err != nil {
		return errors.Wrap(err, "send query")
	}
	return nil
}

// Next blocks until the next frame arrives and decodes it.
func (s *Stream) Next(ctx context.Context) (Message, error) {
	_, data, err := s.conn.ReadMessage()
	if err != nil {
		if ctx.Err() != nil {
			return Message{}, ctx.Err()
		}
		return Message{}, errors.Wrap(err, "read stream")
	}
	return DecodeMessage(data)
}

func (s *Stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stop)
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		err = s.conn.Close()
	})
	return err
}
