package client

import (
	"net/url"

	"github.com/gorilla/websocket"
)

type wsTransport struct {
	conn *websocket.Conn
}

func (t *wsTransport) WriteJSON(v interface{}) error {
	return t.conn.WriteJSON(v)
}

func (t *wsTransport) ReadMessage() ([]byte, error) {
	_, data, err := t.conn.ReadMessage()
	return data, err
}

func (t *wsTransport) Close() error {
	return t.conn.Close()
}

// WebsocketDialer builds a Dialer for the gateway at serverURL
// (ws://host/ws or wss://host/ws). Token and room ride the handshake query.
func WebsocketDialer(serverURL string) Dialer {
	return func(token, room string) (Transport, error) {
		u, err := url.Parse(serverURL)
		if err != nil {
			return nil, err
		}
		q := u.Query()
		q.Set("token", token)
		q.Set("room", room)
		u.RawQuery = q.Encode()

		conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
		if err != nil {
			return nil, err
		}
		return &wsTransport{conn: conn}, nil
	}
}
