package ws

import "encoding/json"

// InboundEnvelope is the generic envelope for all client-to-server messages.
// The Type field is used for routing; Raw holds the full JSON payload.
type InboundEnvelope struct {
	Type string          `json:"type"`
	Raw  json.RawMessage `json:"-"`
}

// UnmarshalJSON implements custom unmarshaling to capture the raw payload.
func (e *InboundEnvelope) UnmarshalJSON(data []byte) error {
	type typeOnly struct {
		Type string `json:"type"`
	}
	var t typeOnly
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	e.Type = t.Type
	e.Raw = json.RawMessage(data)
	return nil
}

// --- Client-to-Server message payloads ---

// AuthMsg is sent by the client with a bearer JWT to attach results to an account.
type AuthMsg struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// SetNameMsg is sent by the client to declare a display name.
type SetNameMsg struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// FlipCardMsg is sent by the client to flip a card.
type FlipCardMsg struct {
	Type  string `json:"type"`
	Index int    `json:"index"`
}

// --- Server-to-Client messages ---

// MenuMsg tells the client it is on the menu and can start a round.
type MenuMsg struct {
	Type      string `json:"type"`
	Name      string `json:"name"`
	SignedIn  bool   `json:"signedIn"`
	BoardRows int    `json:"boardRows"`
	BoardCols int    `json:"boardCols"`
	Theme     string `json:"theme"`
}

// RoundStartedMsg is sent when the lobby has created a round for the client.
type RoundStartedMsg struct {
	Type       string `json:"type"`
	RoundID    string `json:"roundId"`
	PlayerName string `json:"playerName"`
	Theme      string `json:"theme"`
	BoardRows  int    `json:"boardRows"`
	BoardCols  int    `json:"boardCols"`
	Demo       bool   `json:"demo"`
}
