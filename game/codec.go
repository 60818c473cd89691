package game

import "encoding/json"

// decodeRoom types a raw document snapshot. A nil document decodes to nil,
// which is the RoomNotFound signal during join.
func decodeRoom(doc map[string]any) (*Room, error) {
	if doc == nil {
		return nil, nil
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	room := &Room{}
	if err := json.Unmarshal(raw, room); err != nil {
		return nil, err
	}
	return room, nil
}
