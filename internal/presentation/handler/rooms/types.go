package rooms

type playbackResponse struct {
	Position float64 `json:"position"`
	Paused   bool    `json:"paused"`
}

type peekRoomResponse struct {
	RoomID      string           `json:"roomId"`
	Mode        string           `json:"mode"`
	Exists      bool             `json:"exists"`
	MemberCount int              `json:"memberCount"`
	Playback    playbackResponse `json:"playback"`
}
