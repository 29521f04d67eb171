package roomhandler

type RemoveRoomResponse struct {
	Type  string `json:"type"  example:"success"`
	Value string `json:"value" example:"Room removed."`
} // @name RemoveRoomResponse

type AlreadyRemovedResponse struct {
	Message string `json:"message" example:"Room already removed."`
} // @name AlreadyRemovedResponse

type ErrorResponse struct {
	Error string `json:"error"`
} // @name ErrorResponse
