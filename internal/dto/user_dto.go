package dto

type UpdateSettingsRequest struct {
	UserId           string `json:"userId" validate:"required,max=255"`
	HistoryRetention string `json:"historyRetention" validate:"omitempty,oneof=off 24h 3d 7d 28d"`
}

type UserSettingsResponse struct {
	Id               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	HistoryRetention string `json:"historyRetention"`
}
