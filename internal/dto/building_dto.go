package dto

type CreateBuildingRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type UpdateBuildingRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
}
