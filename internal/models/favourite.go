package models

import (
	"time"
)

type Favourite struct {
	ID          string    `json:"_id" bson:"_id"`
	UserEmail   string    `json:"userEmail" bson:"userEmail"`
	BiodataID   int       `json:"biodataId" bson:"biodataId"`
	Biodata     Biodata   `json:"biodata" bson:"biodata"`
	IsFavourite bool      `json:"isFavourite" bson:"isFavourite"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}

type AddFavouriteRequest struct {
	BiodataID int `json:"biodataId"`
}
