package models

// Lookup collections map an internal id to a display label.

type Genre struct {
	ID    string `bson:"genres_id" json:"genres_id"`
	Label string `bson:"genres_de" json:"genres_de"`
}

type Studio struct {
	ID    string `bson:"studio_id" json:"studio_id"`
	Label string `bson:"studio_de" json:"studio_de"`
}

type Demographic struct {
	ID    string `bson:"demo_id" json:"demo_id"`
	Label string `bson:"demo_de" json:"demo_de"`
}
