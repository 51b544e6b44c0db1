package schema

// PublishComicTable represents the 'publish.comic' table
type PublishComicTable struct {
	Table           string
	ID              string
	Slug            string
	Title           string
	Description     string
	Genres          string
	Visibility      string
	Status          string
	CoverCID        string
	CoverGatewayURL string
	TotalPages      string
	OnChain         string
	CreatorID       string
	PublishedAt     string
	CreatedAt       string
	UpdatedAt       string
}

// PublishComic is the schema definition for publish.comic
var PublishComic = PublishComicTable{
	Table:           "publish.comic",
	ID:              "id",
	Slug:            "slug",
	Title:           "title",
	Description:     "description",
	Genres:          "genres",
	Visibility:      "visibility",
	Status:          "status",
	CoverCID:        "covercid",
	CoverGatewayURL: "covergatewayurl",
	TotalPages:      "totalpages",
	OnChain:         "onchain",
	CreatorID:       "creatorid",
	PublishedAt:     "publishedat",
	CreatedAt:       "createdat",
	UpdatedAt:       "updatedat",
}

func (t PublishComicTable) Columns() []string {
	return []string{
		t.ID, t.Slug, t.Title, t.Description, t.Genres, t.Visibility, t.Status,
		t.CoverCID, t.CoverGatewayURL, t.TotalPages, t.OnChain, t.CreatorID,
		t.PublishedAt, t.CreatedAt, t.UpdatedAt,
	}
}
