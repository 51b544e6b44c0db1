package schema

// PublishPageTable represents the 'publish.comic_page' table
type PublishPageTable struct {
	Table      string
	ID         string
	ComicID    string
	PageNumber string
	Image      string
	AltText    string
	Transcript string
	Captions   string
	IsPinned   string
	PinnedAt   string
	Panels     string
	CreatedAt  string
	UpdatedAt  string
}

// PublishPage is the schema definition for publish.comic_page
var PublishPage = PublishPageTable{
	Table:      "publish.comic_page",
	ID:         "id",
	ComicID:    "comicid",
	PageNumber: "pagenumber",
	Image:      "image",
	AltText:    "alttext",
	Transcript: "transcript",
	Captions:   "captions",
	IsPinned:   "ispinned",
	PinnedAt:   "pinnedat",
	Panels:     "panels",
	CreatedAt:  "createdat",
	UpdatedAt:  "updatedat",
}

func (t PublishPageTable) Columns() []string {
	return []string{
		t.ID, t.ComicID, t.PageNumber, t.Image, t.AltText, t.Transcript,
		t.Captions, t.IsPinned, t.PinnedAt, t.Panels, t.CreatedAt, t.UpdatedAt,
	}
}
