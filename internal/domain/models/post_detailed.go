package model

// PostDetailed is a Post together with the images it owns.
type PostDetailed struct {
	Post   *Post        `json:"post"`
	Images []*PostImage `json:"images"`
}

func (d *PostDetailed) ImageURLs() []string {
	urls := make([]string, 0, len(d.Images))
	for _, img := range d.Images {
		urls = append(urls, img.URL)
	}
	return urls
}
