package model

type CreatePostDTO struct {
	Title     string   `json:"title" validate:"required,min=1,max=255"`
	Body      string   `json:"body" validate:"required,min=1,max=1000"`
	ImageURLs []string `json:"image_urls,omitempty" validate:"omitempty,max=4,dive,required,url"`
}

// ImportPostDTO is one entry of a bulk JSON upload.
type ImportPostDTO struct {
	Title     string   `json:"title" validate:"required,min=1,max=255"`
	Text      string   `json:"text" validate:"required,min=1,max=1000"`
	ImageURLs []string `json:"image_url,omitempty" validate:"omitempty,max=4,dive,required,url"`
}

func (d *ImportPostDTO) ToCreate() *CreatePostDTO {
	return &CreatePostDTO{
		Title:     d.Title,
		Body:      d.Text,
		ImageURLs: d.ImageURLs,
	}
}
