package model

type PostFilters struct {
	Published *bool
	Limit     *int
	Offset    *int
}
