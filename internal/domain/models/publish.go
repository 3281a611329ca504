package model

// MediaHandle identifies media uploaded to the publishing platform.
type MediaHandle string

// PostHandle identifies a post created on the publishing platform.
type PostHandle string
