// Package catalog holds the static collection of content format specifications
package catalog

// SafeZone is the margin, in pixels, that platform UI may cover on each edge
type SafeZone struct {
	Top    int `json:"top"    mapstructure:"top"    doc:"Top margin in pixels"`
	Bottom int `json:"bottom" mapstructure:"bottom" doc:"Bottom margin in pixels"`
	Left   int `json:"left"   mapstructure:"left"   doc:"Left margin in pixels"`
	Right  int `json:"right"  mapstructure:"right"  doc:"Right margin in pixels"`
}

// Format describes the constraints of a single platform content format
type Format struct {
	ID          string    `json:"id"                    mapstructure:"id"          example:"instagram-post"        doc:"Unique format identifier"`
	Name        string    `json:"name"                  mapstructure:"name"        example:"Instagram Post"        doc:"Display name"`
	Platform    string    `json:"platform"              mapstructure:"platform"    example:"Instagram"             doc:"Platform the format belongs to"`
	Category    string    `json:"category"              mapstructure:"category"    example:"social-media"          doc:"Category identifier"`
	Width       int       `json:"width"                 mapstructure:"width"       example:"1080"                  doc:"Width in pixels"`
	Height      int       `json:"height"                mapstructure:"height"      example:"1080"                  doc:"Height in pixels"`
	AspectRatio string    `json:"aspectRatio"           mapstructure:"aspectRatio" example:"1:1"                   doc:"Aspect ratio as published by the platform"`
	FileTypes   []string  `json:"fileTypes"             mapstructure:"fileTypes"                                   doc:"Accepted file types"`
	MaxFileSize string    `json:"maxFileSize,omitempty" mapstructure:"maxFileSize" example:"30MB"                  doc:"Maximum upload size"`
	SafeZone    *SafeZone `json:"safeZone,omitempty"    mapstructure:"safeZone"                                    doc:"Margins kept clear of platform UI"`
	Notes       string    `json:"notes,omitempty"       mapstructure:"notes"                                       doc:"Additional guidance"`
	Description string    `json:"description"           mapstructure:"description" example:"Square feed post"      doc:"Short description"`
}

// Category groups formats; Count is derived from the loaded formats
type Category struct {
	ID    string `json:"id"    mapstructure:"id"   example:"social-media" doc:"Category identifier"`
	Name  string `json:"name"  mapstructure:"name" example:"Social Media" doc:"Display name"`
	Count int    `json:"count" mapstructure:"-"    example:"12"           doc:"Number of formats in the category"`
}

// Platform summarises how many formats a platform contributes
type Platform struct {
	Name  string `json:"name"  example:"Instagram" doc:"Platform name"`
	Count int    `json:"count" example:"5"         doc:"Number of formats for the platform"`
}
