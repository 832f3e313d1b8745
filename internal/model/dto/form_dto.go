package dto

import "time"

type SectionData struct {
	NameAr string `json:"name_ar"`
	NameEn string `json:"name_en"`
	ID     int64  `json:"id"`
}

type FormData struct {
	Section      *SectionData `json:"section"`
	SerialNumber string       `json:"serial_number"`
	NameAr       string       `json:"name_ar"`
	NameEn       string       `json:"name_en"`
	Category     string       `json:"category"`
	Description  string       `json:"description"`
	File         string       `json:"file"`
	ID           int64        `json:"id"`
}

type FormListQuery struct {
	SectionID int64 `query:"section"`
}

// FormPreview carries the stamp a renderer overlays on the document.
type FormPreview struct {
	StampedAt time.Time `json:"stamped_at"`
	Form      FormData  `json:"form"`
	Serial    int64     `json:"serial"`
}
