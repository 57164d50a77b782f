package models

type DisplayType string

const (
	DisplayList  DisplayType = "list"
	DisplayTable DisplayType = "table"
	DisplayError DisplayType = "error"
)

// ListItem is one ranked row of a list award.
type ListItem struct {
	Rank     int    `json:"rank"`
	ImageURL string `json:"image_url"`
	MainText string `json:"main_text"`
	SubText  string `json:"sub_text,omitempty"`
	Stat     string `json:"stat,omitempty"`
}

// Result is the raw output of a metric before metadata is attached.
type Result struct {
	ID      string
	Data    any
	Headers []string
}

type AwardMeta struct {
	Title       string
	Description string
	Type        DisplayType
}

// Award is the record emitted to consumers and persisted in the cache.
type Award struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Type        DisplayType `json:"type"`
	Data        any         `json:"data,omitempty"`
	Headers     []string    `json:"headers,omitempty"`
	Error       string      `json:"error,omitempty"`
}

func (a Award) Failed() bool {
	return a.Type == DisplayError
}
