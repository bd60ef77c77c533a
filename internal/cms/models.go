package cms

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// PlaceholderImage is used when an entry has no image.
const PlaceholderImage = "/placeholder.jpg"

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       *float64  `json:"price,omitempty"`
	Image       string    `json:"image"`
	Category    string    `json:"category,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Article is a news post or a case study; both share one CMS shape.
type Article struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Summary string `json:"summary,omitempty"`
	Content string `json:"content"`
	Date    string `json:"date,omitempty"`
	Image   string `json:"image"`
}

type ContactForm struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
	Message string `json:"message"`
	Locale  string `json:"locale,omitempty"`
}

// entryID accepts both numeric ids and string document ids.
type entryID string

func (id *entryID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = entryID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = entryID(n.String())
	return nil
}

type media struct {
	URL  string `json:"url"`
	Data *struct {
		Attributes struct {
			URL string `json:"url"`
		} `json:"attributes"`
	} `json:"data"`
}

func (m *media) url() string {
	if m == nil {
		return ""
	}
	if m.URL != "" {
		return m.URL
	}
	if m.Data != nil {
		return m.Data.Attributes.URL
	}
	return ""
}

type productEntry struct {
	ID          entryID   `json:"id"`
	DocumentID  string    `json:"documentId"`
	Name        string    `json:"name"`
	Description string    `json:"decs"`
	Price       *float64  `json:"price"`
	Image       *media    `json:"image"`
	Category    string    `json:"category"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type productList struct {
	Data []productEntry `json:"data"`
}

type articleAttributes struct {
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	Content     string `json:"content"`
	PublishDate string `json:"publishDate"`
	Image       *media `json:"image"`
}

// articleEntry covers both the nested {id, attributes} layout and a flat
// layout with the same field names.
type articleEntry struct {
	ID         entryID            `json:"id"`
	Attributes *articleAttributes `json:"attributes"`
	articleAttributes
}

func (e articleEntry) fields() articleAttributes {
	if e.Attributes != nil {
		return *e.Attributes
	}
	return e.articleAttributes
}

type articleList struct {
	Data []articleEntry `json:"data"`
}

type translationEntry struct {
	Key        string `json:"key"`
	Value      string `json:"value"`
	Attributes *struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	} `json:"attributes"`
}

type translationList struct {
	Data []translationEntry `json:"data"`
}

func trimSlash(s string) string {
	return strings.TrimRight(s, "/")
}
