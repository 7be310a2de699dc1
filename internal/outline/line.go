package outline

import (
	"strings"

	"github.com/google/uuid"
)

type Mode string

const (
	ModeTitle       Mode = "title"
	ModeDescription Mode = "description"
)

func (m Mode) Valid() bool {
	return m == ModeTitle || m == ModeDescription
}

// Line is one addressable unit of the outline.
type Line struct {
	ID      string  `json:"id"`
	Content Content `json:"content,omitempty"`
	Level   int     `json:"level"`
	Mode    Mode    `json:"mode"`

	// DomainRef points at the host record this line was materialized from.
	// Empty for lines typed in the editor and not yet committed by the host.
	DomainRef string `json:"domainRef,omitempty"`
}

func (l Line) IsTitle() bool       { return l.Mode == ModeTitle }
func (l Line) IsDescription() bool { return l.Mode == ModeDescription }

func (l Line) Clone() Line {
	l.Content = l.Content.Clone()
	return l
}

func NewTitle(id string, level int, c Content) Line {
	return Line{ID: id, Level: level, Mode: ModeTitle, Content: c.Normalize()}
}

const descriptionSuffix = "-desc"

// DescriptionID derives the id of the description paired with titleID.
func DescriptionID(titleID string) string { return titleID + descriptionSuffix }

// TitleID is the inverse of DescriptionID.
func TitleID(descID string) string { return strings.TrimSuffix(descID, descriptionSuffix) }

// NewID returns a fresh line id.
func NewID() string { return "line-" + uuid.NewString() }
