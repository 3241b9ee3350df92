// Package slack renders webhook events into Slack messages and delivers them
// to a channel's inbound webhook.
package slack

import (
	"time"

	"github.com/brysontyrrell/voltron/internal/jsoncodec"
)

// ColorTag names an entry in the fixed sidebar palette. Tags that do not
// resolve fall back to gray; an unknown tag is never an error.
type ColorTag string

const (
	ColorGray   ColorTag = "gray"
	ColorGreen  ColorTag = "green"
	ColorPurple ColorTag = "purple"
	ColorRed    ColorTag = "red"
	ColorYellow ColorTag = "yellow"
)

var colorHex = map[ColorTag]string{
	ColorGray:   "#808080",
	ColorGreen:  "#008000",
	ColorPurple: "#800080",
	ColorRed:    "#ff0000",
	ColorYellow: "#ffff00",
}

// Hex resolves the tag to its palette value, defaulting to gray.
func (c ColorTag) Hex() string {
	if hex, ok := colorHex[c]; ok {
		return hex
	}
	return colorHex[ColorGray]
}

// Field is an ordered label/value pair rendered in the message footer.
type Field struct {
	Label string
	Value string
}

// Message is the rendered chat payload for a single webhook event.
type Message struct {
	Title     string
	TitleLink string
	Text      string
	Fallback  string
	Color     ColorTag
	Icon      string
	Fields    []Field
}

type attachmentField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type attachment struct {
	Fallback  string            `json:"fallback"`
	Color     string            `json:"color"`
	Title     string            `json:"title"`
	TitleLink string            `json:"title_link"`
	Text      string            `json:"text"`
	Fields    []attachmentField `json:"fields"`
	TS        int64             `json:"ts"`
	MrkdwnIn  []string          `json:"mrkdwn_in"`
}

type webhookPayload struct {
	Attachments []attachment `json:"attachments"`
}

// MarshalPayload serializes the message into the webhook's attachment JSON
// shape, stamped with the provided time.
func (m *Message) MarshalPayload(now time.Time) ([]byte, error) {
	fallback := m.Fallback
	if fallback == "" {
		fallback = m.Text
	}

	fields := make([]attachmentField, 0, len(m.Fields))
	for _, f := range m.Fields {
		fields = append(fields, attachmentField{Title: f.Label, Value: f.Value, Short: true})
	}

	return jsoncodec.Marshal(webhookPayload{
		Attachments: []attachment{
			{
				Fallback:  fallback,
				Color:     m.Color.Hex(),
				Title:     m.Title,
				TitleLink: m.TitleLink,
				Text:      m.Text,
				Fields:    fields,
				TS:        now.Unix(),
				MrkdwnIn:  []string{"text", "fallback_text"},
			},
		},
	})
}
