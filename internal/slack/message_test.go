package slack

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brysontyrrell/voltron/internal/jsoncodec"
)

func TestColorTag_Hex(t *testing.T) {
	tests := []struct {
		tag  ColorTag
		want string
	}{
		{tag: ColorGray, want: "#808080"},
		{tag: ColorGreen, want: "#008000"},
		{tag: ColorPurple, want: "#800080"},
		{tag: ColorRed, want: "#ff0000"},
		{tag: ColorYellow, want: "#ffff00"},
		{tag: ColorTag("chartreuse"), want: "#808080"},
		{tag: ColorTag(""), want: "#808080"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.tag.Hex(), "tag %q", tt.tag)
	}
}

func TestMessage_MarshalPayload(t *testing.T) {
	msg := &Message{
		Title:     "Computer Added",
		TitleLink: "https://jss.example.org",
		Text:      "A new computer has been added!",
		Color:     ColorGreen,
		Fields: []Field{
			{Label: "Serial Number", Value: "C02ABC123"},
			{Label: "User", Value: "ellen"},
		},
	}

	now := time.Unix(1700000000, 0)
	raw, err := msg.MarshalPayload(now)
	require.NoError(t, err)

	var payload struct {
		Attachments []struct {
			Fallback  string `json:"fallback"`
			Color     string `json:"color"`
			Title     string `json:"title"`
			TitleLink string `json:"title_link"`
			Text      string `json:"text"`
			Fields    []struct {
				Title string `json:"title"`
				Value string `json:"value"`
				Short bool   `json:"short"`
			} `json:"fields"`
			TS       int64    `json:"ts"`
			MrkdwnIn []string `json:"mrkdwn_in"`
		} `json:"attachments"`
	}
	require.NoError(t, jsoncodec.Unmarshal(raw, &payload))
	require.Len(t, payload.Attachments, 1)

	att := payload.Attachments[0]
	assert.Equal(t, "Computer Added", att.Title)
	assert.Equal(t, "https://jss.example.org", att.TitleLink)
	assert.Equal(t, "A new computer has been added!", att.Text)
	assert.Equal(t, "A new computer has been added!", att.Fallback, "fallback defaults to text")
	assert.Equal(t, "#008000", att.Color)
	assert.Equal(t, int64(1700000000), att.TS)
	assert.Equal(t, []string{"text", "fallback_text"}, att.MrkdwnIn)

	require.Len(t, att.Fields, 2)
	assert.Equal(t, "Serial Number", att.Fields[0].Title)
	assert.Equal(t, "C02ABC123", att.Fields[0].Value)
	assert.True(t, att.Fields[0].Short)
}

func TestMessage_MarshalPayload_ExplicitFallback(t *testing.T) {
	msg := &Message{
		Title:    "Computer Added",
		Text:     "formatted *text*",
		Fallback: "plain text",
	}

	raw, err := msg.MarshalPayload(time.Now())
	require.NoError(t, err)

	var payload struct {
		Attachments []struct {
			Fallback string `json:"fallback"`
		} `json:"attachments"`
	}
	require.NoError(t, jsoncodec.Unmarshal(raw, &payload))
	require.Len(t, payload.Attachments, 1)
	assert.Equal(t, "plain text", payload.Attachments[0].Fallback)
}
