package bot

import (
	"strings"
	"testing"
	"time"

	"checkinbot/internal/db/models"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowButtons(t *testing.T, components []discordgo.MessageComponent) []discordgo.Button {
	t.Helper()
	require.Len(t, components, 1)
	row, ok := components[0].(discordgo.ActionsRow)
	require.True(t, ok)

	var buttons []discordgo.Button
	for _, c := range row.Components {
		button, ok := c.(discordgo.Button)
		require.True(t, ok)
		buttons = append(buttons, button)
	}
	return buttons
}

func TestRowComponentsOfferExactlyOneAction(t *testing.T) {
	eventID := uuid.New()
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	notIn := &models.CheckInRecord{UserID: "111", EventID: eventID, Name: "Bob"}
	buttons := rowButtons(t, rowComponents(notIn))
	require.Len(t, buttons, 1)
	assert.Equal(t, "Check in", buttons[0].Label)
	assert.Equal(t, "checkin:"+eventID.String()+":111", buttons[0].CustomID)

	in := &models.CheckInRecord{UserID: "111", EventID: eventID, Name: "Bob", CheckedInAt: &ts}
	buttons = rowButtons(t, rowComponents(in))
	require.Len(t, buttons, 1)
	assert.Equal(t, "Download tag", buttons[0].Label)
	assert.Equal(t, "tag:"+eventID.String()+":111", buttons[0].CustomID)
}

func TestParseCustomID(t *testing.T) {
	eventID := uuid.New()
	record := &models.CheckInRecord{UserID: "222", EventID: eventID}

	action, gotEvent, userID, err := parseCustomID(rowCustomID(actionTag, record))
	require.NoError(t, err)
	assert.Equal(t, actionTag, action)
	assert.Equal(t, eventID, gotEvent)
	assert.Equal(t, "222", userID)

	for _, bad := range []string{
		"",
		"checkin",
		"checkin:" + eventID.String(),
		"checkin:" + eventID.String() + ":",
		"delete:" + eventID.String() + ":222",
		"tag:not-a-uuid:222",
	} {
		_, _, _, err := parseCustomID(bad)
		assert.ErrorIs(t, err, errBadCustomID, "custom id %q", bad)
	}
}

func TestRowContent(t *testing.T) {
	ts := time.Unix(1704067200, 0).UTC()
	record := &models.CheckInRecord{UserID: "333", EventID: uuid.New(), Name: "  Carol "}

	assert.Equal(t, "**Carol** <@333> · not checked in", rowContent(record))

	record.CheckedInAt = &ts
	assert.Equal(t, "**Carol** <@333> · checked in <t:1704067200:R>", rowContent(record))

	record.Name = " "
	assert.True(t, strings.HasPrefix(rowContent(record), "**(no name)**"))
}

func TestRowMessageSuppressesMentions(t *testing.T) {
	msg := rowMessage(&models.CheckInRecord{UserID: "444", EventID: uuid.New(), Name: "Dan"})
	require.NotNil(t, msg.AllowedMentions)
	assert.Empty(t, msg.AllowedMentions.Parse)
	assert.Len(t, msg.Components, 1)
}
