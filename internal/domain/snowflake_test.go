package domain

import (
	"encoding/json"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnowflake_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Snowflake
		wantErr bool
	}{
		{"string", `"175928847299117063"`, 175928847299117063, false},
		{"number", `123`, 123, false},
		{"null", `null`, 0, false},
		{"garbage", `"abc"`, 0, true},
		{"negative", `-1`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Snowflake
			err := json.Unmarshal([]byte(tt.in), &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSnowflake_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(MessageID(42))
	require.NoError(t, err)
	assert.Equal(t, `"42"`, string(b))
}

func TestSnowflake_Time(t *testing.T) {
	// Example id from the API reference.
	id := Snowflake(175928847299117063)
	want := time.Date(2016, 4, 30, 11, 18, 25, 796000000, time.UTC)
	assert.True(t, id.Time().Equal(want), "got %s", id.Time())
}

func TestParseSnowflake(t *testing.T) {
	id, err := ParseSnowflake("123")
	require.NoError(t, err)
	assert.Equal(t, Snowflake(123), id)

	_, err = ParseSnowflake("12a")
	assert.Error(t, err)
}

func TestMessageID_Ordering(t *testing.T) {
	ids := []MessageID{30, 10, 20}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	assert.Equal(t, []MessageID{10, 20, 30}, ids)
}

func TestMessage_DecodeAPIShape(t *testing.T) {
	body := `{
		"id": "11",
		"channel_id": "456",
		"author": {"id": "1", "username": "testuser", "discriminator": "0000", "global_name": null},
		"content": "Message 1",
		"timestamp": "2024-01-02T03:04:05.000000+00:00"
	}`

	var msg Message
	require.NoError(t, json.Unmarshal([]byte(body), &msg))
	assert.Equal(t, MessageID(11), msg.ID)
	assert.Equal(t, ChannelID(456), msg.ChannelID)
	assert.Equal(t, "testuser", msg.Author.DisplayName())
	assert.Equal(t, 2024, msg.Timestamp.Year())
}

func TestUser_DisplayName(t *testing.T) {
	name := "Global"
	empty := ""
	assert.Equal(t, "Global", User{Username: "u", GlobalName: &name}.DisplayName())
	assert.Equal(t, "u", User{Username: "u", GlobalName: &empty}.DisplayName())
	assert.Equal(t, "u", User{Username: "u"}.DisplayName())
}

func TestConnectionState_String(t *testing.T) {
	tests := []struct {
		state ConnectionState
		want  string
	}{
		{StateDisconnected, "Disconnected"},
		{StateAwaitingHello, "AwaitingHello"},
		{StateIdentified, "Identified"},
		{StateReady, "Ready"},
		{ConnectionState(99), "Unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.state.String())
	}
}
