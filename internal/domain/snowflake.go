package domain

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

// discordEpoch is the first millisecond of 2015, the origin of snowflake timestamps.
const discordEpoch int64 = 1420070400000

// Snowflake is a 64-bit platform identifier. The API encodes snowflakes as
// JSON strings; numbers are accepted on input as well.
type Snowflake uint64

// String returns the decimal form of the id.
func (s Snowflake) String() string {
	return strconv.FormatUint(uint64(s), 10)
}

// Time returns the creation time encoded in the upper 42 bits.
func (s Snowflake) Time() time.Time {
	ms := int64(uint64(s)>>22) + discordEpoch
	return time.UnixMilli(ms).UTC()
}

// MarshalJSON encodes the id as a JSON string.
func (s Snowflake) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(s.String())), nil
}

// UnmarshalJSON accepts "123", 123 and null (left as zero).
func (s *Snowflake) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	raw := string(b)
	if len(b) >= 2 && b[0] == '"' && b[len(b)-1] == '"' {
		unq, err := strconv.Unquote(raw)
		if err != nil {
			return fmt.Errorf("snowflake %s: %w", raw, err)
		}
		raw = unq
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("snowflake %s: %w", string(b), err)
	}
	*s = Snowflake(v)
	return nil
}

// ParseSnowflake parses a decimal id as typed on a command line.
func ParseSnowflake(s string) (Snowflake, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return Snowflake(v), nil
}

// UserID identifies a user.
type UserID Snowflake

func (id UserID) String() string                { return Snowflake(id).String() }
func (id UserID) MarshalJSON() ([]byte, error)  { return Snowflake(id).MarshalJSON() }
func (id *UserID) UnmarshalJSON(b []byte) error { return (*Snowflake)(id).UnmarshalJSON(b) }

// ChannelID identifies a channel.
type ChannelID Snowflake

func (id ChannelID) String() string                { return Snowflake(id).String() }
func (id ChannelID) MarshalJSON() ([]byte, error)  { return Snowflake(id).MarshalJSON() }
func (id *ChannelID) UnmarshalJSON(b []byte) error { return (*Snowflake)(id).UnmarshalJSON(b) }

// GuildID identifies a guild.
type GuildID Snowflake

func (id GuildID) String() string                { return Snowflake(id).String() }
func (id GuildID) MarshalJSON() ([]byte, error)  { return Snowflake(id).MarshalJSON() }
func (id *GuildID) UnmarshalJSON(b []byte) error { return (*Snowflake)(id).UnmarshalJSON(b) }

// MessageID identifies a message. Message ids grow with creation time, so
// ordering by value orders by age.
type MessageID Snowflake

func (id MessageID) String() string                { return Snowflake(id).String() }
func (id MessageID) MarshalJSON() ([]byte, error)  { return Snowflake(id).MarshalJSON() }
func (id *MessageID) UnmarshalJSON(b []byte) error { return (*Snowflake)(id).UnmarshalJSON(b) }
