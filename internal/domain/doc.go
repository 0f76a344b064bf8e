// Package domain contains the value types and the error taxonomy shared by
// the gateway and REST packages.
//
// # Types
//
//   - [Snowflake] and the typed identifiers [UserID], [ChannelID], [GuildID], [MessageID]
//   - [User], [Channel], [Guild], [Message]: plain records decoded from the API
//   - [ConnectionState]: lifecycle of one gateway connection
//
// The package has no dependencies on transport, logging or configuration.
package domain
