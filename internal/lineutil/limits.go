package lineutil

// LINE API payload limits, in runes.
// Reference: https://developers.line.biz/en/reference/messaging-api/
const (
	MaxTextMessageLength = 5000 // Text message content
	MaxAltTextLength     = 400  // Flex/template alt text
	MaxPostbackData      = 300  // Postback action data

	MaxQuickReplyItemCount = 13 // Items in a quick reply
	MaxQuickReplyLabel     = 20 // Quick reply item label

	MaxMessagesPerReply = 5 // Messages in one reply call
)
