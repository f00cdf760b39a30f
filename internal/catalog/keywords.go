package catalog

// Keyword sets per intent category, grouped by language. Matching is
// substring-based and checked against every language's set, since users
// frequently type in a language other than their stored preference.
//
// Keywords are stored lowercase; callers lowercase input before matching.

// emergencyKeywords signal situations needing immediate escalation.
var emergencyKeywords = map[Code][]string{
	Indonesian: {"darurat", "tolong", "kecelakaan"},
	Chinese:    {"緊急", "紧急", "救命", "受傷", "受伤"},
	English:    {"emergency", "urgent", "help me", "injured", "hurt", "accident"},
	Vietnamese: {"khẩn cấp", "cứu tôi", "tai nạn", "bị thương"},
}

// greetingKeywords open a conversation.
var greetingKeywords = map[Code][]string{
	Indonesian: {"halo", "hai", "selamat pagi", "selamat siang", "selamat malam"},
	Chinese:    {"你好", "您好", "早安", "午安", "晚安"},
	English:    {"hi", "hello", "hey", "hola"},
	Vietnamese: {"xin chào", "chào bạn", "chào buổi sáng"},
}

// thanksKeywords express gratitude.
var thanksKeywords = map[Code][]string{
	Indonesian: {"terima kasih", "makasih"},
	Chinese:    {"谢谢", "謝謝", "感謝"},
	English:    {"thanks", "thank you", "thx"},
	Vietnamese: {"cảm ơn", "cám ơn"},
}

// goodbyeKeywords close a conversation.
var goodbyeKeywords = map[Code][]string{
	Indonesian: {"sampai jumpa", "dadah"},
	Chinese:    {"再見", "再见", "拜拜"},
	English:    {"bye", "goodbye", "see you"},
	Vietnamese: {"tạm biệt", "hẹn gặp lại"},
}

// helpKeywords ask how to use the bot.
var helpKeywords = map[Code][]string{
	Indonesian: {"bantuan", "cara"},
	Chinese:    {"幫助", "帮助", "怎麼用", "怎么用"},
	English:    {"help", "how to"},
	Vietnamese: {"trợ giúp", "giúp đỡ", "hướng dẫn"},
}

// keywordSet flattens a per-language keyword table into a single ordered
// slice, following the canonical language order so matching is deterministic.
func keywordSet(table map[Code][]string) []string {
	var out []string
	for _, code := range codeOrder {
		out = append(out, table[code]...)
	}
	return out
}

// EmergencyKeywords returns all emergency keywords across languages.
func EmergencyKeywords() []string { return keywordSet(emergencyKeywords) }

// GreetingKeywords returns all greeting keywords across languages.
func GreetingKeywords() []string { return keywordSet(greetingKeywords) }

// ThanksKeywords returns all thanks keywords across languages.
func ThanksKeywords() []string { return keywordSet(thanksKeywords) }

// GoodbyeKeywords returns all goodbye keywords across languages.
func GoodbyeKeywords() []string { return keywordSet(goodbyeKeywords) }

// HelpKeywords returns all help-request keywords across languages.
func HelpKeywords() []string { return keywordSet(helpKeywords) }
