package catalog

// MessageKey identifies a canned localized message.
type MessageKey string

// Canned message keys.
const (
	MsgWelcome             MessageKey = "welcome"
	MsgCleared             MessageKey = "cleared"
	MsgLanguageChanged     MessageKey = "language_changed"
	MsgLanguageSelect      MessageKey = "language_select"
	MsgHelp                MessageKey = "help"
	MsgGreeting            MessageKey = "greeting"
	MsgThanks              MessageKey = "thanks"
	MsgGoodbye             MessageKey = "goodbye"
	MsgAIUnavailable       MessageKey = "ai_unavailable"
	MsgInvalidLanguage     MessageKey = "invalid_language"
	MsgAdminOnly           MessageKey = "admin_only"
	MsgTranslationEnabled  MessageKey = "translation_enabled"
	MsgTranslationDisabled MessageKey = "translation_disabled"
	MsgRateLimited         MessageKey = "rate_limited"
)

// messages holds every canned reply per language. English is the fallback
// when a key is missing for a language, so English must define all keys.
var messages = map[Code]map[MessageKey]string{
	Indonesian: {
		MsgWelcome: `👋 Selamat datang di IMIGO!

Saya adalah asisten AI untuk membantu pekerja migran Indonesia di Taiwan.

Saya dapat membantu dengan:
• Informasi ketenagakerjaan
• Layanan pemerintah
• Terjemahan bahasa
• Informasi kesehatan
• Kehidupan sehari-hari

Silakan ajukan pertanyaan Anda!`,
		MsgCleared:         "✅ Riwayat percakapan telah dihapus.\nAnda dapat memulai percakapan baru!",
		MsgLanguageChanged: "✅ Bahasa telah diubah ke Bahasa Indonesia.\nSaya sekarang akan merespons dalam bahasa Indonesia!",
		MsgLanguageSelect:  "🌐 Pilih bahasa Anda:\nKetik: /lang id (Indonesia)\n/lang zh (中文)\n/lang en (English)\n/lang vi (Tiếng Việt)",
		MsgHelp: `🤖 Cara menggunakan IMIGO:

Ketik pertanyaan Anda dalam bahasa apa pun, dan saya akan membantu!

Kategori bantuan:
• 💼 Masalah pekerjaan
• 🏛️ Layanan pemerintah
• 🏥 Informasi kesehatan
• 🌐 Bantuan terjemahan
• 🏠 Kehidupan sehari-hari
• 🚨 Kontak darurat`,
		MsgGreeting:            "Halo! 👋 Saya IMIGO, asisten untuk pekerja migran di Taiwan. Ada yang bisa saya bantu?",
		MsgThanks:              "Sama-sama! 😊 Senang bisa membantu. Ada lagi yang perlu ditanyakan?",
		MsgGoodbye:             "Sampai jumpa! 👋 Jangan ragu untuk menghubungi saya kapan saja.",
		MsgAIUnavailable:       "😥 Maaf, saya sedang mengalami gangguan. Silakan coba lagi sebentar lagi.",
		MsgInvalidLanguage:     "❌ Kode bahasa tidak dikenal: %s\nKode yang tersedia: %s",
		MsgAdminOnly:           "⛔ Perintah ini hanya untuk admin grup.",
		MsgTranslationEnabled:  "✅ Terjemahan otomatis diaktifkan (%s).",
		MsgTranslationDisabled: "✅ Terjemahan otomatis dimatikan.",
		MsgRateLimited:         "⏳ Terlalu banyak pesan. Mohon tunggu sebentar lalu coba lagi.",
	},
	Chinese: {
		MsgWelcome: `👋 歡迎使用 IMIGO！

我是協助在台灣的印尼移工的 AI 助手。

我可以幫助您：
• 勞工資訊
• 政府服務
• 語言翻譯
• 健康資訊
• 日常生活

請隨時提出您的問題！`,
		MsgCleared:         "✅ 對話記錄已清除。\n您可以開始新的對話！",
		MsgLanguageChanged: "✅ 語言已更改為繁體中文。\n我現在將用中文回應！",
		MsgLanguageSelect:  "🌐 選擇您的語言：\n輸入: /lang id (印尼文)\n/lang zh (中文)\n/lang en (英文)\n/lang vi (越南文)",
		MsgHelp: `🤖 如何使用 IMIGO：

用任何語言輸入您的問題，我會幫助您！

協助類別：
• 💼 工作問題
• 🏛️ 政府服務
• 🏥 健康資訊
• 🌐 翻譯協助
• 🏠 日常生活
• 🚨 緊急聯絡`,
		MsgGreeting:            "您好！👋 我是 IMIGO，台灣移工的助手。有什麼可以幫您的嗎？",
		MsgThanks:              "不客氣！😊 很高興能幫到您。還有其他問題嗎？",
		MsgGoodbye:             "再見！👋 隨時歡迎您再來。",
		MsgAIUnavailable:       "😥 抱歉，系統暫時無法回應。請稍後再試。",
		MsgInvalidLanguage:     "❌ 無法辨識的語言代碼：%s\n可用代碼：%s",
		MsgAdminOnly:           "⛔ 此指令僅限群組管理員使用。",
		MsgTranslationEnabled:  "✅ 已開啟自動翻譯（%s）。",
		MsgTranslationDisabled: "✅ 已關閉自動翻譯。",
		MsgRateLimited:         "⏳ 訊息太頻繁，請稍候再試。",
	},
	English: {
		MsgWelcome: `👋 Welcome to IMIGO!

I'm an AI assistant to help Indonesian migrant workers in Taiwan.

I can help with:
• Labor information
• Government services
• Language translation
• Health information
• Daily life

Please ask me anything!`,
		MsgCleared:         "✅ Chat history has been cleared.\nYou can start a new conversation!",
		MsgLanguageChanged: "✅ Language changed to English.\nI will now respond in English!",
		MsgLanguageSelect:  "🌐 Choose your language:\nType: /lang id (Indonesian)\n/lang zh (Chinese)\n/lang en (English)\n/lang vi (Vietnamese)",
		MsgHelp: `🤖 How to use IMIGO:

Type your question in any language, and I'll help you!

Help categories:
• 💼 Work problems
• 🏛️ Government services
• 🏥 Health information
• 🌐 Translation help
• 🏠 Daily life
• 🚨 Emergency contacts`,
		MsgGreeting:            "Hello! 👋 I'm IMIGO, assistant for migrant workers in Taiwan. How can I help you?",
		MsgThanks:              "You're welcome! 😊 Happy to help. Anything else you need?",
		MsgGoodbye:             "Goodbye! 👋 Feel free to reach out anytime.",
		MsgAIUnavailable:       "😥 Sorry, I'm having trouble right now. Please try again in a moment.",
		MsgInvalidLanguage:     "❌ Unknown language code: %s\nAvailable codes: %s",
		MsgAdminOnly:           "⛔ This command is for group admins only.",
		MsgTranslationEnabled:  "✅ Auto-translation enabled (%s).",
		MsgTranslationDisabled: "✅ Auto-translation disabled.",
		MsgRateLimited:         "⏳ Too many messages. Please wait a moment and try again.",
	},
	Vietnamese: {
		MsgWelcome: `👋 Chào mừng đến với IMIGO!

Tôi là trợ lý AI giúp đỡ lao động nhập cư tại Đài Loan.

Tôi có thể giúp với:
• Thông tin lao động
• Dịch vụ chính phủ
• Dịch thuật ngôn ngữ
• Thông tin y tế
• Cuộc sống hàng ngày

Hãy hỏi tôi bất cứ điều gì!`,
		MsgCleared:         "✅ Lịch sử trò chuyện đã được xóa.\nBạn có thể bắt đầu cuộc trò chuyện mới!",
		MsgLanguageChanged: "✅ Đã đổi sang Tiếng Việt.\nTôi sẽ trả lời bằng Tiếng Việt!",
		MsgLanguageSelect:  "🌐 Chọn ngôn ngữ của bạn:\nNhập: /lang id (Tiếng Indonesia)\n/lang zh (Tiếng Trung)\n/lang en (Tiếng Anh)\n/lang vi (Tiếng Việt)",
		MsgHelp: `🤖 Cách sử dụng IMIGO:

Nhập câu hỏi của bạn bằng bất kỳ ngôn ngữ nào, tôi sẽ giúp bạn!

Các loại hỗ trợ:
• 💼 Vấn đề công việc
• 🏛️ Dịch vụ chính phủ
• 🏥 Thông tin y tế
• 🌐 Hỗ trợ dịch thuật
• 🏠 Cuộc sống hàng ngày
• 🚨 Liên hệ khẩn cấp`,
		MsgGreeting:            "Xin chào! 👋 Tôi là IMIGO, trợ lý cho lao động nhập cư tại Đài Loan. Tôi có thể giúp gì cho bạn?",
		MsgThanks:              "Không có gì! 😊 Rất vui được giúp đỡ. Bạn cần gì nữa không?",
		MsgGoodbye:             "Tạm biệt! 👋 Hãy liên hệ với tôi bất cứ lúc nào.",
		MsgAIUnavailable:       "😥 Xin lỗi, hệ thống đang gặp sự cố. Vui lòng thử lại sau.",
		MsgInvalidLanguage:     "❌ Mã ngôn ngữ không hợp lệ: %s\nMã khả dụng: %s",
		MsgAdminOnly:           "⛔ Lệnh này chỉ dành cho quản trị viên nhóm.",
		MsgTranslationEnabled:  "✅ Đã bật dịch tự động (%s).",
		MsgTranslationDisabled: "✅ Đã tắt dịch tự động.",
		MsgRateLimited:         "⏳ Quá nhiều tin nhắn. Vui lòng đợi một lát rồi thử lại.",
	},
}

// Message returns the canned message for the given language and key.
// Unknown languages fall back to English; unknown keys return the key
// string itself so a miswired call site is visible rather than silent.
func Message(code Code, key MessageKey) string {
	langMessages, ok := messages[code]
	if !ok {
		langMessages = messages[English]
	}
	if msg, ok := langMessages[key]; ok {
		return msg
	}
	if msg, ok := messages[English][key]; ok {
		return msg
	}
	return string(key)
}
